package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerpa-project/p4check/internal/driver"
	"github.com/nerpa-project/p4check/internal/logger"
	"github.com/nerpa-project/p4check/internal/parser"
)

// NewSuiteCommand creates the suite command
func NewSuiteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suite <suite.md>",
		Short: "Run a Markdown suite of P4 test programs",
		Long: `Run every test listed in a Markdown suite file under the bounded
runner. Entries are checklist items naming P4 files relative to the
suite file's directory; YAML frontmatter can override the compiler,
timeout, and shared compiler arguments.

Exits 0 when every entry passes, 1 otherwise.

Example:
  p4check suite testdata/vlans/suite.md`,
		Args: checkArgs(cobra.ExactArgs(1)),
		RunE: suiteCommand,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Verbose operation")
	cmd.Flags().String("compiler", "", "Compiler executable (default from config)")
	cmd.Flags().String("timeout", "", "Wall-clock limit per entry (e.g. 30s, 10m)")
	cmd.Flags().String("scratch-root", "", "Parent directory for scratch directories")
	cmd.Flags().BoolP("keep-scratch", "b", false, "Retain scratch directories after the run")
	cmd.Flags().Bool("p4runtime", false, "Stage compiler outputs into scratch directories")
	cmd.Flags().String("config", "", "Path to config file (default: .p4check/config.yaml)")

	return cmd
}

// suiteCommand implements the suite command logic
func suiteCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	suitePath := args[0]
	f, err := os.Open(suitePath)
	if err != nil {
		return fmt.Errorf("failed to open suite file: %w", err)
	}
	defer f.Close()

	suite, err := parser.NewSuiteParser().Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse suite %s: %w", suitePath, err)
	}
	if len(suite.Entries) == 0 {
		return fmt.Errorf("suite %s lists no tests", suitePath)
	}

	// Suite frontmatter overrides config, CLI flags override both
	// (the flags were already merged into cfg).
	compiler := cfg.Compiler
	if suite.Compiler != "" && !cmd.Flags().Changed("compiler") {
		compiler = suite.Compiler
	}
	timeout := cfg.Timeout
	if suite.Timeout > 0 && !cmd.Flags().Changed("timeout") {
		timeout = suite.Timeout
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	p4runtime, _ := cmd.Flags().GetBool("p4runtime")

	logLevel := cfg.LogLevel
	if verbose {
		logLevel = "debug"
	}
	log := logger.NewConsoleLogger(os.Stdout, logLevel)

	store, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	rootDir := filepath.Dir(suitePath)
	start := time.Now()
	var failed []string

	for _, entry := range suite.Entries {
		inputFile := filepath.Join(rootDir, entry.File)

		opts := driver.Options{
			RootDir:         rootDir,
			InputFile:       inputFile,
			Compiler:        compiler,
			CompilerOptions: append(append([]string{}, suite.Args...), entry.Args...),
			ForwardArgs:     []string{inputFile},
			Verbose:         verbose,
			Timeout:         timeout,
			P4Runtime:       p4runtime,
			KeepScratch:     cfg.KeepScratch,
			ScratchRoot:     cfg.ScratchRoot,
			History:         store,
			KeepRuns:        cfg.History.KeepRuns,
			Log:             log,
		}

		status, err := driver.Run(cmd.Context(), opts)
		switch {
		case err != nil:
			log.Errorf("FAIL %s: %v", entry.File, err)
			failed = append(failed, entry.File)
		case status != 0:
			log.Errorf("FAIL %s", entry.File)
			failed = append(failed, entry.File)
		default:
			log.Infof("PASS %s", entry.File)
		}
	}

	log.Infof("%d/%d passed in %s", len(suite.Entries)-len(failed), len(suite.Entries),
		time.Since(start).Round(time.Second))

	if len(failed) > 0 {
		for _, name := range failed {
			fmt.Fprintf(os.Stderr, "failed: %s\n", name)
		}
		return ErrTestFailed
	}
	return nil
}

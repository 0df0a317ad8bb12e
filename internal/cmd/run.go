package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerpa-project/p4check/internal/config"
	"github.com/nerpa-project/p4check/internal/driver"
	"github.com/nerpa-project/p4check/internal/history"
	"github.com/nerpa-project/p4check/internal/logger"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <rootdir> [flags] <file.p4>",
		Short: "Compile one P4 test program under a timeout",
		Long: `Invoke the compiler on the supplied file, possibly adding extra
arguments. <rootdir> is the root directory of the compiler source
tree; it is used to derive the logical test name from the file path.

Exits 0 when the compiler succeeds, 1 on compile failure, timeout,
start failure, or usage error.

Examples:
  p4check run ~/p4c-of testdata/vlans/snvs.p4
  p4check run -v -a "-DTEST" ~/p4c-of testdata/vlans/snvs.p4
  p4check run --p4runtime -b ~/p4c-of testdata/vlans/snvs.p4`,
		Args: checkArgs(cobra.MinimumNArgs(2)),
		RunE: runCommand,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Verbose operation")
	cmd.Flags().StringP("args", "a", "", "Extra arguments passed to the compiler (whitespace-split)")
	cmd.Flags().StringArrayP("define", "D", nil, "Preprocessor define forwarded to the compiler")
	cmd.Flags().StringArrayP("include", "I", nil, "Include path forwarded to the compiler")
	cmd.Flags().StringArrayP("trace", "T", nil, "Trace option forwarded to the compiler")
	cmd.Flags().Bool("p4runtime", false, "Stage compiler outputs into a scratch directory")
	cmd.Flags().BoolP("keep-scratch", "b", false, "Retain the scratch directory after the run")
	cmd.Flags().String("compiler", "", "Compiler executable (default from config)")
	cmd.Flags().String("timeout", "", "Wall-clock limit for the compiler run (e.g. 30s, 10m)")
	cmd.Flags().String("scratch-root", "", "Parent directory for scratch directories")
	cmd.Flags().String("config", "", "Path to config file (default: .p4check/config.yaml)")

	return cmd
}

// loadMergedConfig loads the config file and merges the shared flags
// into it, following flag precedence over file settings.
func loadMergedConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var compilerPtr *string
	if cmd.Flags().Changed("compiler") {
		compiler, _ := cmd.Flags().GetString("compiler")
		compilerPtr = &compiler
	}

	var timeoutPtr *time.Duration
	if cmd.Flags().Changed("timeout") {
		timeoutStr, _ := cmd.Flags().GetString("timeout")
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", timeoutStr, err)
		}
		timeoutPtr = &timeout
	}

	var scratchRootPtr *string
	if cmd.Flags().Changed("scratch-root") {
		scratchRoot, _ := cmd.Flags().GetString("scratch-root")
		scratchRootPtr = &scratchRoot
	}

	var keepScratchPtr *bool
	if cmd.Flags().Changed("keep-scratch") {
		keepScratch, _ := cmd.Flags().GetBool("keep-scratch")
		keepScratchPtr = &keepScratch
	}

	cfg.MergeWithFlags(compilerPtr, timeoutPtr, scratchRootPtr, keepScratchPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// compilerOptions collects the -a split plus the -D/-I/-T passthrough
// options, reconstructed in their single-character spelling.
func compilerOptions(cmd *cobra.Command) []string {
	var opts []string

	extraArgs, _ := cmd.Flags().GetString("args")
	opts = append(opts, strings.Fields(extraArgs)...)

	defines, _ := cmd.Flags().GetStringArray("define")
	for _, d := range defines {
		opts = append(opts, "-D"+d)
	}
	includes, _ := cmd.Flags().GetStringArray("include")
	for _, i := range includes {
		opts = append(opts, "-I"+i)
	}
	traces, _ := cmd.Flags().GetStringArray("trace")
	for _, tr := range traces {
		opts = append(opts, "-T"+tr)
	}

	return opts
}

// openHistory opens the run-history store when enabled. A nil store
// disables recording.
func openHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.NewStore(cfg.History.DBPath)
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
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

	rootDir := args[0]
	forward := args[1:]
	inputFile := forward[len(forward)-1]

	opts := driver.Options{
		RootDir:         rootDir,
		InputFile:       inputFile,
		Compiler:        cfg.Compiler,
		CompilerOptions: compilerOptions(cmd),
		ForwardArgs:     forward,
		Verbose:         verbose,
		Timeout:         cfg.Timeout,
		P4Runtime:       p4runtime,
		KeepScratch:     cfg.KeepScratch,
		ScratchRoot:     cfg.ScratchRoot,
		History:         store,
		KeepRuns:        cfg.History.KeepRuns,
		Log:             log,
	}

	status, err := driver.Run(cmd.Context(), opts)
	if err != nil {
		// Validation failures get the usage text, like any other
		// malformed invocation.
		if errors.Is(err, driver.ErrNotADirectory) || errors.Is(err, driver.ErrNoSuchFile) {
			return usageError(cmd, err)
		}
		return err
	}
	if status != 0 {
		return ErrTestFailed
	}
	return nil
}

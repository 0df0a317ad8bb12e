// Package driver glues the CLI to the bounded process runner. One
// driver serves both the plain and the scratch-staging ("p4runtime")
// test flavors; the flavor is a configuration bit, not a separate code
// path.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nerpa-project/p4check/internal/history"
	"github.com/nerpa-project/p4check/internal/logger"
	"github.com/nerpa-project/p4check/internal/runner"
)

// Validation errors reported before any external process starts.
var (
	// ErrNotADirectory means the root directory argument does not
	// exist or is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNoSuchFile means the input file does not exist.
	ErrNoSuchFile = errors.New("no such file")
)

// Options configures one driver invocation. Constructed once from CLI
// arguments and read-only afterward.
type Options struct {
	// RootDir is the root of the reference source tree. Used to derive
	// the logical test name.
	RootDir string

	// InputFile is the P4 source file being processed.
	InputFile string

	// Compiler is the external compiler executable.
	Compiler string

	// CompilerOptions are extra options passed to the compiler before
	// the forwarded arguments (-a splits, -D/-I/-T passthrough).
	CompilerOptions []string

	// ForwardArgs are the positional arguments forwarded verbatim to
	// the compiler; the input file is the last of them.
	ForwardArgs []string

	// Verbose enables exit-code and start-failure diagnostics.
	Verbose bool

	// Timeout is the wall-clock limit for the compiler run.
	Timeout time.Duration

	// P4Runtime enables scratch staging: a fresh scratch directory with
	// captured-stderr, p4info, and output files passed to the compiler.
	P4Runtime bool

	// KeepScratch retains the scratch directory after the run.
	KeepScratch bool

	// ScratchRoot is the parent for scratch directories (empty = system
	// temp directory).
	ScratchRoot string

	// History, when non-nil, records the run outcome.
	History *history.Store

	// KeepRuns caps per-test history retention: after each recorded
	// run, older entries beyond this many are pruned. Zero or negative
	// keeps everything.
	KeepRuns int

	// Log receives progress messages. Nil disables them.
	Log *logger.ConsoleLogger
}

// Validate checks that the root directory and input file exist.
// It runs before any external process starts.
func (o *Options) Validate() error {
	info, err := os.Stat(o.RootDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, o.RootDir)
	}
	if _, err := os.Stat(o.InputFile); err != nil {
		return fmt.Errorf("%w: %s", ErrNoSuchFile, o.InputFile)
	}
	return nil
}

// TestName derives the logical test name from the input file by
// stripping the root-directory prefix, a leading separator, and the
// .p4 suffix. Returns the input path unchanged when it is not under
// the root directory.
func (o *Options) TestName() string {
	name := o.InputFile
	if strings.HasPrefix(name, o.RootDir) {
		name = name[len(o.RootDir):]
		name = strings.TrimPrefix(name, "/")
	}
	name = strings.TrimSuffix(name, ".p4")
	return name
}

// Run validates the options, invokes the compiler under the configured
// timeout, and returns the exit status for the calling process: 0 on
// success, 1 on compile failure, timeout, or start failure.
func Run(ctx context.Context, opts Options) (int, error) {
	if err := opts.Validate(); err != nil {
		return 1, err
	}

	spec := runner.Spec{
		Path:    opts.Compiler,
		Timeout: opts.Timeout,
		Verbose: opts.Verbose,
	}

	var scratch *runner.Scratch
	if opts.P4Runtime {
		var err error
		scratch, err = runner.NewScratch(opts.ScratchRoot, opts.TestName())
		if err != nil {
			return 1, err
		}
		if !opts.KeepScratch {
			// Deferred so cleanup fires on every exit path, including
			// timeout and start failure.
			defer scratch.Cleanup()
		}

		stderrFile, err := os.Create(scratch.StderrPath)
		if err != nil {
			return 1, fmt.Errorf("create stderr capture: %w", err)
		}
		defer stderrFile.Close()
		spec.Stderr = stderrFile

		spec.Args = append(spec.Args, "-o", scratch.OutputPath, "--p4runtime-files", scratch.InfoPath)
	}

	spec.Args = append(spec.Args, opts.CompilerOptions...)
	spec.Args = append(spec.Args, opts.ForwardArgs...)

	if opts.Log != nil {
		opts.Log.Debugf("test %s: %s", opts.TestName(), spec.CommandLine())
	}

	start := time.Now()
	result := runner.Run(ctx, spec)
	duration := time.Since(start)

	if opts.History != nil {
		rec := history.Run{
			TestName: opts.TestName(),
			Compiler: opts.Compiler,
			Outcome:  result.Outcome.String(),
			ExitCode: result.Code(),
			Duration: duration,
		}
		if err := opts.History.RecordRun(ctx, rec); err != nil {
			// History is advisory; a failed insert must not fail the test.
			if opts.Log != nil {
				opts.Log.Warnf("failed to record run: %v", err)
			}
		} else if err := opts.History.Prune(ctx, opts.KeepRuns); err != nil && opts.Log != nil {
			opts.Log.Warnf("failed to prune history: %v", err)
		}
	}

	if !result.Success() {
		fmt.Fprintln(os.Stderr, "Error compiling")
		return 1, nil
	}
	return 0, nil
}

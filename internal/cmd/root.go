package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ErrTestFailed signals a failure that has already been reported to
// stderr: a compile failure, a timeout, or a malformed invocation.
// main exits 1 without printing it again.
var ErrTestFailed = errors.New("test failed")

// NewRootCommand creates and returns the root cobra command for p4check
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "p4check",
		Short: "Bounded test runner for P4 compilers",
		Long: `p4check invokes an external P4 compiler on test programs under a
wall-clock timeout, reporting pass/fail to a calling test harness
(e.g. a "make check" target) through its exit status.

It can stage compiler outputs into a per-run scratch directory, run
whole Markdown test suites, and record run history for spotting flaky
or slow tests.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flag errors go through the same usage register as every other
	// malformed invocation.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(c, err)
	})

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewSuiteCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// usageError reports a malformed invocation: the error and the usage
// block are printed, and main exits 1 without printing anything more.
func usageError(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	_ = cmd.Usage()
	return ErrTestFailed
}

// checkArgs wraps a positional-argument validator so argument-count
// errors print the usage block like any other malformed invocation.
func checkArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(cmd, err)
		}
		return nil
	}
}

// Package runner executes external commands under a wall-clock timeout.
//
// The runner spawns exactly one process per call and one goroutine whose
// sole job is to wait on it. The caller blocks until the process exits,
// the timeout elapses, or the context is cancelled. On timeout the
// process is sent SIGTERM and the runner waits unconditionally for it to
// exit; there is no forceful kill escalation.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Spec describes one bounded invocation of an external command.
type Spec struct {
	// Path is the executable to run, resolved via exec.LookPath if
	// it does not contain a path separator.
	Path string

	// Args are the arguments passed to the executable, not including
	// the executable name itself.
	Args []string

	// Timeout is the wall-clock limit. Zero or negative means no limit.
	Timeout time.Duration

	// Stderr receives the process's stderr. Nil inherits os.Stderr.
	// Stdout is always inherited.
	Stderr io.Writer

	// Verbose enables start-failure and exit-code diagnostics.
	Verbose bool

	// Out receives the command-line echo and verbose diagnostics.
	// Nil defaults to os.Stdout.
	Out io.Writer

	// Diag receives timeout diagnostics. Nil defaults to os.Stderr.
	Diag io.Writer
}

// CommandLine returns the command line this spec will execute, with
// arguments joined by single spaces.
func (s Spec) CommandLine() string {
	return strings.Join(append([]string{s.Path}, s.Args...), " ")
}

// Run executes the command described by spec and blocks until it exits
// or the timeout elapses. The command line is echoed before the process
// starts; timeout diagnostics go to spec.Diag. Context cancellation
// terminates the process the same way a timeout does and reports
// TimedOut.
func Run(ctx context.Context, spec Spec) Result {
	out := spec.Out
	if out == nil {
		out = os.Stdout
	}
	diag := spec.Diag
	if diag == nil {
		diag = os.Stderr
	}

	cmdline := spec.CommandLine()
	fmt.Fprintln(out, cmdline)

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Stdout = os.Stdout
	if spec.Stderr != nil {
		cmd.Stderr = spec.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		if spec.Verbose {
			fmt.Fprintln(out, "Process failed to start")
		}
		return Result{Outcome: FailedToStart}
	}

	// Single waiter goroutine delivering into a channel; the channel
	// replaces shared mutable state between waiter and control flow.
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timeoutCh <-chan time.Time
	if spec.Timeout > 0 {
		timer := time.NewTimer(spec.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	var waitErr error
	select {
	case waitErr = <-done:
	case <-timeoutCh:
		fmt.Fprintf(diag, "Timeout %s\n", cmdline)
		terminate(cmd)
		<-done
		return Result{Outcome: TimedOut}
	case <-ctx.Done():
		fmt.Fprintf(diag, "Cancelled %s\n", cmdline)
		terminate(cmd)
		<-done
		return Result{Outcome: TimedOut}
	}

	result := Result{Outcome: Completed, ExitCode: exitCodeFrom(waitErr)}
	if spec.Verbose {
		fmt.Fprintf(out, "Exit code %d\n", result.ExitCode)
	}
	return result
}

// terminate sends SIGTERM to the process. Errors are ignored: the
// process may already have exited between the timeout firing and the
// signal being sent.
func terminate(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Signal(syscall.SIGTERM)
	}
}

// exitCodeFrom extracts the exit code from a Wait error. A nil error is
// exit code 0; a process killed by a signal reports -1.
func exitCodeFrom(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return legacySentinel
}

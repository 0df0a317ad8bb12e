package runner

import "fmt"

// Outcome classifies how an external process run ended.
type Outcome int

const (
	// Completed means the process started and exited on its own.
	// The real exit code is available in Result.ExitCode.
	Completed Outcome = iota
	// TimedOut means the process was terminated before exiting on its
	// own, either because the wall-clock timeout elapsed or because
	// the context was cancelled. Callers that need to tell the two
	// apart check their context's Err.
	TimedOut
	// FailedToStart means the process could never be started
	// (executable missing, permission denied, etc).
	FailedToStart
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timeout"
	case FailedToStart:
		return "start-failure"
	default:
		return "unknown"
	}
}

// legacySentinel is the single failure code the original test scripts
// returned for both timeout and start failure. Kept for callers that
// need one integer; new callers should branch on Outcome instead.
const legacySentinel = -1

// Result is the outcome of running a process under a timeout.
// ExitCode is only meaningful when Outcome is Completed.
type Result struct {
	Outcome  Outcome
	ExitCode int
}

// Code collapses the result into a single integer: the real exit code
// for completed runs, -1 for timeout and start failure.
func (r Result) Code() int {
	if r.Outcome != Completed {
		return legacySentinel
	}
	return r.ExitCode
}

// Success reports whether the process completed with exit code zero.
func (r Result) Success() bool {
	return r.Outcome == Completed && r.ExitCode == 0
}

// String returns a human-readable summary of the result.
func (r Result) String() string {
	if r.Outcome == Completed {
		return fmt.Sprintf("completed (exit code %d)", r.ExitCode)
	}
	return r.Outcome.String()
}

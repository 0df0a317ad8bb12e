// Package filelock provides file locking for coordinating access to
// shared test resources across processes, such as the virtual network
// interfaces used by packet-injection tests.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileLock wraps a flock file lock for coordinating access to a shared
// resource across processes.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// New creates a new file lock at the given path. The lock file is
// created on first acquisition.
func New(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// ForInterface creates a lock that serializes packet injection on the
// named network interface. The lock file lives in the system temp
// directory, so independent test processes on the same host contend on
// the same lock.
func ForInterface(iface string) *FileLock {
	return New(filepath.Join(os.TempDir(), fmt.Sprintf("p4check-iface-%s.lock", iface)))
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

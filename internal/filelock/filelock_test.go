package filelock

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	fl := New(path)

	if err := fl.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if err := fl.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestLockSerializesHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	first := New(path)
	if err := first.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	// A second lock value on the same path uses a separate file
	// descriptor, so it contends with the first.
	acquired := make(chan struct{})
	go func() {
		second := New(path)
		if err := second.Lock(); err != nil {
			t.Errorf("Lock() error = %v", err)
		}
		defer second.Unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock while the first held it")
	case <-time.After(100 * time.Millisecond):
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired the lock after release")
	}
}

func TestForInterfaceLockPath(t *testing.T) {
	fl := ForInterface("veth0")

	base := filepath.Base(fl.path)
	if !strings.Contains(base, "veth0") {
		t.Errorf("lock path %q does not name the interface", fl.path)
	}
	if !strings.HasPrefix(base, "p4check-iface-") {
		t.Errorf("lock path %q missing p4check prefix", fl.path)
	}
}

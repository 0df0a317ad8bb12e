package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewScratchDerivesPaths(t *testing.T) {
	parent := t.TempDir()

	s, err := NewScratch(parent, "testdata/vlans/snvs")
	if err != nil {
		t.Fatalf("NewScratch() error = %v", err)
	}
	defer s.Cleanup()

	if !strings.HasPrefix(s.Dir, filepath.Join(parent, "p4check-snvs-")) {
		t.Errorf("Dir = %q, want p4check-snvs-<uuid> under parent", s.Dir)
	}

	info, err := os.Stat(s.Dir)
	if err != nil {
		t.Fatalf("scratch directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", s.Dir)
	}

	wants := map[string]string{
		"stderr": s.StderrPath,
		"info":   s.InfoPath,
		"output": s.OutputPath,
	}
	for name, path := range wants {
		if filepath.Dir(path) != s.Dir {
			t.Errorf("%s path %q not inside scratch dir", name, path)
		}
	}
	if filepath.Base(s.StderrPath) != "snvs.stderr" {
		t.Errorf("StderrPath base = %q, want snvs.stderr", filepath.Base(s.StderrPath))
	}
	if filepath.Base(s.InfoPath) != "snvs.p4info.txt" {
		t.Errorf("InfoPath base = %q, want snvs.p4info.txt", filepath.Base(s.InfoPath))
	}
	if filepath.Base(s.OutputPath) != "snvs.json" {
		t.Errorf("OutputPath base = %q, want snvs.json", filepath.Base(s.OutputPath))
	}
}

func TestNewScratchUniqueNames(t *testing.T) {
	parent := t.TempDir()

	a, err := NewScratch(parent, "x/y")
	if err != nil {
		t.Fatalf("NewScratch() error = %v", err)
	}
	defer a.Cleanup()

	b, err := NewScratch(parent, "x/y")
	if err != nil {
		t.Fatalf("NewScratch() error = %v", err)
	}
	defer b.Cleanup()

	if a.Dir == b.Dir {
		t.Errorf("two scratch directories share the same path %q", a.Dir)
	}
}

func TestScratchCleanupRemovesDirectory(t *testing.T) {
	s, err := NewScratch(t.TempDir(), "a/b")
	if err != nil {
		t.Fatalf("NewScratch() error = %v", err)
	}

	// Populate it so cleanup has to recurse.
	if err := os.WriteFile(s.OutputPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("write output file: %v", err)
	}

	if err := s.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(s.Dir); !os.IsNotExist(err) {
		t.Errorf("scratch dir %s still exists after Cleanup", s.Dir)
	}
}

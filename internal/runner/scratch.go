package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Scratch is a uniquely named directory staging the output files of one
// compiler run. It is owned exclusively by that run; concurrent runs
// each get their own directory.
type Scratch struct {
	// Dir is the scratch directory itself.
	Dir string

	// StderrPath captures the compiler's stderr.
	StderrPath string

	// InfoPath is the machine-readable P4Runtime info file.
	InfoPath string

	// OutputPath is the primary compiler output.
	OutputPath string
}

// NewScratch creates a fresh scratch directory under parent (os.TempDir
// if empty) and derives the three staged file paths from the test name.
// The directory name carries a UUID so concurrent invocations never
// collide.
func NewScratch(parent, testName string) (*Scratch, error) {
	if parent == "" {
		parent = os.TempDir()
	}

	base := filepath.Base(testName)
	if base == "." || base == string(filepath.Separator) {
		base = "test"
	}

	dir := filepath.Join(parent, fmt.Sprintf("p4check-%s-%s", base, uuid.New().String()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	return &Scratch{
		Dir:        dir,
		StderrPath: filepath.Join(dir, base+".stderr"),
		InfoPath:   filepath.Join(dir, base+".p4info.txt"),
		OutputPath: filepath.Join(dir, base+".json"),
	}, nil
}

// Cleanup removes the scratch directory and everything in it. Callers
// run it via defer so it fires on success, failure, and timeout alike.
func (s *Scratch) Cleanup() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("remove scratch directory %s: %w", s.Dir, err)
	}
	return nil
}

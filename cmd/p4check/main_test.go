package main

import (
	"testing"

	"github.com/nerpa-project/p4check/internal/cmd"
)

func TestRootCommandConstructs(t *testing.T) {
	if cmd.NewRootCommand() == nil {
		t.Fatal("NewRootCommand() returned nil")
	}
}

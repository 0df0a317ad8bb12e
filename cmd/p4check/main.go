package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nerpa-project/p4check/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Compile/test failures were already reported to stderr.
		if !errors.Is(err, cmd.ErrTestFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

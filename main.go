// Package main is the entry point of the repodigger CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Codegass/repodigger/cmd"
	"github.com/Codegass/repodigger/internal/runstore"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and returns the process exit code, so deferred cleanup
// still happens on failure.
func run() int {
	defer runstore.CloseRunStore()
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	return 0
}

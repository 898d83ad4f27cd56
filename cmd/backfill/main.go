package main

import (
	"os"

	"github.com/OliverWithClaude/Finsite/cmd/backfill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

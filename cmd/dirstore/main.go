// This is the main entry point for the dirstore CLI.
// Build with: go build -o bin/dirstore ./cmd/dirstore
// Usage: dirstore --db <root> <command> [options]
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

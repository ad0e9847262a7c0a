// ============================================================================
// hlogsplit - Main Entry Point
// ============================================================================
//
// File: cmd/hlogsplit/main.go
// Purpose: Application entry point and CLI initialization
//
// Version Injection:
//   Variables injected at build time via -ldflags:
//   go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
//
// Usage:
//   ./hlogsplit --help              # Show help
//   ./hlogsplit --version           # Show version
//   ./hlogsplit split               # Split a dead region server's WAL
//   ./hlogsplit status              # View the last run's counters
//
// ============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/hlogsplit/internal/cli"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	rootCmd := cli.BuildCLI()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

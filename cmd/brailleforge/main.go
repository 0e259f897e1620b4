// Command brailleforge is the CLI entry point: local plate generation, the
// calibration coupon, and an embedded HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/brailleforge/brailleforge/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

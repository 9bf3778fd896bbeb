// Package main is the ghproj entry point.
package main

import (
	"fmt"
	"os"

	"github.com/ai-janitor/ghproj/internal/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

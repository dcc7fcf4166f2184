// Package main is the entry point for the palette CLI.
package main

import (
	"fmt"
	"os"

	"github.com/runger/palette/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "palette:", err)
		os.Exit(1)
	}
}

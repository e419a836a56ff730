// Package main provides the entry point for the daqgen CLI.
package main

import (
	"os"

	"github.com/dune-daq/daqgen/cmd/daqgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

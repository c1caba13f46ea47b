// Package main is the entry point for the hltvstats CLI.
package main

import (
	"os"

	"github.com/jmylchreest/hltvstats/cmd/hltvstats/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

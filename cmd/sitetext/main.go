// Package main is the entry point for the sitetext CLI.
package main

import (
	"os"

	"github.com/jmylchreest/sitetext/cmd/sitetext/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

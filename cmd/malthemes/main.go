// Package main is the entry point for the malthemes CLI.
package main

import (
	"os"

	"github.com/mik2003/malthemes/cmd/malthemes/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kayru/patchy/internal/build"
)

var rootCommand = &cobra.Command{
	Use:   "patchy",
	Short: "Patchy computes and applies rsync-style binary deltas between two files.",
	Version: build.Version,
}

func init() {
	// Disable Cobra's alphabetical command sorting so diff/patch/version
	// appear in a sensible reading order.
	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		diffCommand,
		patchCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

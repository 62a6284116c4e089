package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayru/patchy/cmd"
	"github.com/kayru/patchy/internal/build"
)

func versionMain(_ *cobra.Command, _ []string) error {
	fmt.Println(build.Version)
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cmd.DisallowArguments,
	Run:   cmd.Mainify(versionMain),
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/kayru/patchy/cmd"
	"github.com/kayru/patchy/internal/build"
	"github.com/kayru/patchy/internal/logging"
	"github.com/kayru/patchy/internal/operations"
)

func patchMain(_ *cobra.Command, arguments []string) error {
	basePath := arguments[0]
	patchPath := arguments[1]
	var outputPath string
	if len(arguments) == 3 {
		outputPath = arguments[2]
	}

	if patchConfiguration.verbose {
		build.DebugEnabled = true
	}

	logger := logging.RootLogger.Sublogger("patch")
	return operations.Patch(logger, basePath, patchPath, outputPath)
}

var patchCommand = &cobra.Command{
	Use:   "patch <BASE> <PATCH> [OUTPUT]",
	Short: "Reconstruct OTHER from BASE and a patch produced by diff",
	Args:  cobra.RangeArgs(2, 3),
	Run:   cmd.Mainify(patchMain),
}

var patchConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
	// verbose enables debug logging of the apply process.
	verbose bool
}

func init() {
	flags := patchCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&patchConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&patchConfiguration.verbose, "verbose", "v", false, "Enable verbose debug logging")
}

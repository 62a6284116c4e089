package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kayru/patchy/cmd"
	"github.com/kayru/patchy/internal/build"
	"github.com/kayru/patchy/internal/container"
	"github.com/kayru/patchy/internal/delta"
	"github.com/kayru/patchy/internal/logging"
	"github.com/kayru/patchy/internal/operations"
)

func diffMain(_ *cobra.Command, arguments []string) error {
	basePath := arguments[0]
	otherPath := arguments[1]
	var patchPath string
	if len(arguments) == 3 {
		patchPath = arguments[2]
	}

	if diffConfiguration.verbose {
		build.DebugEnabled = true
	}

	if diffConfiguration.blockLog < delta.MinBlockLog || diffConfiguration.blockLog > delta.MaxBlockLog {
		return errors.Errorf("-b must be in [%d, %d]", delta.MinBlockLog, delta.MaxBlockLog)
	}
	if diffConfiguration.level < container.MinLevel || diffConfiguration.level > container.MaxLevel {
		return errors.Errorf("-l must be in [%d, %d]", container.MinLevel, container.MaxLevel)
	}

	logger := logging.RootLogger.Sublogger("diff")
	return operations.Diff(
		logger,
		basePath, otherPath, patchPath,
		uint8(diffConfiguration.blockLog),
		diffConfiguration.level,
	)
}

var diffCommand = &cobra.Command{
	Use:   "diff [-b block-log] [-l level] <BASE> <OTHER> [PATCH]",
	Short: "Compute a delta that reconstructs OTHER from BASE",
	Args:  cobra.RangeArgs(2, 3),
	Run:   cmd.Mainify(diffMain),
}

var diffConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
	// blockLog is B_log, the block size exponent.
	blockLog uint8
	// level is the zstd compression level for the patch container.
	level int
	// verbose enables debug logging of scan progress.
	verbose bool
}

func init() {
	flags := diffCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&diffConfiguration.help, "help", "h", false, "Show help information")
	flags.Uint8VarP(&diffConfiguration.blockLog, "block-log", "b", delta.DefaultBlockLog,
		"Block size as a power of two (log2), in [6, 24]")
	flags.IntVarP(&diffConfiguration.level, "level", "l", container.DefaultLevel,
		"Compression level, in [1, 22]")
	flags.BoolVarP(&diffConfiguration.verbose, "verbose", "v", false, "Enable verbose debug logging")
}

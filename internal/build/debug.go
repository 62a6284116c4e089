package build

import "os"

// DebugEnabled controls whether or not verbose debug logging is enabled. It
// is set automatically based on the PATCHY_DEBUG environment variable, but
// the diff/patch subcommands also force it on via -v/--verbose.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("PATCHY_DEBUG") == "1"
}

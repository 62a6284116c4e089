package logging

import (
	"log"
	"os"
)

func init() {
	// Set the global logger to use standard error, so that diagnostics never
	// mix with anything written to standard output.
	log.SetOutput(os.Stderr)
}

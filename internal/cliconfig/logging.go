package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	logAdapter "github.com/bft-labs/herald/internal/adapters/log"
)

// Logger returns the console logger for the CLI at the given level name.
// Unknown levels fall back to info.
func Logger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logAdapter.NewConsole(os.Stderr, lvl)
}

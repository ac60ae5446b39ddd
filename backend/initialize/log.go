package initialize

import (
	"io"
	"os"
	"time"

	"bugtracker/backend/global"

	"github.com/rs/zerolog"
)

func init() {
	global.Logger = NewLogger(os.Stdout, true)
}

// NewLogger writes human readable lines in debug mode and JSON otherwise.
func NewLogger(w io.Writer, debug bool) zerolog.Logger {
	if debug {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel switches debug logging on or off for every logger in the process.
func SetLevel(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

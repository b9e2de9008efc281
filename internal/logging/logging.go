// Package logging builds the root zerolog.Logger the rest of the
// process hands out through constructor injection. It owns exactly one
// thing — turning config.LoggingConfig into a configured Logger at
// startup — everywhere else in this repo takes a zerolog.Logger as a
// parameter rather than reaching for a package-level logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Init builds a root logger at level, writing either structured JSON
// (format == "json") or a human-readable console line. Unknown levels
// fall back to info rather than failing startup over a typo in config.
func Init(level, format string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stdout
	if format != "json" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
}

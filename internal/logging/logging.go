// Package logging configures the process wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{
		Out:        colorable.NewColorableStderr(),
		TimeFormat: "15:04:05.000",
	})
}

// ParseLevel accepts zerolog level names, case insensitive. An empty string
// means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return l, nil
}

// Setup replaces the global logger. A nil writer means stderr.
func Setup(level string, format Format, w io.Writer) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var out io.Writer
	switch format {
	case FormatJSON:
		out = w
		if out == nil {
			out = os.Stderr
		}
	case FormatConsole, "":
		if w == nil {
			w = colorable.NewColorableStderr()
		}
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	default:
		return errors.Errorf("unknown log format %q", format)
	}

	zerolog.SetGlobalLevel(l)
	zlog.Logger = zerolog.New(out).With().Timestamp().Str("service", "configproxy").Logger()
	return nil
}

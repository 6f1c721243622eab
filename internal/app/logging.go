package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/gitpanel/internal/config"
)

// NewLogger builds the application logger. Console output is meant for
// a terminal; json suits log collectors.
func NewLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	switch cfg.Format {
	case "json":
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: %w", cfg.Format, config.ErrInvalidConfig)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "gitpanel").Logger(), nil
}

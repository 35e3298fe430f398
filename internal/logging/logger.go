// Package logging builds the zerolog logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tgienger/double/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger writing to cfg.File, or to out when no file is set.
// The returned closer releases the log file.
func New(cfg config.LoggingConfig, out io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var closer io.Closer = nopCloser{}
	toFile := cfg.File != ""
	if toFile {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
		closer = file
	}
	if out == nil {
		out = os.Stderr
	}

	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    toFile,
		}
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", "double").
		Logger()
	return logger, closer, nil
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

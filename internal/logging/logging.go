// SPDX-License-Identifier: EPL-2.0

// Package logging configures the process-wide slog logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrInvalidLogLevel is returned for a level name ConfigureDefaultLogger
// does not know.
var ErrInvalidLogLevel = errors.New("unexpected log level")

// Levels lists the accepted level names, quietest first.
var Levels = []string{"none", "error", "warn", "info", "debug"}

// ConfigureDefaultLogger sets the slog default logger to the given level and
// output.
//
// Valid log levels are "none", "error", "warn", "info", "debug". An empty
// logFile logs text to stdout; otherwise the file is truncated and receives
// JSON records. The returned file, if any, should be closed by the caller
// once logging is done:
//
//	f, err := logging.ConfigureDefaultLogger("info", path, slog.HandlerOptions{})
//	if err != nil {
//		return err
//	}
//	if f != nil {
//		defer f.Close()
//	}
func ConfigureDefaultLogger(logLevel string, logFile string, loggerOptions slog.HandlerOptions) (*os.File, error) {
	switch logLevel {
	case "none":
		slog.SetDefault(Discard())
		return nil, nil
	case "error":
		loggerOptions.Level = slog.LevelError
	case "warn":
		loggerOptions.Level = slog.LevelWarn
	case "info":
		loggerOptions.Level = slog.LevelInfo
	case "debug":
		loggerOptions.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, logLevel)
	}

	if logFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &loggerOptions)))
		return nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &loggerOptions)))
	return f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Package logger provides structured logging configuration shared by the
// CLI and the dev server.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in human-readable text format (the default,
	// since the primary consumer is a person at a terminal).
	FormatText LogFormat = "text"
)

// New creates a structured logger for the named binary. It reads
// LOG_LEVEL (debug, info, warn, error; default info) and LOG_FORMAT
// (json, text; default text) from the environment.
func New(service string) *slog.Logger {
	level := getLogLevel()

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn && getLogFormat() == FormatJSON,
	}

	var handler slog.Handler
	switch getLogFormat() {
	case FormatJSON:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler).With("service", service)
}

func getLogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getLogFormat() LogFormat {
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		return FormatJSON
	}
	return FormatText
}

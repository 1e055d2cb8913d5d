// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zerolog logger that adn threads through its
// components. Output goes to a console writer on stderr and, when a file is
// given, to an append-mode log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options control logger construction.
type Options struct {
	// Level is a configured log level name (DEBUG, INFO, WARNING, ERROR,
	// CRITICAL). Empty means INFO.
	Level string

	// Verbosity overrides Level when positive: 1 is debug, 2 or more is trace.
	Verbosity int

	// Quiet limits console output to errors. The file still receives
	// everything at Level.
	Quiet bool

	// File is the log file path. Empty disables file logging.
	File string

	// Console is the console destination. Defaults to os.Stderr.
	Console io.Writer
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "INFO":
		return zerolog.InfoLevel, nil
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "WARNING", "WARN":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "CRITICAL":
		return zerolog.FatalLevel, nil
	}
	return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// Setup returns a logger and a closer for the log file. The closer is never
// nil. A log file that cannot be opened is reported through the returned
// logger and otherwise ignored.
func Setup(opts Options) (zerolog.Logger, func() error) {
	level, levelErr := ParseLevel(opts.Level)
	switch {
	case opts.Verbosity == 1:
		level = zerolog.DebugLevel
	case opts.Verbosity >= 2:
		level = zerolog.TraceLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleLevel := level
	if opts.Quiet {
		consoleLevel = zerolog.ErrorLevel
	}

	writers := []io.Writer{
		levelWriter{
			w:   zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen},
			min: consoleLevel,
		},
	}

	closer := func() error { return nil }
	var fileErr error
	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			fileErr = err
		} else {
			writers = append(writers, levelWriter{w: f, min: level})
			closer = f.Close
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(min(level, consoleLevel)).
		With().Timestamp().Logger()
	if opts.Verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}

	if levelErr != nil {
		logger.Warn().Err(levelErr).Msg("Falling back to INFO")
	}
	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", opts.File).Msg("Logging to console only")
	}
	logger.Debug().Str("level", level.String()).Str("file", opts.File).Msg("Logger initialized")
	return logger, closer
}

// Component returns l with a component field.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// levelWriter drops events below min so console and file can run at
// different thresholds under one logger.
type levelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (lw levelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < lw.min {
		return len(p), nil
	}
	return lw.w.Write(p)
}

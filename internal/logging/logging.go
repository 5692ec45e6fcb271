// Package logging builds the zap loggers used across chatbot.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much is logged
type Options struct {
	// Verbose switches to debug level with a human readable console encoder.
	Verbose bool
	// File, when set, receives the log output. The TUI owns the terminal,
	// so without a file nothing is written.
	File string
	// Writer overrides File. Used by the ask command to log to stderr.
	Writer io.Writer
}

// New returns a logger for opts and a cleanup function that flushes it and
// closes any opened file.
func New(opts Options) (*zap.Logger, func(), error) {
	out := opts.Writer
	var file *os.File

	if out == nil && opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = f
	}

	if out == nil {
		return zap.NewNop(), func() {}, nil
	}

	level := zapcore.InfoLevel
	var encoder zapcore.Encoder
	if opts.Verbose {
		level = zapcore.DebugLevel
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zap.NewAtomicLevelAt(level))
	logger := zap.New(core)

	cleanup := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, cleanup, nil
}

// OrNop returns l, or a no-op logger when l is nil
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/carve-build/carve/internal/core/ports"
)

// messager describes an error that can report its own message without the
// chain. This matches the Message() method provided by zerr.Error; errors
// without it fall back to standard handling.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger instance writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.logger = slog.New(l.newHandler())
	return l
}

// newHandler builds the handler for the current output and mode.
// Callers must hold mu.
func (l *Logger) newHandler() slog.Handler {
	w := l.output
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		return slog.NewJSONHandler(w, opts)
	}
	return NewPrettyHandler(w, opts)
}

// SetOutput updates the logger's output destination, preserving the current
// JSON mode. A nil writer resets to stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(l.newHandler())
}

// SetJSON switches between JSON and pretty logging, preserving the output
// destination.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.logger = slog.New(l.newHandler())
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error, rendering wrapped causes hierarchically.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	l.logger.Error(formatErrorChain(err))
}

// formatErrorChain walks the error chain and renders the main error followed
// by an indented "Caused by" list.
func formatErrorChain(err error) string {
	var messages []string
	current := err

	for current != nil {
		if m, ok := current.(messager); ok {
			// zerr error: raw message without the chain
			messages = append(messages, m.Message())
			current = errors.Unwrap(current)
		} else {
			// Standard error: full Error() and stop
			messages = append(messages, current.Error())
			break
		}
	}

	var formatted []string
	for i, msg := range messages {
		lines := strings.Split(msg, "\n")

		if i == 0 {
			formatted = append(formatted, "Error: "+lines[0])
			for _, line := range lines[1:] {
				formatted = append(formatted, "       "+line)
			}
			continue
		}

		if i == 1 {
			formatted = append(formatted, "", "  Caused by:")
		}
		formatted = append(formatted, "    → "+lines[0])
		for _, line := range lines[1:] {
			formatted = append(formatted, "      "+line)
		}
	}

	return strings.Join(formatted, "\n")
}

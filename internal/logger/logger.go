// Package logger provides a small, centralized logging facility with
// configurable verbosity levels.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Warnings are shown whenever Info is enabled.
//
// Records are emitted through log/slog with a text handler on stderr, so
// every line carries a timestamp, level and source location:
//
//	time=2026-01-25T15:42:10Z level=INFO source=main.go:87 msg="grid written to out"
//
// Example usage:
//
//	logger.SetVerbosity(3) // Debug
//	logger.Infof("starting server on %s", addr)
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only failures.
	Info               // Info logs application lifecycle events and warnings.
	Debug              // Debug logs diagnostic information.
	Trace              // Trace logs per-row or per-request detail.
)

// levelTrace sits below slog.LevelDebug.
const levelTrace = slog.Level(-8)

var (
	mu      sync.RWMutex
	current = Info
	level   = new(slog.LevelVar)
	base    = newLogger(os.Stderr)
)

func init() {
	level.Set(toSlog(current))
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == levelTrace {
					return slog.String(slog.LevelKey, "TRACE")
				}
			}
			if a.Key == slog.SourceKey {
				if src, ok := a.Value.Any().(*slog.Source); ok {
					return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", shortFile(src.File), src.Line))
				}
			}
			return a
		},
	}))
}

func toSlog(l Level) slog.Level {
	switch {
	case l <= Error:
		return slog.LevelError
	case l == Info:
		return slog.LevelInfo
	case l == Debug:
		return slog.LevelDebug
	default:
		return levelTrace
	}
}

// SetVerbosity sets the global logging verbosity.
// Typically called once during application startup
// (e.g. after loading the config file).
func SetVerbosity(v int) {
	mu.Lock()
	defer mu.Unlock()
	current = Level(v)
	level.Set(toSlog(current))
}

// Verbosity returns the active verbosity level.
func Verbosity() Level {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w)
}

// Slog exposes the underlying structured logger for libraries that want
// one (e.g. HTTP middleware).
func Slog() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// logf checks the level and records the message with the caller's
// source location.
func logf(l slog.Level, format string, args ...any) {
	lg := Slog()
	ctx := context.Background()
	if !lg.Enabled(ctx, l) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, logf, and the exported wrapper
	r := slog.NewRecord(time.Now(), l, fmt.Sprintf(format, args...), pcs[0])
	_ = lg.Handler().Handle(ctx, r)
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) { logf(slog.LevelError, format, args...) }

// Warnf logs a warning.
func Warnf(format string, args ...any) { logf(slog.LevelWarn, format, args...) }

// Infof logs an informational message.
func Infof(format string, args ...any) { logf(slog.LevelInfo, format, args...) }

// Debugf logs debugging information.
func Debugf(format string, args ...any) { logf(slog.LevelDebug, format, args...) }

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) { logf(levelTrace, format, args...) }

func shortFile(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

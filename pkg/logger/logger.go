package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Log is the process-wide logger instance. It defaults to a stdout text
// handler so the package is usable before Setup runs (tests, early init).
var Log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// Setup initializes the global logger. Production gets JSON output,
// everything else a human-readable text handler. When filePath is non-empty
// the output is teed into that file so the admin log endpoints have
// something to read.
func Setup(env, filePath string) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var w io.Writer = os.Stdout
	if filePath != "" {
		if f := openLogFile(filePath); f != nil {
			w = io.MultiWriter(os.Stdout, f)
		}
	}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

func openLogFile(path string) *os.File {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		Log.Warn("cannot create log directory", "path", path, "error", err)
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		Log.Warn("cannot open log file", "path", path, "error", err)
		return nil
	}
	return f
}

// Info logs an info message
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

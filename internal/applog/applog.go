package applog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxFileSizeMB = 5
	maxBackups    = 3
	maxValueLen   = 200
	truncSuffix   = "…"
)

var (
	mu     sync.Mutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	file   *lumberjack.Logger
)

// Init opens dir/tabputz.log for appending. Call once at startup.
// The file is rotated by size. Without Init all log calls are no-ops.
func Init(dir, level string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "tabputz.log"),
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: truncate,
	})

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	file = w
	logger = slog.New(h)
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Info logs a structured event line.
//
//	applog.Info("ws.connected", "remote", addr)
//	applog.Info("resolve.close", "tabs", 3)
func Info(event string, kv ...any) {
	current().Info(event, kv...)
}

// Debug logs chatty per-event detail.
func Debug(event string, kv ...any) {
	current().Debug(event, kv...)
}

// Error logs an event with an error.
//
//	applog.Error("ws.send", err, "action", "close")
func Error(event string, err error, kv ...any) {
	current().Error(event, append([]any{"err", err}, kv...)...)
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func truncate(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	if s := a.Value.String(); len(s) > maxValueLen {
		a.Value = slog.StringValue(s[:maxValueLen] + truncSuffix)
	}
	return a
}

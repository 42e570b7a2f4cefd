package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New creates a text-format slog.Logger writing to w at the given level.
// Unknown level strings fall back to info.
func New(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Setup builds the process logger: log lines are mirrored to stderr and the
// log file at path, which is first trimmed to maxSize. The returned close
// function closes the log file.
//
// A log file that cannot be opened degrades to stderr-only logging rather
// than failing the run.
func Setup(level, path string, maxSize int64) (*slog.Logger, func()) {
	if _, err := Trim(path, maxSize); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "lfstage: failed to trim log %s: %v\n", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return New(level, os.Stderr), func() {}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return New(level, os.Stderr), func() {}
	}

	logger := New(level, io.MultiWriter(os.Stderr, f))
	return logger, func() { f.Close() }
}

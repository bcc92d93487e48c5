package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer, isTerminal, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stdout"}))
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: levelVar})
	case "console":
		handler = newConsoleHandler(writer, levelVar, isTerminal)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

// openWriters resolves output paths into a single writer. "stdout" and
// "stderr" map to the process streams; anything else is opened for append.
// The bool reports whether any destination is an interactive terminal.
func openWriters(paths []string) (io.Writer, bool, error) {
	writers := make([]io.Writer, 0, len(paths))
	isTerminal := false
	for _, path := range paths {
		switch strings.TrimSpace(path) {
		case "", "stdout":
			writers = append(writers, os.Stdout)
			isTerminal = isTerminal || terminalWriter(os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
			isTerminal = isTerminal || terminalWriter(os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, false, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, false, fmt.Errorf("open log file: %w", err)
			}
			writers = append(writers, file)
		}
	}
	if len(writers) == 1 {
		return writers[0], isTerminal, nil
	}
	return io.MultiWriter(writers...), isTerminal, nil
}

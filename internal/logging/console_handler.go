package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\x1b[0m"
	colorDim    = "\x1b[2m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
)

type consoleHandler struct {
	mu     sync.Mutex
	writer interface{ Write([]byte) (int, error) }
	level  *slog.LevelVar
	color  bool
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w interface{ Write([]byte) (int, error) }, lvl *slog.LevelVar, isTerminal bool) slog.Handler {
	return &consoleHandler{writer: w, level: lvl, color: isTerminal}
}

func terminalWriter(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var buf bytes.Buffer
	buf.Grow(160)
	h.paint(&buf, colorDim, timestamp.Format("15:04:05"))
	buf.WriteByte(' ')
	h.paint(&buf, levelColor(record.Level), fmt.Sprintf("%-5s", levelLabel(record.Level)))
	buf.WriteByte(' ')

	component := ""
	fields := make([]slog.Attr, 0, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		if attr.Key == "component" && component == "" {
			component = attr.Value.String()
			continue
		}
		fields = append(fields, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "component" && component == "" {
			component = attr.Value.String()
			return true
		}
		fields = append(fields, attr)
		return true
	})

	if component != "" {
		h.paint(&buf, colorCyan, "["+component+"]")
		buf.WriteByte(' ')
	}
	buf.WriteString(strings.TrimSpace(record.Message))

	prefix := strings.Join(h.groups, ".")
	for _, attr := range fields {
		key := attr.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		buf.WriteByte(' ')
		h.paint(&buf, colorDim, key+"=")
		buf.WriteString(attr.Value.String())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		writer: h.writer,
		level:  h.level,
		color:  h.color,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *consoleHandler) paint(buf *bytes.Buffer, color, text string) {
	if !h.color || color == "" {
		buf.WriteString(text)
		return
	}
	buf.WriteString(color)
	buf.WriteString(text)
	buf.WriteString(colorReset)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	default:
		return ""
	}
}

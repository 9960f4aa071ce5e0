// Package evmlog wraps log/slog with terminal-detection and ANSI
// coloring: plain text to a non-terminal (redirected to a file, piped to
// another process) and each record's line colored by its level on an
// interactive terminal, gated by mattn/go-isatty and rendered through
// mattn/go-colorable so it also works on Windows consoles.
package evmlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorDebug  = "\033[37m"
	colorInfo   = "\033[32m"
	colorWarn   = "\033[33m"
	colorError  = "\033[31m"
)

// New returns the root logger for the process, writing to w at level lvl.
// A nil w defaults to a terminal-aware, colorable stderr.
func New(w io.Writer, lvl slog.Level) *slog.Logger {
	if w == nil {
		w = defaultWriter()
	}
	handler := &levelColorHandler{
		out:    w,
		level:  lvl,
		color:  isWritingToTerminal(w),
		inner:  slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	}
	return slog.New(handler)
}

func defaultWriter() io.Writer {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return colorable.NewColorableStderr()
	}
	return os.Stderr
}

func isWritingToTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// levelColorHandler delegates formatting to slog.TextHandler but, when
// writing to a terminal, wraps each record in its level's ANSI color
// (followed by a reset), for at-a-glance severity over slog's default
// plain output.
type levelColorHandler struct {
	out   io.Writer
	level slog.Level
	color bool
	inner slog.Handler
}

func (h *levelColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *levelColorHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.color {
		io.WriteString(h.out, levelColor(r.Level))
		defer io.WriteString(h.out, colorReset)
	}
	return h.inner.Handle(ctx, r)
}

func (h *levelColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelColorHandler{out: h.out, level: h.level, color: h.color, inner: h.inner.WithAttrs(attrs)}
}

func (h *levelColorHandler) WithGroup(name string) slog.Handler {
	return &levelColorHandler{out: h.out, level: h.level, color: h.color, inner: h.inner.WithGroup(name)}
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return colorError
	case l >= slog.LevelWarn:
		return colorWarn
	case l >= slog.LevelInfo:
		return colorInfo
	default:
		return colorDebug
	}
}

package slogtools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"
)

func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns slog logger which writes through lgr.
func NewLogger(level slog.Level, w io.Writer) *slog.Logger {
	opts := []lgr.Option{lgr.Out(w), lgr.Err(w), lgr.Msec, lgr.LevelBraces}
	if level <= slog.LevelDebug {
		opts = append(opts, lgr.Debug)
	}
	h := &lgrHandler{l: lgr.New(opts...)}
	return slog.New(&levelHandler{level: level, Handler: h})
}

// SetupGlobalLogger replaces slog default logger. Std log output is routed there too.
func SetupGlobalLogger(level slog.Level, w io.Writer) {
	slog.SetDefault(NewLogger(level, w))
}

func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

type levelHandler struct {
	slog.Handler
	level slog.Level
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.Handler.Enabled(ctx, level)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

// lgrHandler renders records as "LEVEL message key=value ..." lines for lgr.
// Level filtering is left to levelHandler.
type lgrHandler struct {
	l lgr.L
	// attrs are rendered once by WithAttrs, each with a leading space.
	attrs string
	// group is the key prefix, like "req.".
	group string
}

func (h *lgrHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *lgrHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)
		return true
	})
	h.l.Logf("%s %s", lgrLevel(r.Level), b.String())
	return nil
}

func (h *lgrHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.group, a)
	}
	return &lgrHandler{l: h.l, attrs: b.String(), group: h.group}
}

func (h *lgrHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &lgrHandler{l: h.l, attrs: h.attrs, group: h.group + name + "."}
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, prefix, ga)
		}
		return
	}

	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	b.WriteString(" ")
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteString("=")
	b.WriteString(v)
}

func lgrLevel(level slog.Level) string {
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

package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

const timeLayout = "2006-01-02 15:04:05.000"

// textHandler writes one human-readable line per record:
//
//	2024-05-01 10:00:00.000 INFO  Server stored server_id=7 server_name="Home NAS"
//
// Attributes added through WithAttrs are rendered once and reused
type textHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	color  bool
	prefix string // open groups, dotted, with a trailing "."
	fixed  []byte // pre-rendered WithAttrs output
}

func newTextHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *textHandler {
	var lv slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		lv = opts.Level
	}
	return &textHandler{w: w, mu: &sync.Mutex{}, level: lv, color: color}
}

func (h *textHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = r.Time.AppendFormat(buf, timeLayout)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, r.Level)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	buf = append(buf, h.fixed...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *textHandler) appendLevel(buf []byte, l slog.Level) []byte {
	name, tint := "ERROR", ansiRed
	switch {
	case l < slog.LevelInfo:
		name, tint = "DEBUG", ansiGray
	case l < slog.LevelWarn:
		name, tint = "INFO ", ansiGreen
	case l < slog.LevelError:
		name, tint = "WARN ", ansiYellow
	}
	if !h.color {
		return append(buf, name...)
	}
	return append(append(append(buf, tint...), name...), ansiReset...)
}

func (h *textHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, p, ga)
		}
		return buf
	}

	key := prefix + a.Key
	val := renderValue(a.Value)
	if val == "" || strings.ContainsAny(val, " \t\n\"") {
		val = strconv.Quote(val)
	}

	buf = append(buf, ' ')
	switch {
	case h.color && a.Key == KeyError:
		buf = append(buf, ansiRed...)
		buf = append(buf, key...)
		buf = append(buf, '=')
		buf = append(buf, val...)
		buf = append(buf, ansiReset...)
	case h.color:
		buf = append(buf, ansiCyan...)
		buf = append(buf, key...)
		buf = append(buf, ansiReset...)
		buf = append(buf, '=')
		buf = append(buf, val...)
	default:
		buf = append(buf, key...)
		buf = append(buf, '=')
		buf = append(buf, val...)
	}
	return buf
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.fixed = append([]byte(nil), h.fixed...)
	for _, a := range attrs {
		c.fixed = c.appendAttr(c.fixed, c.prefix, a)
	}
	return &c
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

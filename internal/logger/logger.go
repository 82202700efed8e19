// Package logger is the process-wide structured logger. It wraps log/slog
// behind package-level functions so every component logs with the same
// level, format and field keys, and so the level can change at runtime.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Config selects the level, format and destination of log output
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var levelNames = map[string]slog.Level{
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
}

var (
	// level is shared by every handler built below, so SetLevel never
	// rebuilds the handler
	level  = new(slog.LevelVar)
	format atomic.Value // "text" or "json"

	mu     sync.Mutex
	sink   io.Writer = os.Stdout
	closer io.Closer
	color  bool

	active atomic.Pointer[slog.Logger]
)

func init() {
	format.Store("text")
	color = isTerminal(os.Stdout.Fd())
	rebuild()
}

// rebuild installs a handler for the current sink and format
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format.Load() == "json" {
		h = slog.NewJSONHandler(sink, opts)
	} else {
		h = newTextHandler(sink, opts, color)
	}
	active.Store(slog.New(h))
}

// Init applies cfg. Empty fields keep their current setting.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, c, useColor, err := openSink(cfg.Output)
		if err != nil {
			return err
		}
		setSink(w, c, useColor)
	}
	SetLevel(cfg.Level)
	SetFormat(cfg.Format)
	rebuild()
	return nil
}

func openSink(name string) (io.Writer, io.Closer, bool, error) {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout, nil, isTerminal(os.Stdout.Fd()), nil
	case "stderr":
		return os.Stderr, nil, isTerminal(os.Stderr.Fd()), nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to open log file %q: %w", name, err)
	}
	return f, f, false, nil
}

// setSink replaces the destination, closing a previously opened log file
func setSink(w io.Writer, c io.Closer, useColor bool) {
	mu.Lock()
	prev := closer
	sink, closer, color = w, c, useColor
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
}

// InitWithWriter sends output to w. Intended for tests.
func InitWithWriter(w io.Writer, lvl, f string, enableColor bool) {
	setSink(w, nil, enableColor)
	SetLevel(lvl)
	SetFormat(f)
	rebuild()
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if l, ok := levelNames[strings.ToUpper(name)]; ok {
		level.Set(l)
	}
}

// GetLevel returns the minimum level name
func GetLevel() string {
	switch l := level.Level(); {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// SetFormat switches between "text" and "json". Unknown formats are
// ignored.
func SetFormat(f string) {
	f = strings.ToLower(f)
	if f != "text" && f != "json" {
		return
	}
	if format.Swap(f) != f {
		rebuild()
	}
}

func logAt(ctx context.Context, l slog.Level, msg string, args []any) {
	if l < level.Level() {
		return
	}
	args = FromContext(ctx).prepend(args)
	active.Load().Log(ctx, l, msg, args...)
}

// Debug logs msg with alternating key/value args or slog.Attr values
func Debug(msg string, args ...any) { logAt(context.Background(), slog.LevelDebug, msg, args) }

func Info(msg string, args ...any)  { logAt(context.Background(), slog.LevelInfo, msg, args) }
func Warn(msg string, args ...any)  { logAt(context.Background(), slog.LevelWarn, msg, args) }
func Error(msg string, args ...any) { logAt(context.Background(), slog.LevelError, msg, args) }

// DebugCtx is Debug prefixed with the request fields carried by ctx
func DebugCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelDebug, msg, args)
}

func InfoCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelInfo, msg, args)
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelWarn, msg, args)
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelError, msg, args)
}

// With returns a logger that always adds args
func With(args ...any) *slog.Logger {
	return active.Load().With(args...)
}

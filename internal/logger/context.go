package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext carries the request-scoped fields prepended by the *Ctx
// logging functions
type LogContext struct {
	TraceID   string
	SpanID    string
	RequestID string // unique per accepted request
	Opcode    string // operation name (GET_SERVER_LIST, UPLOAD, ...)
	ServerID  int64  // caller-supplied server id
	Type      string // client-declared protocol label
	ClientIP  string
	StartTime time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext starts a LogContext for a request from clientIP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone returns a copy of lc. Cloning nil yields nil.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithRequest returns a copy describing one dispatched request
func (lc *LogContext) WithRequest(requestID, opcode string, serverID int64, typ string) *LogContext {
	c := lc.Clone()
	if c == nil {
		c = &LogContext{StartTime: time.Now()}
	}
	c.RequestID = requestID
	c.Opcode = opcode
	c.ServerID = serverID
	c.Type = typ
	return c
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.TraceID = traceID
		c.SpanID = spanID
	}
	return c
}

// DurationMs returns the time since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// prepend returns args preceded by the non-empty request fields of lc
func (lc *LogContext) prepend(args []any) []any {
	if lc == nil {
		return args
	}
	out := make([]any, 0, 14+len(args))
	for _, f := range []struct {
		key string
		val any
		set bool
	}{
		{KeyTraceID, lc.TraceID, lc.TraceID != ""},
		{KeySpanID, lc.SpanID, lc.SpanID != ""},
		{KeyRequestID, lc.RequestID, lc.RequestID != ""},
		{KeyOpcode, lc.Opcode, lc.Opcode != ""},
		{KeyServerID, lc.ServerID, lc.ServerID != 0},
		{KeyType, lc.Type, lc.Type != ""},
		{KeyClientIP, lc.ClientIP, lc.ClientIP != ""},
	} {
		if f.set {
			out = append(out, f.key, f.val)
		}
	}
	return append(out, args...)
}

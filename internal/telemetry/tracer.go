package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on nsmd spans
const (
	AttrClientIP = "client.ip"

	AttrRequestID  = "nsmd.request_id"
	AttrOpcode     = "nsmd.opcode"
	AttrServerID   = "nsmd.server_id"
	AttrType       = "nsmd.type"
	AttrRoute      = "nsmd.route"
	AttrServerAddr = "nsmd.server_addr"

	AttrStoreKey = "store.key"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
)

func ClientIP(ip string) attribute.KeyValue { return attribute.String(AttrClientIP, ip) }
func RequestID(id string) attribute.KeyValue { return attribute.String(AttrRequestID, id) }
func Opcode(name string) attribute.KeyValue { return attribute.String(AttrOpcode, name) }
func ServerID(id int64) attribute.KeyValue { return attribute.Int64(AttrServerID, id) }
func Type(t string) attribute.KeyValue { return attribute.String(AttrType, t) }
func Route(kind string) attribute.KeyValue { return attribute.String(AttrRoute, kind) }
func ServerAddr(addr string) attribute.KeyValue { return attribute.String(AttrServerAddr, addr) }
func StoreKey(k string) attribute.KeyValue { return attribute.String(AttrStoreKey, k) }
func HTTPRoute(pattern string) attribute.KeyValue { return attribute.String(AttrHTTPRoute, pattern) }
func HTTPStatus(code int) attribute.KeyValue { return attribute.Int(AttrHTTPStatus, code) }

// StartDispatchSpan starts the span covering one dispatched request. typ
// is omitted when empty.
func StartDispatchSpan(ctx context.Context, opcode, requestID string, serverID int64, typ string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, 4+len(attrs))
	all = append(all, Opcode(opcode), RequestID(requestID), ServerID(serverID))
	if typ != "" {
		all = append(all, Type(typ))
	}
	return StartSpan(ctx, "dispatch."+opcode, trace.WithAttributes(append(all, attrs...)...))
}

// StartStoreSpan starts a span for a load or save of a preferences key
func StartStoreSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return StartSpan(ctx, "store."+op, trace.WithAttributes(StoreKey(key)))
}

// StartAPISpan starts a server span for an HTTP request. The matched
// route is known only after routing; callers add it with HTTPRoute.
func StartAPISpan(ctx context.Context, method, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(AttrHTTPMethod, method)}, attrs...)
	return StartSpan(ctx, "api."+method+" "+path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(all...))
}

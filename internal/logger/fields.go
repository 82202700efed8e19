package logger

import "log/slog"

// Standard field keys. Use them for every structured log call so log
// queries work across packages.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Request dispatch
	KeyRequestID  = "request_id"
	KeyOpcode     = "opcode"
	KeyServerID   = "server_id"
	KeyNewID      = "new_server_id"
	KeyTargetID   = "target_server_id"
	KeyType       = "type"
	KeyRoute      = "route"
	KeyCancelled  = "cancelled"
	KeySuccess    = "success"
	KeyInFlight   = "in_flight"
	KeyDurationMs = "duration_ms"

	// Locations and shares
	KeyServerAddr = "server_addr"
	KeyServerName = "server_name"
	KeyShareName  = "share_name"
	KeyEntries    = "entries"
	KeyStoreKey   = "store_key"
	KeyStoreType  = "store_type"

	// Files
	KeyPath       = "path"
	KeyNewPath    = "new_path"
	KeyDescriptor = "descriptor"
	KeyBytes      = "bytes"

	// Transport
	KeyClientIP = "client_ip"
	KeyMethod   = "method"
	KeyStatus   = "status"
	KeyCommand  = "command"

	KeyError = "error"
)

// Err returns a slog.Attr for an error. A nil error yields an empty attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ServerID returns a slog.Attr for a server id
func ServerID(id int64) slog.Attr {
	return slog.Int64(KeyServerID, id)
}

// Opcode returns a slog.Attr for an operation name
func Opcode(name string) slog.Attr {
	return slog.String(KeyOpcode, name)
}

// Path returns a slog.Attr for a file or directory path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// ServerAddr returns a slog.Attr for a location address
func ServerAddr(addr string) slog.Attr {
	return slog.String(KeyServerAddr, addr)
}

package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently so
// that log aggregation can query on them.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Connection and session
	KeyConnID     = "conn_id"
	KeyClientIP   = "client_ip"
	KeyRemoteAddr = "remote_addr"
	KeyUsername   = "username"
	KeyAdmin      = "admin"
	KeyAttempt    = "attempt"

	// Protocol
	KeyKind        = "kind"
	KeyPayloadSize = "payload_size"
	KeyStatusMsg   = "status_msg"

	// Entities
	KeyPluginID        = "plugin_id"
	KeyPluginVersion   = "plugin_version"
	KeyResourceID      = "resource_id"
	KeyResourceVersion = "resource_version"
	KeyPublishState    = "publish_state"
	KeyBuildState      = "build_state"

	// Transfers
	KeyKey          = "key"
	KeyPath         = "path"
	KeySize         = "size"
	KeyOffset       = "offset"
	KeyBytesWritten = "bytes_written"
	KeyBytesSent    = "bytes_sent"
	KeyChunks       = "chunks"

	// Server
	KeyAddress     = "address"
	KeyActiveConns = "active_conns"
	KeyDurationMs  = "duration_ms"
	KeyError       = "error"
)

// Err returns an error attribute, or an empty attribute for nil errors.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ClientIP returns a client IP attribute.
func ClientIP(ip string) slog.Attr {
	return slog.String(KeyClientIP, ip)
}

// Username returns a username attribute.
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Kind returns a message kind attribute.
func Kind(kind string) slog.Attr {
	return slog.String(KeyKind, kind)
}

// Size returns a byte size attribute.
func Size(n int64) slog.Attr {
	return slog.Int64(KeySize, n)
}

// DurationMs returns a duration attribute in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext carries connection-scoped fields that every *Ctx log call
// prepends to its output.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	ConnID    string    // Connection identifier assigned on accept
	ClientIP  string    // Remote address without port
	Username  string    // Session user ("anonymous" until login)
	Kind      string    // Message kind being handled
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext stored in ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a freshly accepted connection.
func NewLogContext(connID, clientIP string) *LogContext {
	return &LogContext{
		ConnID:    connID,
		ClientIP:  clientIP,
		Username:  "anonymous",
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithKind returns a copy with the message kind set.
func (lc *LogContext) WithKind(kind string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Kind = kind
	}
	return clone
}

// WithUser returns a copy with the username set.
func (lc *LogContext) WithUser(username string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Username = username
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the time since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

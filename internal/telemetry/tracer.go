package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for store operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientAddr = "client.address"

	// ========================================================================
	// Protocol attributes
	// ========================================================================
	AttrProtocol  = "protocol.name"
	AttrKind      = "store.kind"
	AttrKindCode  = "store.kind_code"
	AttrOutcome   = "store.outcome"
	AttrStatusMsg = "store.status_msg"

	// ========================================================================
	// Entity attributes
	// ========================================================================
	AttrPluginID        = "store.plugin_id"
	AttrPluginVersion   = "store.plugin_version"
	AttrResourceID      = "store.resource_id"
	AttrResourceVersion = "store.resource_version"

	// ========================================================================
	// Transfer attributes
	// ========================================================================
	AttrDirection = "transfer.direction"
	AttrSize      = "transfer.size"
	AttrBytes     = "transfer.bytes"
	AttrChunks    = "transfer.chunks"

	// ========================================================================
	// User/Auth attributes
	// ========================================================================
	AttrUsername = "user.name"
	AttrAdmin    = "user.admin"
	AttrAuth     = "auth.outcome"

	// ========================================================================
	// Storage backend attributes
	// ========================================================================
	AttrStoreType = "store.type"
	AttrBucket    = "storage.bucket"
	AttrKey       = "storage.key"
)

// Span names.
// Format: <component>.<operation>
const (
	SpanSessionMessage = "session.message"
	SpanAuthLogin      = "auth.login"
	SpanTransferUpload = "transfer.upload"
	SpanTransferDown   = "transfer.download"
	SpanBlobCommit     = "blob.commit"
	SpanBlobOpen       = "blob.open"
	SpanBlobDelete     = "blob.delete"

	EventChunk = "chunk"
)

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Kind returns an attribute for the message kind name
func Kind(name string) attribute.KeyValue {
	return attribute.String(AttrKind, name)
}

// KindCode returns an attribute for the numeric message kind
func KindCode(code uint32) attribute.KeyValue {
	return attribute.Int64(AttrKindCode, int64(code))
}

// Outcome returns an attribute for the result class of a message
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// StatusMsg returns an attribute for a response status text
func StatusMsg(msg string) attribute.KeyValue {
	return attribute.String(AttrStatusMsg, msg)
}

// PluginID returns an attribute for a plugin ID
func PluginID(id int32) attribute.KeyValue {
	return attribute.Int(AttrPluginID, int(id))
}

// PluginVersion returns an attribute for a plugin version
func PluginVersion(v int32) attribute.KeyValue {
	return attribute.Int(AttrPluginVersion, int(v))
}

// ResourceID returns an attribute for a resource ID
func ResourceID(id int32) attribute.KeyValue {
	return attribute.Int(AttrResourceID, int(id))
}

// ResourceVersion returns an attribute for a resource version
func ResourceVersion(v int32) attribute.KeyValue {
	return attribute.Int(AttrResourceVersion, int(v))
}

// Direction returns an attribute for the transfer direction
func Direction(dir string) attribute.KeyValue {
	return attribute.String(AttrDirection, dir)
}

// Size returns an attribute for a declared file size
func Size(n int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, n)
}

// Bytes returns an attribute for bytes actually moved
func Bytes(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytes, n)
}

// Chunks returns an attribute for the number of chunks exchanged
func Chunks(n int) attribute.KeyValue {
	return attribute.Int(AttrChunks, n)
}

// Username returns an attribute for username
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Admin returns an attribute for the admin flag
func Admin(admin bool) attribute.KeyValue {
	return attribute.Bool(AttrAdmin, admin)
}

// AuthOutcome returns an attribute for a login outcome
func AuthOutcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrAuth, outcome)
}

// StoreType returns an attribute for store type
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Bucket returns an attribute for S3 bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for a blob key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Transfer directions.
const (
	DirectionUpload   = "upload"
	DirectionDownload = "download"
)

// StartBlobSpan starts a span for one blob store call on backend.
func StartBlobSpan(ctx context.Context, name, backend, key string) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(StoreType(backend), StorageKey(key)))
}

// StartMessageSpan starts a span for one store protocol message.
func StartMessageSpan(ctx context.Context, kind string, code uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		attribute.String(AttrProtocol, "cryptoolstore"),
		Kind(kind),
		KindCode(code),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanSessionMessage, trace.WithAttributes(allAttrs...))
}

// StartTransferSpan starts a span for a file transfer.
func StartTransferSpan(ctx context.Context, direction, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	name := SpanTransferUpload
	if direction == DirectionDownload {
		name = SpanTransferDown
	}
	allAttrs := []attribute.KeyValue{
		Direction(direction),
		StorageKey(key),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

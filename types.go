package goSession

import (
	"io"
	"time"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
)

// Clock supplies the current time to the expiry check and the
// last-access cookie. Tests inject a fake; production uses time.Now.
type Clock func() time.Time

// ValueCodec converts an application-defined value to and from its flat
// byte form. Codecs are registered by name on the [Builder]; the name is
// stored alongside the value so decoding can find the same codec again.
type ValueCodec interface {
	Name() string
	Marshal(value any) ([]byte, error)
	Unmarshal(data []byte) (any, error)
}

// AuditEvent is a structured audit record emitted by the session engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// Audit event type names, re-exported for sink consumers.
const (
	// EventSessionLoaded is an exported constant or variable used by the session engine.
	EventSessionLoaded = internalaudit.EventSessionLoaded
	// EventSessionEmpty is an exported constant or variable used by the session engine.
	EventSessionEmpty = internalaudit.EventSessionEmpty
	// EventSessionExpired is an exported constant or variable used by the session engine.
	EventSessionExpired = internalaudit.EventSessionExpired
	// EventSessionStored is an exported constant or variable used by the session engine.
	EventSessionStored = internalaudit.EventSessionStored
	// EventSessionTerminated is an exported constant or variable used by the session engine.
	EventSessionTerminated = internalaudit.EventSessionTerminated
	// EventMalformedCookie is an exported constant or variable used by the session engine.
	EventMalformedCookie = internalaudit.EventMalformedCookie
	// EventConfigReloaded is an exported constant or variable used by the session engine.
	EventConfigReloaded = internalaudit.EventConfigReloaded
	// EventStoreFailure is an exported constant or variable used by the session engine.
	EventStoreFailure = internalaudit.EventStoreFailure
)

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

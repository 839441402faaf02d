// Package store provides optional server-side persistence for session
// payloads. In the default client-side mode the payload rides inside the
// cookies themselves and no store is involved; wiring a Store into the
// Builder switches the manager to keep only an identifier cookie on the
// client and the serialized payload here.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps backend failures so callers can distinguish
// infrastructure trouble from an absent session.
var ErrUnavailable = errors.New("session store unavailable")

// Store persists opaque session payloads by session identifier.
// Absent sessions are reported as (nil, nil), not as an error.
//
// Touch extends a record's lifetime without rewriting its payload; the
// manager calls it on read-only activity so that an actively used
// session never expires server-side while its last-access cookie is
// still fresh. Touching an absent id is not an error.
type Store interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Remove(ctx context.Context, id string) error
}

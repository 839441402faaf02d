// Package goSession provides client-side encrypted cookie sessions with
// AES/DES/3DES/Blowfish payload encryption, HMAC signing over the
// ciphertext, transparent cookie chunking, and optional server-side
// storage backed by Redis.
//
// The package is designed for concurrent server workloads: Manager
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build]. The [Session] values a Manager hands out are
// request-scoped and must not be shared.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder],
// [Config], [Session], and value types (MetricsSnapshot, AuditEvent,
// etc.). Payload serialization, the cipher/signer pair, and audit
// dispatch live under internal/ and are never exported. The cookie wire
// format lives in the cookie sub-package; pluggable backends in store.
//
// # What this package must NOT do
//
//   - Surface cookie corruption to callers: tampered, truncated, or
//     foreign-key cookies always decode to an empty session, never an
//     error.
//   - Perform I/O during Load. Decoding is deferred to the first session
//     access; a handler that ignores its session pays nothing.
//   - Import any sub-package that re-imports goSession (no import cycles).
//
// # Performance contract
//
// Load is the hot path. It must not run crypto and must allocate only
// the Session struct and its cookie map. Decryption, verification, and
// store round-trips happen at most once per request, on first access.
package goSession

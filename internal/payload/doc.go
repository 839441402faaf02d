// Package payload implements the binary session serialization format.
//
// # Components
//
//   - [Entry] — one ordered key/value pair with a [Kind] tag.
//   - [Encode] / [Decode] — deterministic length-prefixed wire format with a
//     leading version byte; any structural violation decodes to [ErrMalformed].
//   - Scalar helpers ([Int64Bytes], [Float64Bytes], [BoolBytes] and their
//     Value counterparts) — fixed-width big-endian encodings for typed values.
//
// # Architecture boundaries
//
// This package turns entries into plaintext bytes and back. Encryption,
// signing, and transport happen in layers above it.
//
// # What this package must NOT do
//
//   - Interpret value bytes beyond the scalar helpers (application codecs are
//     registered at the goSession layer).
//   - Produce different bytes for the same entries across calls.
//   - Import goSession or any sibling internal package.
package payload

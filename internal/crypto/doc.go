// Package crypto implements the symmetric primitives under the cookie codec.
//
// # Components
//
//   - [Cipher] — block encryption (AES, DES, DESede, Blowfish; CBC or ECB) with
//     mandatory PKCS#7 padding and an IV derived from the secret key.
//   - [Signer] — HMAC over ciphertext (SHA-256, SHA-1, SHA-512) with
//     constant-time verification.
//   - [ParseAlgorithm] — the algorithm allow-list; NoPadding variants and
//     unknown transformations are rejected here, at construction time.
//
// # Architecture boundaries
//
// This package validates algorithms and keys and transforms bytes. It does NOT
// know about cookies, chunking, or base64 — that is the cookie package's job.
//
// # What this package must NOT do
//
//   - Accept a cipher or key it cannot fully validate up front.
//   - Surface padding or block-size details to callers beyond [ErrDecryptFailed].
//   - Import goSession or any sibling internal package.
package crypto

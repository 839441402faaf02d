package crypto

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"
)

var (
	ErrUnsupportedDigest = errors.New("unsupported signer digest")
	ErrEmptyToken        = errors.New("signer token must not be empty")
)

// Signer computes a keyed HMAC over ciphertext. The signature is checked
// before any decryption attempt, so tampered or truncated ciphertext is
// rejected without touching the cipher.
type Signer struct {
	token []byte
	hash  func() hash.Hash
}

// NewSigner builds a signer from a digest name ("sha256", "sha1",
// "sha512") and a secret token distinct from the encryption key.
func NewSigner(digest string, token []byte) (*Signer, error) {
	if len(token) == 0 {
		return nil, ErrEmptyToken
	}

	var h func() hash.Hash
	switch strings.ToLower(strings.TrimSpace(digest)) {
	case "", "sha256":
		h = sha256.New
	case "sha1":
		h = sha1.New
	case "sha512":
		h = sha512.New
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDigest, digest)
	}

	return &Signer{token: token, hash: h}, nil
}

// Sign returns the HMAC of payload.
func (s *Signer) Sign(payload []byte) []byte {
	mac := hmac.New(s.hash, s.token)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Verify reports whether signature matches payload. Comparison is
// constant time via hmac.Equal.
func (s *Signer) Verify(payload, signature []byte) bool {
	if len(signature) == 0 {
		return false
	}
	return hmac.Equal(s.Sign(payload), signature)
}

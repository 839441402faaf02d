package goSession

import (
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/internal/crypto"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Crypto  CryptoConfig
	Cookie  CookieConfig
	Expiry  ExpiryConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
CRYPTO CONFIG
====================================
*/

// CryptoConfig defines a public type used by goSession APIs.
//
// SecretKey encrypts the session payload; SecretToken keys the HMAC over
// the ciphertext. The two secrets are independent: rotating either one
// invalidates every previously issued cookie.
type CryptoConfig struct {
	SecretKey   []byte
	SecretToken []byte
	Algorithm   string // "aes/cbc" (default), "aes/ecb", "des/cbc", "des/ecb", "desede/cbc", "desede/ecb", "blowfish/cbc", "blowfish/ecb"
	Digest      string // "sha256" (default), "sha1", "sha512"
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by goSession APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name              string // payload chunk prefix: cookies are "<Name>_0", "<Name>_1", ...
	LastAccessName    string
	IdentifierName    string
	IdentifierEnabled bool
	Path              string
	Domain            string
	HTTPOnly          bool
	Secure            bool
	SameSite          http.SameSite
	MaxChunkSize      int
}

/*
====================================
EXPIRY CONFIG
====================================
*/

// ExpiryConfig defines a public type used by goSession APIs.
//
// MaxInactivityInterval bounds the idle time between two requests that
// still resolves to the same session. Zero or negative disables expiry.
type ExpiryConfig struct {
	MaxInactivityInterval time.Duration
}

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Crypto: CryptoConfig{
			Algorithm: "aes/cbc",
			Digest:    "sha256",
		},
		Cookie: CookieConfig{
			Name:              "gosession",
			LastAccessName:    "gosession_lat",
			IdentifierName:    "gosession_id",
			IdentifierEnabled: true,
			Path:              "/",
			HTTPOnly:          true,
			Secure:            false,
			SameSite:          http.SameSiteLaxMode,
			MaxChunkSize:      1800,
		},
		Expiry: ExpiryConfig{
			MaxInactivityInterval: 30 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validation failures are fatal configuration errors: they must reject
// Build or Reload, never fail lazily inside a request.
func (c Config) Validate() error {
	if len(c.Crypto.SecretKey) == 0 {
		return ErrEmptySecretKey
	}

	// Constructing the cipher and signer exercises the full allow-list:
	// unsupported algorithms, NoPadding variants, and key size mismatches
	// all surface here.
	if _, err := crypto.NewCipher(c.Crypto.Algorithm, c.Crypto.SecretKey); err != nil {
		return err
	}
	if _, err := crypto.NewSigner(c.Crypto.Digest, c.Crypto.SecretToken); err != nil {
		return err
	}

	if c.Cookie.Name == "" {
		return ErrCookieNameInvalid
	}
	if c.Cookie.LastAccessName == "" || c.Cookie.LastAccessName == c.Cookie.Name {
		return ErrCookieNameInvalid
	}
	if c.Cookie.IdentifierName == "" || c.Cookie.IdentifierName == c.Cookie.Name || c.Cookie.IdentifierName == c.Cookie.LastAccessName {
		return ErrCookieNameInvalid
	}

	if c.Cookie.MaxChunkSize < 64 || c.Cookie.MaxChunkSize > 4000 {
		return ErrChunkSizeInvalid
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Crypto.SecretKey = append([]byte(nil), cfg.Crypto.SecretKey...)
	out.Crypto.SecretToken = append([]byte(nil), cfg.Crypto.SecretToken...)
	return out
}

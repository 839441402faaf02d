package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/internal/crypto"
	"github.com/MrEthical07/goSession/internal/payload"
	"github.com/MrEthical07/goSession/store"
)

var (
	// ErrUnsupportedAlgorithm is an exported constant or variable used by the session engine.
	ErrUnsupportedAlgorithm = crypto.ErrUnsupportedAlgorithm
	// ErrNoPaddingAlgorithm is an exported constant or variable used by the session engine.
	ErrNoPaddingAlgorithm = crypto.ErrNoPaddingAlgorithm
	// ErrInvalidKeySize is an exported constant or variable used by the session engine.
	ErrInvalidKeySize = crypto.ErrInvalidKeySize
	// ErrUnsupportedDigest is an exported constant or variable used by the session engine.
	ErrUnsupportedDigest = crypto.ErrUnsupportedDigest
	// ErrDecryptFailed is an exported constant or variable used by the session engine.
	ErrDecryptFailed = crypto.ErrDecryptFailed
	// ErrMalformedPayload is an exported constant or variable used by the session engine.
	ErrMalformedPayload = payload.ErrMalformed
	// ErrValueKind is an exported constant or variable used by the session engine.
	ErrValueKind = payload.ErrValueKind
	// ErrEmptySecretKey is an exported constant or variable used by the session engine.
	ErrEmptySecretKey = errors.New("secret key must not be empty")
	// ErrEmptySecretToken is an exported constant or variable used by the session engine.
	ErrEmptySecretToken = crypto.ErrEmptyToken
	// ErrCookieNameInvalid is an exported constant or variable used by the session engine.
	ErrCookieNameInvalid = errors.New("invalid cookie name configuration")
	// ErrChunkSizeInvalid is an exported constant or variable used by the session engine.
	ErrChunkSizeInvalid = errors.New("invalid max cookie chunk size")
	// ErrCodecUnknown is an exported constant or variable used by the session engine.
	ErrCodecUnknown = errors.New("unknown value codec")
	// ErrCodecNameInvalid is an exported constant or variable used by the session engine.
	ErrCodecNameInvalid = errors.New("invalid value codec name")
	// ErrSessionCommitted is an exported constant or variable used by the session engine.
	ErrSessionCommitted = errors.New("session already committed")
	// ErrManagerClosed is an exported constant or variable used by the session engine.
	ErrManagerClosed = errors.New("session manager closed")
	// ErrBuilderUsed is an exported constant or variable used by the session engine.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrStoreRequiresIdentifier is an exported constant or variable used by the session engine.
	ErrStoreRequiresIdentifier = errors.New("server-side store requires the identifier cookie")
	// ErrStoreUnavailable is an exported constant or variable used by the session engine.
	ErrStoreUnavailable = store.ErrUnavailable
)

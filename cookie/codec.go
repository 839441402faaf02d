// Package cookie implements the client-side session wire format: encrypt
// the serialized session, sign the ciphertext, base64-encode
// "ciphertext:signature", and partition the result across as many cookies
// as the value size requires.
//
// Decoding is deliberately forgiving: a tampered, truncated, foreign-key
// or otherwise malformed cookie set never produces an error, only an
// absent session. Corrupt cookies must degrade to "no session", not break
// the request, and signature failures are indistinguishable from format
// failures so an attacker gains no oracle.
package cookie

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/MrEthical07/goSession/internal/crypto"
)

// delimiter separates ciphertext from signature inside a reassembled
// token. ':' is not part of the base64 URL alphabet, so it can never
// appear inside either encoded half.
const delimiter = ":"

// DefaultMaxChunkSize bounds one cookie value. Browsers cap whole
// cookies near 4K; 1800 leaves generous room for the name and attributes.
const DefaultMaxChunkSize = 1800

var encoding = base64.RawURLEncoding

// Pair is one cookie name/value to be written to the response.
type Pair struct {
	Name  string
	Value string
}

// Codec converts opaque payloads to and from partitioned cookie values.
// A Codec is immutable and safe for concurrent use; config reloads build
// a fresh Codec rather than mutating one in place.
type Codec struct {
	cipher   *crypto.Cipher
	signer   *crypto.Signer
	prefix   string
	maxChunk int
}

// NewCodec wires a cipher and signer under a cookie name prefix. Payload
// cookies are named "<prefix>_0", "<prefix>_1", ...
func NewCodec(cipher *crypto.Cipher, signer *crypto.Signer, prefix string, maxChunk int) *Codec {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunkSize
	}
	return &Codec{cipher: cipher, signer: signer, prefix: prefix, maxChunk: maxChunk}
}

// ChunkName returns the cookie name for chunk index i.
func (c *Codec) ChunkName(i int) string {
	return c.prefix + "_" + strconv.Itoa(i)
}

// EncodeValue produces the single-cookie token for payload: base64 of the
// ciphertext, the delimiter, base64 of the HMAC over that ciphertext.
func (c *Codec) EncodeValue(payload []byte) string {
	ciphertext := c.cipher.Encrypt(payload)
	signature := c.signer.Sign(ciphertext)
	return encoding.EncodeToString(ciphertext) + delimiter + encoding.EncodeToString(signature)
}

// DecodeValue reverses EncodeValue. The bool result is false for every
// malformed, tampered or undecryptable token.
func (c *Codec) DecodeValue(token string) ([]byte, bool) {
	if strings.TrimSpace(token) == "" {
		return nil, false
	}

	parts := strings.Split(token, delimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, false
	}

	ciphertext, err := encoding.DecodeString(parts[0])
	if err != nil || len(ciphertext) == 0 {
		return nil, false
	}
	signature, err := encoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}

	// Signature covers ciphertext, so verification gates decryption.
	if !c.signer.Verify(ciphertext, signature) {
		return nil, false
	}

	payload, err := c.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, false
	}

	return payload, true
}

// Encode encrypts, signs and partitions payload into ordered cookie
// pairs with contiguous indices starting at 0.
func (c *Codec) Encode(payload []byte) []Pair {
	token := c.EncodeValue(payload)

	n := (len(token) + c.maxChunk - 1) / c.maxChunk
	if n == 0 {
		n = 1
	}

	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		start := i * c.maxChunk
		end := start + c.maxChunk
		if end > len(token) {
			end = len(token)
		}
		pairs = append(pairs, Pair{Name: c.ChunkName(i), Value: token[start:end]})
	}

	return pairs
}

// Decode reassembles payload chunks from the request cookies. The chunk
// indices present must form exactly the run 0..n-1: a gap, an index past
// the run, or a non-numeric suffix invalidates the whole set.
func (c *Codec) Decode(cookies map[string]string) ([]byte, bool) {
	indices, ok := c.chunkIndices(cookies)
	if !ok || len(indices) == 0 {
		return nil, false
	}

	var token strings.Builder
	for i := 0; i < len(indices); i++ {
		value, present := cookies[c.ChunkName(i)]
		if !present || value == "" {
			return nil, false
		}
		token.WriteString(value)
	}

	return c.DecodeValue(token.String())
}

// MaxChunkIndex reports the highest payload chunk index present in the
// request, or -1. Commit uses it to expire indices the shrunken session
// no longer occupies, even when the incoming set was invalid.
func (c *Codec) MaxChunkIndex(cookies map[string]string) int {
	max := -1
	for name := range cookies {
		if i, ok := c.chunkIndex(name); ok && i > max {
			max = i
		}
	}
	return max
}

func (c *Codec) chunkIndex(name string) (int, bool) {
	rest, found := strings.CutPrefix(name, c.prefix+"_")
	if !found {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || strconv.Itoa(i) != rest {
		return 0, false
	}
	return i, true
}

// chunkIndices collects every chunk index present and checks it forms a
// contiguous run from 0.
func (c *Codec) chunkIndices(cookies map[string]string) ([]int, bool) {
	seen := map[int]bool{}
	for name := range cookies {
		rest, found := strings.CutPrefix(name, c.prefix+"_")
		if !found {
			continue
		}
		i, err := strconv.Atoi(rest)
		if err != nil || i < 0 || strconv.Itoa(i) != rest {
			// Foreign suffix under our prefix poisons the set.
			return nil, false
		}
		seen[i] = true
	}

	if len(seen) == 0 {
		return nil, true
	}
	indices := make([]int, 0, len(seen))
	for i := 0; i < len(seen); i++ {
		if !seen[i] {
			return nil, false
		}
		indices = append(indices, i)
	}

	return indices, true
}

package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blowfish"
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported cipher algorithm")
	ErrNoPaddingAlgorithm   = errors.New("nopadding cipher modes are not supported")
	ErrInvalidKeySize       = errors.New("invalid key size for cipher algorithm")
	ErrDecryptFailed        = errors.New("decryption failed")
)

// Mode selects the block cipher chaining mode.
type Mode uint8

const (
	ModeCBC Mode = iota
	ModeECB
)

// Algorithm is a parsed cipher algorithm name.
type Algorithm struct {
	Cipher string
	Mode   Mode
}

// ParseAlgorithm parses names of the form "cipher/mode" or
// "cipher/mode/padding", e.g. "aes/cbc" or "desede/ecb/pkcs7".
// Padding defaults to PKCS#7 and is the only supported padding:
// "nopadding" variants fail because payload lengths vary and callers
// must never see block alignment requirements.
func ParseAlgorithm(name string) (Algorithm, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(name)), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}

	if len(parts) == 3 {
		switch parts[2] {
		case "pkcs5", "pkcs7", "pkcs5padding", "pkcs7padding":
		case "nopadding":
			return Algorithm{}, fmt.Errorf("%w: %q", ErrNoPaddingAlgorithm, name)
		default:
			return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
		}
	}

	alg := Algorithm{Cipher: parts[0]}

	switch parts[1] {
	case "cbc":
		alg.Mode = ModeCBC
	case "ecb":
		alg.Mode = ModeECB
	default:
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}

	switch alg.Cipher {
	case "aes", "des", "desede", "blowfish":
	default:
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}

	return alg, nil
}

// Cipher encrypts and decrypts opaque byte payloads with a block cipher
// and PKCS#7 padding. The IV for CBC modes is derived deterministically
// from the secret key, so re-encrypting the same payload under the same
// key yields the same ciphertext.
type Cipher struct {
	block cipher.Block
	mode  Mode
	iv    []byte
}

// NewCipher validates the algorithm name and key length and returns a
// ready cipher. All validation failures here are configuration errors:
// they must surface at startup or reload, never per request.
func NewCipher(algorithm string, key []byte) (*Cipher, error) {
	alg, err := ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	block, err := newBlock(alg.Cipher, key)
	if err != nil {
		return nil, err
	}

	c := &Cipher{block: block, mode: alg.Mode}
	if alg.Mode == ModeCBC {
		c.iv = deriveIV(key, block.BlockSize())
	}

	return c, nil
}

func newBlock(name string, key []byte) (cipher.Block, error) {
	switch name {
	case "aes":
		switch len(key) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: aes requires 16, 24 or 32 bytes, got %d", ErrInvalidKeySize, len(key))
		}
		return aes.NewCipher(key)
	case "des":
		if len(key) != 8 {
			return nil, fmt.Errorf("%w: des requires 8 bytes, got %d", ErrInvalidKeySize, len(key))
		}
		return des.NewCipher(key)
	case "desede":
		if len(key) != 24 {
			return nil, fmt.Errorf("%w: desede requires 24 bytes, got %d", ErrInvalidKeySize, len(key))
		}
		return des.NewTripleDESCipher(key)
	case "blowfish":
		if len(key) < 4 || len(key) > 56 {
			return nil, fmt.Errorf("%w: blowfish requires 4..56 bytes, got %d", ErrInvalidKeySize, len(key))
		}
		return blowfish.NewCipher(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
}

// deriveIV hashes the key and truncates to the block size. Deterministic
// per key: a reload with a new key invalidates old ciphertext wholesale.
func deriveIV(key []byte, blockSize int) []byte {
	sum := sha256.Sum256(key)
	return sum[:blockSize]
}

// Encrypt pads the plaintext to the block size and encrypts it.
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	padded := pad(plaintext, c.block.BlockSize())
	out := make([]byte, len(padded))

	switch c.mode {
	case ModeCBC:
		cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	case ModeECB:
		bs := c.block.BlockSize()
		for i := 0; i < len(padded); i += bs {
			c.block.Encrypt(out[i:i+bs], padded[i:i+bs])
		}
	}

	return out
}

// Decrypt reverses Encrypt. Any structural problem (empty input, bad
// block alignment, invalid padding) returns ErrDecryptFailed; callers
// map that to an empty session, never to a request failure.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	bs := c.block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, ErrDecryptFailed
	}

	out := make([]byte, len(ciphertext))

	switch c.mode {
	case ModeCBC:
		cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, ciphertext)
	case ModeECB:
		for i := 0; i < len(ciphertext); i += bs {
			c.block.Decrypt(out[i:i+bs], ciphertext[i:i+bs])
		}
	}

	return unpad(out, bs)
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append(make([]byte, 0, len(data)+n), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrDecryptFailed
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrDecryptFailed
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrDecryptFailed
		}
	}

	return data[:len(data)-n], nil
}

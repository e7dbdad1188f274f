// Package seal provides authenticated sealing of short string values,
// used to protect session identifiers carried in client cookies.
//
// The cipher is selected per hardware: AES-GCM where AES instructions
// are available, ChaCha20-Poly1305 otherwise. Sealed values are
// base64 RawURL encoded with the nonce prepended, so they are safe to
// place in a cookie.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// Algorithm identifies the AEAD algorithm backing a Sealer.
type Algorithm string

const (
	AlgAESGCM   Algorithm = "aes-gcm"
	AlgChaCha20 Algorithm = "chacha20-poly1305"
)

// Errors returned by this package.
var (
	ErrInvalidKey = errors.New("seal: key must be 32 bytes")
	ErrMalformed  = errors.New("seal: malformed sealed value")
	ErrOpenFailed = errors.New("seal: authentication failed")
	ErrUnknownAlg = errors.New("seal: unknown algorithm")
)

// Sealer seals and opens short string values with an AEAD cipher.
// It is safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
	alg  Algorithm
}

// New creates a Sealer, selecting the cipher best suited to the host
// hardware.
func New(key []byte) (*Sealer, error) {
	if hasAESHardware() {
		return NewWithAlgorithm(key, AlgAESGCM)
	}
	return NewWithAlgorithm(key, AlgChaCha20)
}

// NewWithAlgorithm creates a Sealer with an explicit algorithm.
func NewWithAlgorithm(key []byte, alg Algorithm) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	var aead cipher.AEAD
	var err error

	switch alg {
	case AlgAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case AlgChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, ErrUnknownAlg
	}
	if err != nil {
		return nil, err
	}

	return &Sealer{aead: aead, alg: alg}, nil
}

// Algorithm returns the algorithm backing this Sealer.
func (s *Sealer) Algorithm() Algorithm {
	return s.alg
}

// Seal encrypts and authenticates value, binding it to context.
// The same context must be supplied to Open.
func (s *Sealer) Seal(value, context string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Nonce is prepended to the ciphertext.
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(context))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
// Returns ErrOpenFailed for tampered or foreign values.
func (s *Sealer) Open(sealed, context string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrMalformed
	}
	if len(raw) < s.aead.NonceSize() {
		return "", ErrMalformed
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(context))
	if err != nil {
		return "", ErrOpenFailed
	}
	return string(plain), nil
}

// hasAESHardware reports whether the host likely has AES instructions.
// Go's crypto/aes uses AES-NI on amd64 and the ARM crypto extensions on
// arm64; other architectures prefer ChaCha20.
func hasAESHardware() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

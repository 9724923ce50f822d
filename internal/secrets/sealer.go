// Package secrets seals connector account credentials at rest.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the sealing key length in bytes.
const KeySize = chacha20poly1305.KeySize

// blobVersion is prepended to every sealed blob and authenticated as AAD.
const blobVersion byte = 0x01

// ErrOpen is returned when a blob cannot be authenticated under the key.
var ErrOpen = errors.New("secrets: cannot open sealed blob")

// Sealer encrypts small blobs with XChaCha20-Poly1305.
// Layout: version(1) || nonce(24) || ciphertext+tag.
type Sealer struct {
	key [KeySize]byte
}

// NewSealer accepts a hex-encoded 32-byte key. Any other non-empty string is
// treated as a passphrase and stretched with SHA-256, which is only suitable
// for local development.
func NewSealer(key string) (*Sealer, error) {
	if key == "" {
		return nil, errors.New("secrets: empty sealing key")
	}
	s := &Sealer{}
	if raw, err := hex.DecodeString(key); err == nil && len(raw) == KeySize {
		copy(s.key[:], raw)
		return s, nil
	}
	s.key = sha256.Sum256([]byte(key))
	return s, nil
}

// Seal encrypts plaintext under a fresh random nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	out := make([]byte, 1+chacha20poly1305.NonceSizeX, 1+chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	out[0] = blobVersion
	if _, err := rand.Read(out[1:]); err != nil {
		return nil, fmt.Errorf("secrets: nonce: %w", err)
	}
	return aead.Seal(out, out[1:], plaintext, out[:1]), nil
}

// Open authenticates and decrypts a blob produced by Seal.
func (s *Sealer) Open(blob []byte) ([]byte, error) {
	if len(blob) < 1+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: too short", ErrOpen)
	}
	if blob[0] != blobVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrOpen, blob[0])
	}
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	nonce := blob[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, blob[1+chacha20poly1305.NonceSizeX:], blob[:1])
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

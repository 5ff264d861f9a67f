// Package sealer encrypts small local records at rest with a per-install key.
package sealer

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeyLen is the install key and derived record key length.
const KeyLen = 32

// ErrOpen is returned when a sealed record cannot be authenticated.
var ErrOpen = errors.New("sealer: cannot open record")

// Rand returns n random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Sealer seals records with XChaCha20-Poly1305 under keys derived from the install key.
type Sealer struct {
	key []byte
}

// New wraps an install key.
func New(key []byte) (*Sealer, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("sealer: key must be %d bytes, got %d", KeyLen, len(key))
	}
	return &Sealer{key: append([]byte(nil), key...)}, nil
}

// LoadOrCreateKey reads the install key at path, creating it with 0600 if absent.
func LoadOrCreateKey(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) != KeyLen {
			return nil, fmt.Errorf("sealer: key file %s is corrupt", path)
		}
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	key, err := Rand(KeyLen)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// deriveKey derives the record key via HKDF-SHA256 with name as info.
func (s *Sealer) deriveKey(name string) ([]byte, error) {
	r := hkdf.New(sha256.New, s.key, nil, []byte(name))
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal encrypts plaintext for the record called name; name is bound as AAD.
// Output is nonce||ciphertext.
func (s *Sealer) Seal(name string, plaintext []byte) ([]byte, error) {
	key, err := s.deriveKey(name)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, []byte(name)), nil
}

// Open reverses Seal. Tampered, truncated or foreign records yield ErrOpen.
func (s *Sealer) Open(name string, sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, ErrOpen
	}
	key, err := s.deriveKey(name)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := sealed[:chacha20poly1305.NonceSizeX]
	pt, err := aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSizeX:], []byte(name))
	if err != nil {
		return nil, ErrOpen
	}
	return pt, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidToken   = errors.New("invalid share token")
	ErrMissingSecret  = errors.New("share token secret is empty")
	ErrInvalidSession = errors.New("invalid session token")
)

// shareTokenInfo binds derived keys to this use so the same secret can
// never produce a key that opens anything else.
const shareTokenInfo = "boardnight share-token v1"

// NewID creates a random record ID
func NewID() string {
	return uuid.NewString()
}

// ShareCodec turns an event ID into an opaque, URL-safe share token and back.
// Tokens are sealed with XChaCha20-Poly1305, so any modified or truncated
// token fails to open instead of decoding to a different ID.
type ShareCodec struct {
	aead interface {
		NonceSize() int
		Overhead() int
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

var tokenEncoding = base64.RawURLEncoding.Strict()

// NewShareCodec derives the sealing key from a process-wide secret.
func NewShareCodec(secret string) (*ShareCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(shareTokenInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive share token key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create share token cipher: %w", err)
	}
	return &ShareCodec{aead: aead}, nil
}

// Encode seals eventID into a new token. Every call uses a fresh nonce, so
// two tokens for the same event differ; callers store the first one.
func (c *ShareCodec) Encode(eventID string) (string, error) {
	nonceSize := c.aead.NonceSize()
	buf := make([]byte, nonceSize, nonceSize+len(eventID)+c.aead.Overhead())
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(buf, buf[:nonceSize], []byte(eventID), []byte(shareTokenInfo))
	return tokenEncoding.EncodeToString(sealed), nil
}

// Decode opens a token and returns the event ID it was issued for.
// It proves origin only: the caller still has to compare the token with
// the one stored on a public event.
func (c *ShareCodec) Decode(token string) (string, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead()+1 {
		return "", ErrInvalidToken
	}

	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], []byte(shareTokenInfo))
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(plain), nil
}

// TokensEqual compares two tokens in constant time
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

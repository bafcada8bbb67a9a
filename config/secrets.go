// config/secrets.go
package config

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Protector encrypts and decrypts secrets stored in settings.yaml, such
// as the expected API key. The encryption key is derived from the same
// injected master secret as the token signing key, with its own HKDF info
// string so the two subsystems never share key material.
type Protector struct {
	aead cipher.AEAD
}

// NewProtector derives the secrets-at-rest key from the master secret.
func NewProtector(masterSecret []byte) (*Protector, error) {
	kdf := hkdf.New(sha256.New, masterSecret, nil, []byte("querygate/secrets-at-rest/v1"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive secrets key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets cipher: %w", err)
	}
	return &Protector{aead: aead}, nil
}

// Protect encrypts a plaintext secret for storage. The random nonce is
// prepended to the ciphertext; output is base64.
func (p *Protector) Protect(plaintext string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := p.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Unprotect decrypts a stored secret.
func (p *Protector) Unprotect(encrypted string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted secret: %w", err)
	}
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return "", errors.New("encrypted secret too short")
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plaintext, err := p.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.New("failed to decrypt secret: wrong master secret or corrupted data")
	}
	return string(plaintext), nil
}

// GenerateAPIKey returns a cryptographically secure random API key.
func GenerateAPIKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// internal/pagination/cursor.go
package pagination

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// signatureSize is the length of the HMAC-SHA256 trailer.
const signatureSize = sha256.Size

// TokenCodec mints and verifies tamper-evident continuation tokens.
// A token is base64(jsonPayload || hmacSHA256(jsonPayload)); validity is
// entirely self-contained, nothing is stored server-side.
//
// The signing key must be stable for the lifetime of a deployment and
// shared by every serving process; rotating the master secret invalidates
// all outstanding tokens.
type TokenCodec struct {
	key []byte
}

// NewTokenCodec derives a dedicated signing key from the injected master
// secret so the same secret can also feed other subsystems without key reuse.
func NewTokenCodec(masterSecret []byte) (*TokenCodec, error) {
	kdf := hkdf.New(sha256.New, masterSecret, nil, []byte("querygate/continuation-token/v1"))
	key := make([]byte, signatureSize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive token signing key: %w", err)
	}
	return &TokenCodec{key: key}, nil
}

// Create signs the keyset position and returns an opaque token.
func (c *TokenCodec) Create(keyValues KeyValues) (string, error) {
	payload, err := json.Marshal(keyValues)
	if err != nil {
		return "", fmt.Errorf("failed to encode continuation token payload: %w", err)
	}

	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)

	combined := make([]byte, 0, len(payload)+signatureSize)
	combined = append(combined, payload...)
	combined = mac.Sum(combined)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// Validate decodes and verifies a token. Every failure mode collapses to
// ok=false so callers cannot learn why verification failed.
func (c *TokenCodec) Validate(token string) (KeyValues, bool) {
	combined, err := base64.StdEncoding.DecodeString(token)
	if err != nil || len(combined) < signatureSize {
		return nil, false
	}

	payload := combined[:len(combined)-signatureSize]
	signature := combined[len(combined)-signatureSize:]

	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return nil, false
	}

	var keyValues KeyValues
	if err := json.Unmarshal(payload, &keyValues); err != nil {
		return nil, false
	}
	return keyValues, true
}

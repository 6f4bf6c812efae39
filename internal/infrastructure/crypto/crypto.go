// Package crypto encrypts provider access credentials at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrInvalidKey is returned when the encryption key is not exactly
	// 64 hex characters (32 bytes, AES-256).
	ErrInvalidKey = errors.New("encryption key must be exactly 64 hex characters")

	// ErrDecryptFailed is returned for any malformed or tampered record:
	// wrong segment count, bad hex, or authentication failure.
	ErrDecryptFailed = errors.New("failed to decrypt credential")
)

// Encryptor seals and opens credential records with AES-256-GCM.
// The stored record format is three colon-joined hex segments:
// nonce:tag:ciphertext.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates an Encryptor from a 64-hex-character key.
func NewEncryptor(hexKey string) (*Encryptor, error) {
	if len(hexKey) != 64 {
		return nil, ErrInvalidKey
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. Encrypting the same
// plaintext twice yields different records.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nil, nonce, []byte(plaintext), nil)

	// Seal appends the auth tag to the ciphertext; split it back out so the
	// record carries the tag as its own segment.
	tagStart := len(sealed) - e.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return fmt.Sprintf("%s:%s:%s",
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	), nil
}

// Decrypt opens a nonce:tag:ciphertext record. Returns ErrDecryptFailed
// for anything that does not authenticate.
func (e *Encryptor) Decrypt(record string) (string, error) {
	parts := strings.Split(record, ":")
	if len(parts) != 3 {
		return "", ErrDecryptFailed
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", ErrDecryptFailed
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrDecryptFailed
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrDecryptFailed
	}

	if len(nonce) != e.aead.NonceSize() || len(tag) != e.aead.Overhead() {
		return "", ErrDecryptFailed
	}

	plaintext, err := e.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// FieldCipher encrypts individual column values with AES-256-GCM. The output
// is base64 of nonce||ciphertext, so it fits in a TEXT column.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher derives a 32-byte key from secret with SHA-256.
func NewFieldCipher(secret string) (*FieldCipher, error) {
	if secret == "" {
		return nil, errors.New("encryption key is empty")
	}
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{aead: gcm}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *FieldCipher) Decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

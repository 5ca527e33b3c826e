package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
)

// Cipher encrypts short secrets (provider API keys) with AES-256-GCM before
// they land in global_settings. A Cipher built from an empty secret is a
// pass-through: values are stored and returned as-is.
type Cipher struct {
	key []byte
}

// NewCipher derives a 32-byte AES key from the app secret. Short secrets are
// zero-padded; in production use a long random APP_SECRET_KEY rather than a
// passphrase.
func NewCipher(secret string) *Cipher {
	if strings.TrimSpace(secret) == "" {
		return &Cipher{}
	}
	key := make([]byte, 32)
	copy(key, []byte(secret))
	return &Cipher{key: key}
}

// Enabled reports whether values will actually be encrypted.
func (c *Cipher) Enabled() bool {
	return len(c.key) > 0
}

// Encrypt seals plainText with AES-GCM and returns it base64 encoded.
func (c *Cipher) Encrypt(plainText string) (string, error) {
	if !c.Enabled() {
		return plainText, nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values that do not look like sealed base64 are
// returned unchanged so secrets stored before encryption was enabled keep
// working.
func (c *Cipher) Decrypt(stored string) (string, error) {
	if !c.Enabled() {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return stored, nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return stored, nil
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

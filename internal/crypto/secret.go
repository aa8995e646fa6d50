package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	staticSalt = "88b3a2e13"
	keyInfo    = "instapaperkobo secret v1"
	keySize    = 32
)

// deriveKey generates a 32-byte AES key from the static salt and the Kobo
// serial.
func deriveKey(koboSerial string) ([]byte, error) {
	if koboSerial == "" {
		return nil, errors.New("kobo serial is empty")
	}
	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, []byte(koboSerial), []byte(staticSalt), []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to read derived key: %w", err)
	}
	return key, nil
}

func newGCM(koboSerial string) (cipher.AEAD, error) {
	key, err := deriveKey(koboSerial)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext with AES-256-GCM under a key derived from the Kobo
// serial and returns nonce||ciphertext as base64.
func Encrypt(plaintext string, koboSerial string) (string, error) {
	gcm, err := newGCM(koboSerial)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func Decrypt(encryptedB64 string, koboSerial string) (string, error) {
	gcm, err := newGCM(koboSerial)
	if err != nil {
		return "", err
	}
	sealed, err := base64.StdEncoding.DecodeString(encryptedB64)
	if err != nil {
		return "", fmt.Errorf("failed to base64 decode ciphertext: %w", err)
	}
	if len(sealed) < gcm.NonceSize() {
		return "", errors.New("ciphertext is shorter than the nonce")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

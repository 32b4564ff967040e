// Package crypto contains the payload ciphers: a derived-key AES-CTR stream
// cipher for the audio path and a repeating-key XOR cipher kept
// wire-compatible with existing video and image carriers.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize   = 32
	kdfRounds = 4096

	// The salt is fixed so the same password always derives the same key;
	// counter-mode decryption has only the password to reproduce the
	// keystream from.
	kdfSalt = "stego-backend.v1"
)

// DeriveKey derives a 32-byte symmetric key from a password. Deterministic:
// same password, same key.
func DeriveKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte(kdfSalt), kdfRounds, keySize, sha256.New)
}

// StreamCipher encrypts and decrypts with AES-CTR under a derived key. The
// IV is fixed at zero; a fresh keystream state is allocated per call, so
// concurrent calls never share cipher state.
type StreamCipher struct {
	key []byte
}

// NewStreamCipher wraps a derived key.
func NewStreamCipher(key []byte) *StreamCipher {
	return &StreamCipher{key: key}
}

// Encrypt XORs plaintext with the AES-CTR keystream.
func (sc *StreamCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if len(sc.key) == 0 {
		return nil, fmt.Errorf("encryption requested with empty key")
	}
	block, err := aes.NewCipher(sc.key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %v", err)
	}
	iv := make([]byte, aes.BlockSize)
	stream := cipher.NewCTR(block, iv)

	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)
	return ciphertext, nil
}

// Decrypt is Encrypt applied again; CTR mode is symmetric.
func (sc *StreamCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	return sc.Encrypt(ciphertext)
}

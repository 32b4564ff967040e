package crypto

import "fmt"

// XORCipher is a repeating-key XOR over the raw password bytes, no key
// schedule. The video and image paths use it for wire compatibility with
// carriers produced by earlier releases. It is a known security defect;
// new formats should use StreamCipher instead.
type XORCipher struct {
	key []byte
}

// NewXORCipher builds a cipher from the raw password.
func NewXORCipher(password string) *XORCipher {
	return &XORCipher{key: []byte(password)}
}

// Encrypt XORs data with the repeating key.
func (xc *XORCipher) Encrypt(data []byte) []byte {
	if len(xc.key) == 0 {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ xc.key[i%len(xc.key)]
	}
	return out
}

// Decrypt is identical to Encrypt.
func (xc *XORCipher) Decrypt(data []byte) []byte {
	return xc.Encrypt(data)
}

// ValidateKey checks that a password is usable as a cipher key.
func ValidateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("key cannot be empty")
	}
	if len(key) > 256 {
		return fmt.Errorf("key length cannot exceed 256 characters")
	}
	return nil
}

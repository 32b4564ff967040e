package stego

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"stego-backend/crypto"
)

// Zero-width watermark alphabet. The marker brackets the watermark so
// extraction can find it anywhere in the host text; the two carriers
// encode one bit each. None of the three render visibly.
const (
	zwMarker = '\u2060' // word joiner
	zwZero   = '\u200B' // zero width space
	zwOne    = '\u200C' // zero width non-joiner
)

// defaultTextKey keys the watermark when encryption is off, keeping the
// transform deterministic.
const defaultTextKey = "default-key"

// TextOptions configures one text embed or extract call.
type TextOptions struct {
	Password string
	Encrypt  bool
}

// TextCodec hides a message in invisible zero-width characters appended to
// a host text.
type TextCodec struct {
	opts TextOptions
}

func NewTextCodec(opts TextOptions) *TextCodec {
	return &TextCodec{opts: opts}
}

func (c *TextCodec) cipher() (*crypto.XORCipher, error) {
	if !c.opts.Encrypt {
		return crypto.NewXORCipher(defaultTextKey), nil
	}
	if err := crypto.ValidateKey(c.opts.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return crypto.NewXORCipher(c.opts.Password), nil
}

// Embed appends the watermarked message to hostText.
func (c *TextCodec) Embed(hostText, message string) (string, error) {
	if strings.TrimSpace(hostText) == "" {
		return "", fmt.Errorf("%w: host text must not be empty", ErrFormat)
	}
	if message == "" {
		return "", fmt.Errorf("%w: message must not be empty", ErrFormat)
	}
	cipher, err := c.cipher()
	if err != nil {
		return "", err
	}

	data := cipher.Encrypt([]byte(message))
	bits := BytesToBits(data)

	var wm strings.Builder
	wm.WriteRune(zwMarker)
	for _, bit := range bits {
		if bit == 0 {
			wm.WriteRune(zwZero)
		} else {
			wm.WriteRune(zwOne)
		}
	}
	wm.WriteRune(zwMarker)

	return hostText + wm.String(), nil
}

// Extract recovers the message hidden by Embed.
func (c *TextCodec) Extract(watermarkedText string) (string, error) {
	if watermarkedText == "" {
		return "", fmt.Errorf("%w: watermarked text must not be empty", ErrFormat)
	}
	cipher, err := c.cipher()
	if err != nil {
		return "", err
	}

	var bits []byte
	inMark := false
	found := false
	for _, r := range watermarkedText {
		switch r {
		case zwMarker:
			if inMark {
				found = true
			}
			inMark = !inMark
		case zwZero:
			if inMark {
				bits = append(bits, 0)
			}
		case zwOne:
			if inMark {
				bits = append(bits, 1)
			}
		}
		if found {
			break
		}
	}

	if !found || len(bits) == 0 {
		return "", fmt.Errorf("%w: no hidden message found in text", ErrFormat)
	}

	data := cipher.Decrypt(BitsToBytes(bits))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: incorrect password or corrupted watermark", ErrCrypto)
	}
	return string(data), nil
}

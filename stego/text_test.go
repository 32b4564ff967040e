package stego

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRoundTrip(t *testing.T) {
	codec := NewTextCodec(TextOptions{Password: "pw123", Encrypt: true})

	watermarked, err := codec.Embed("The quick brown fox.", "rendezvous at 9")
	require.NoError(t, err)

	message, err := codec.Extract(watermarked)
	require.NoError(t, err)
	assert.Equal(t, "rendezvous at 9", message)
}

func TestTextRoundTripWithoutEncryption(t *testing.T) {
	codec := NewTextCodec(TextOptions{Encrypt: false})

	watermarked, err := codec.Embed("host text", "open message")
	require.NoError(t, err)

	message, err := codec.Extract(watermarked)
	require.NoError(t, err)
	assert.Equal(t, "open message", message)
}

func TestTextWatermarkIsInvisible(t *testing.T) {
	host := "Nothing to see here."
	codec := NewTextCodec(TextOptions{Encrypt: false})

	watermarked, err := codec.Embed(host, "secret")
	require.NoError(t, err)

	// The host text survives as a prefix and the appended runes are all
	// zero-width.
	assert.True(t, strings.HasPrefix(watermarked, host))
	for _, r := range strings.TrimPrefix(watermarked, host) {
		assert.Contains(t, []rune{zwMarker, zwZero, zwOne}, r)
	}
}

func TestTextEmbedValidation(t *testing.T) {
	codec := NewTextCodec(TextOptions{Encrypt: false})

	_, err := codec.Embed("   ", "msg")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = codec.Embed("host", "")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NewTextCodec(TextOptions{Encrypt: true}).Embed("host", "msg")
	assert.ErrorIs(t, err, ErrCrypto)

	long := TextOptions{Password: strings.Repeat("k", 300), Encrypt: true}
	_, err = NewTextCodec(long).Embed("host", "msg")
	assert.ErrorIs(t, err, ErrCrypto)
}

func TestTextExtractRejectsUnmarkedText(t *testing.T) {
	codec := NewTextCodec(TextOptions{Encrypt: false})
	_, err := codec.Extract("plain text with no watermark")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTextWrongPasswordDetected(t *testing.T) {
	watermarked, err := NewTextCodec(TextOptions{Password: "right", Encrypt: true}).Embed("host", "héllo wörld")
	require.NoError(t, err)

	message, err := NewTextCodec(TextOptions{Password: "wrong", Encrypt: true}).Extract(watermarked)
	if err == nil {
		// A wrong key that still decodes to valid UTF-8 must at least not
		// reproduce the message.
		assert.NotEqual(t, "héllo wörld", message)
	} else {
		assert.ErrorIs(t, err, ErrCrypto)
	}
}

package stego

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wavHeaderSize = 44

func makeCarrier(t *testing.T, sampleCount, sampleRate int) []byte {
	t.Helper()
	dataSize := sampleCount * 2

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	// Deterministic fake samples so the carrier is not all zero.
	samples := make([]byte, dataSize)
	for i := range samples {
		samples[i] = byte(i*31 + 7)
	}
	buf.Write(samples)
	return buf.Bytes()
}

func TestAudioRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		encrypt bool
		useECC  bool
	}{
		{"plain", false, false},
		{"encrypted", true, false},
		{"ecc", false, true},
		{"encrypted+ecc", true, true},
	}

	carrier := makeCarrier(t, 8000, 8000)
	payload := []byte("attack at dawn")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codec := NewAudioCodec(AudioOptions{Password: "pw123", Encrypt: tc.encrypt, UseECC: tc.useECC})

			stego, err := codec.Embed(carrier, payload)
			require.NoError(t, err)
			assert.Len(t, stego, len(carrier))

			extracted, err := codec.Extract(stego)
			require.NoError(t, err)
			assert.Equal(t, payload, extracted)
		})
	}
}

func TestAudioSmallMessageInLargeCarrier(t *testing.T) {
	// 1 second of 16-bit mono at 44.1kHz: 44100 capacity bits, far above
	// what "hello" needs even with ECC expansion.
	carrier := makeCarrier(t, 44100, 44100)
	codec := NewAudioCodec(AudioOptions{Password: "pw123", Encrypt: true, UseECC: true})

	stego, err := codec.Embed(carrier, []byte("hello"))
	require.NoError(t, err)

	extracted, err := codec.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(extracted))
}

func TestAudioEmbedDoesNotMutateCarrier(t *testing.T) {
	carrier := makeCarrier(t, 4000, 8000)
	original := append([]byte(nil), carrier...)

	codec := NewAudioCodec(AudioOptions{Password: "pw", Encrypt: true, UseECC: true})
	_, err := codec.Embed(carrier, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, original, carrier)
}

func TestAudioEmbedTouchesOnlySampleLSBs(t *testing.T) {
	carrier := makeCarrier(t, 4000, 8000)
	codec := NewAudioCodec(AudioOptions{Encrypt: false, UseECC: false})

	stego, err := codec.Embed(carrier, []byte("x"))
	require.NoError(t, err)

	for i := range carrier {
		diff := carrier[i] ^ stego[i]
		if i < wavHeaderSize || (i-wavHeaderSize)%2 == 1 {
			// Header bytes and the upper byte of each sample are untouched.
			assert.Zero(t, diff, "byte %d modified", i)
		} else {
			assert.LessOrEqual(t, diff, byte(1), "byte %d changed above bit 0", i)
		}
	}
}

func TestAudioCapacityBoundary(t *testing.T) {
	payload := []byte("0123456789") // 10 bytes
	// Without encryption or ECC the frame is header(9) + payload bytes.
	exactBits := (9 + len(payload)) * 8

	codec := NewAudioCodec(AudioOptions{Encrypt: false, UseECC: false})

	fits := makeCarrier(t, exactBits, 8000)
	stego, err := codec.Embed(fits, payload)
	require.NoError(t, err)
	extracted, err := codec.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, payload, extracted)

	tooSmall := makeCarrier(t, exactBits-1, 8000)
	_, err = codec.Embed(tooSmall, payload)
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestAudioEmbedRequiresPassword(t *testing.T) {
	carrier := makeCarrier(t, 1000, 8000)
	codec := NewAudioCodec(AudioOptions{Password: "", Encrypt: true})
	_, err := codec.Embed(carrier, []byte("x"))
	assert.ErrorIs(t, err, ErrCrypto)
}

func TestAudioExtractRejectsMissingMagic(t *testing.T) {
	carrier := makeCarrier(t, 2000, 8000)
	codec := NewAudioCodec(AudioOptions{Encrypt: false})

	// A pristine carrier has arbitrary LSBs; deterministically break the
	// magic by embedding and then flipping a magic-region sample bit.
	stego, err := NewAudioCodec(AudioOptions{Encrypt: false}).Embed(carrier, []byte("hi"))
	require.NoError(t, err)
	stego[wavHeaderSize] ^= 1 // first magic bit

	_, err = codec.Extract(stego)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestAudioECCRecoversFromSingleCarrierFlip(t *testing.T) {
	carrier := makeCarrier(t, 8000, 8000)
	payload := []byte("resilient")
	codec := NewAudioCodec(AudioOptions{Password: "pw", Encrypt: true, UseECC: true})

	stego, err := codec.Embed(carrier, payload)
	require.NoError(t, err)

	// Flip one body bit: sample 80 is the 8th bit past the 72-bit header.
	stego[wavHeaderSize+80*2] ^= 1

	extracted, err := codec.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, payload, extracted)
}

func TestAudioWrongPasswordNeverYieldsPayload(t *testing.T) {
	carrier := makeCarrier(t, 8000, 8000)
	payload := []byte("top secret")

	stego, err := NewAudioCodec(AudioOptions{Password: "right", Encrypt: true}).Embed(carrier, payload)
	require.NoError(t, err)

	extracted, err := NewAudioCodec(AudioOptions{Password: "wrong", Encrypt: true}).Extract(stego)
	if err == nil {
		assert.NotEqual(t, payload, extracted)
	}
}

func TestAudioExtractTruncatedDeclaredLength(t *testing.T) {
	// Hand-write a header declaring a payload far beyond the carrier's
	// sample count; extraction must fail before reading past the end.
	carrier := makeCarrier(t, 200, 8000)
	header := append([]byte{}, audioMagic...)
	header = append(header, 0) // no ECC
	header = binary.BigEndian.AppendUint32(header, 100000)

	bits := BytesToBits(header)
	for i, bit := range bits {
		off := wavHeaderSize + i*2
		carrier[off] = (carrier[off] & 0xFE) | bit
	}

	_, err := NewAudioCodec(AudioOptions{Encrypt: false}).Extract(carrier)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestAudioExtractRejectsNonWAV(t *testing.T) {
	_, err := NewAudioCodec(AudioOptions{}).Extract([]byte("definitely not a wav"))
	assert.ErrorIs(t, err, ErrFormat)
}

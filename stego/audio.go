package stego

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"stego-backend/audio"
	"stego-backend/crypto"
)

// audioMagic marks an embedded payload in a WAV carrier. The header layout
// is magic(4) | flags(1) | length(4, big-endian byte count of the encrypted
// payload before ECC expansion). Changing any of this needs a version bump.
var audioMagic = []byte("STG1")

const (
	audioFlagECC     = 0x01
	audioHeaderBits  = 72 // 9 header bytes
	audioSampleWidth = 2  // codec operates on 16-bit PCM
)

// AudioOptions configures one audio embed or extract call.
type AudioOptions struct {
	Password string
	Encrypt  bool
	UseECC   bool
}

// AudioCodec embeds and extracts payloads in the low-order bit of each
// 16-bit PCM sample of a WAV carrier. Every call is atomic: it either
// returns a complete result or an error, never partial output.
type AudioCodec struct {
	opts AudioOptions
}

func NewAudioCodec(opts AudioOptions) *AudioCodec {
	return &AudioCodec{opts: opts}
}

func (c *AudioCodec) cipher() (*crypto.StreamCipher, error) {
	if !c.opts.Encrypt {
		return nil, nil
	}
	if c.opts.Password == "" {
		return nil, fmt.Errorf("%w: password required when encryption enabled", ErrCrypto)
	}
	return crypto.NewStreamCipher(crypto.DeriveKey(c.opts.Password)), nil
}

// Embed hides payload in wavBytes and returns the modified carrier. The
// input buffer is never mutated. Fails with ErrFormat on a bad container,
// ErrCapacity when the payload does not fit and ErrCrypto on cipher misuse.
func (c *AudioCodec) Embed(wavBytes []byte, payload []byte) ([]byte, error) {
	info, err := audio.ParseWAV(wavBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	cipher, err := c.cipher()
	if err != nil {
		return nil, err
	}
	encrypted := payload
	if cipher != nil {
		if encrypted, err = cipher.Encrypt(payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
		}
	}

	var flags byte
	if c.opts.UseECC {
		flags |= audioFlagECC
	}
	header := make([]byte, 0, audioHeaderBits/8)
	header = append(header, audioMagic...)
	header = append(header, flags)
	header = binary.BigEndian.AppendUint32(header, uint32(len(encrypted)))

	bits := BytesToBits(encrypted)
	if c.opts.UseECC {
		bits = HammingEncode(bits)
	}
	full := append(header, BitsToBytes(bits)...)

	totalBits := len(full) * 8
	samples := info.DataSize / audioSampleWidth
	if totalBits > samples {
		return nil, fmt.Errorf("%w: payload needs %d bits, carrier holds %d", ErrCapacity, totalBits, samples)
	}

	stego := make([]byte, len(wavBytes))
	copy(stego, wavBytes)

	// One bit per sample: only the low byte of each little-endian 16-bit
	// sample is touched, and only its bit 0.
	for bitIndex := 0; bitIndex < totalBits; bitIndex++ {
		bit := (full[bitIndex>>3] >> (7 - (bitIndex & 7))) & 1
		off := info.DataOffset + bitIndex*audioSampleWidth
		stego[off] = (stego[off] & 0xFE) | bit
	}

	return stego, nil
}

// Extract recovers the payload embedded by Embed. The ECC flag is read from
// the wire; UseECC in the options is ignored here.
func (c *AudioCodec) Extract(wavBytes []byte) ([]byte, error) {
	info, err := audio.ParseWAV(wavBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	cipher, err := c.cipher()
	if err != nil {
		return nil, err
	}

	totalSamples := info.DataSize / audioSampleWidth
	readBits := func(count, startBit int) ([]byte, error) {
		if startBit+count > totalSamples {
			return nil, fmt.Errorf("%w: carrier ends at sample %d, need %d", ErrTruncated, totalSamples, startBit+count)
		}
		bits := make([]byte, count)
		for i := 0; i < count; i++ {
			bits[i] = wavBytes[info.DataOffset+(startBit+i)*audioSampleWidth] & 1
		}
		return bits, nil
	}

	magicBits, err := readBits(32, 0)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(BitsToBytes(magicBits), audioMagic) {
		return nil, fmt.Errorf("%w: no payload found (magic mismatch)", ErrFormat)
	}

	flagBits, err := readBits(8, 32)
	if err != nil {
		return nil, err
	}
	flags := BitsToBytes(flagBits)[0]

	lenBits, err := readBits(32, 40)
	if err != nil {
		return nil, err
	}
	encLen := int(binary.BigEndian.Uint32(BitsToBytes(lenBits)))

	// The length field counts pre-expansion bytes, so the exact body size
	// follows from it: 7 code bits per 4 data bits under ECC.
	useECC := flags&audioFlagECC != 0
	bodyBits := encLen * 8
	if useECC {
		bodyBits = encLen * 8 / 4 * 7
	}

	rawBits, err := readBits(bodyBits, audioHeaderBits)
	if err != nil {
		return nil, err
	}
	if useECC {
		rawBits = HammingDecode(rawBits)
	}
	encrypted := BitsToBytes(rawBits)
	if len(encrypted) > encLen {
		encrypted = encrypted[:encLen]
	}

	if cipher != nil {
		plain, err := cipher.Decrypt(encrypted)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
		}
		return plain, nil
	}
	return encrypted, nil
}

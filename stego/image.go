package stego

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/bmp"

	"stego-backend/crypto"
)

// imageMagic marks an embedded payload in an image carrier. Same layout as
// the video header: magic(4) | length(4, big-endian) | base64 body.
var imageMagic = []byte("IST2")

// ImageOptions configures one image embed or extract call.
type ImageOptions struct {
	Password string
	Encrypt  bool
}

// ImageCodec embeds and extracts payloads in the LSB of each RGB channel
// of a still image. Carriers of any decodable format are normalized to
// BMP, the lossless output the hidden bits survive in.
type ImageCodec struct {
	opts ImageOptions
}

func NewImageCodec(opts ImageOptions) *ImageCodec {
	return &ImageCodec{opts: opts}
}

func (c *ImageCodec) cipher() (*crypto.XORCipher, error) {
	if !c.opts.Encrypt {
		return nil, nil
	}
	if err := crypto.ValidateKey(c.opts.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return crypto.NewXORCipher(c.opts.Password), nil
}

// decodeRGB flattens any supported carrier into w*h*3 interleaved RGB bytes.
func decodeRGB(carrier []byte) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(carrier))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: unsupported or corrupted carrier image", ErrFormat)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rgb := make([]byte, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rgb = append(rgb, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}
	return rgb, w, h, nil
}

// encodeBMP wraps interleaved RGB bytes back into a BMP image.
func encodeBMP(rgb []byte, w, h int) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[i*4] = rgb[i*3]
		img.Pix[i*4+1] = rgb[i*3+1]
		img.Pix[i*4+2] = rgb[i*3+2]
		img.Pix[i*4+3] = 0xFF
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: failed to encode stego image: %v", ErrIO, err)
	}
	return buf.Bytes(), nil
}

// Embed hides payload in carrierBytes and returns a BMP stego image.
func (c *ImageCodec) Embed(carrierBytes []byte, payload Payload) ([]byte, error) {
	raw, err := payload.MarshalWire()
	if err != nil {
		return nil, err
	}
	cipher, err := c.cipher()
	if err != nil {
		return nil, err
	}
	if cipher != nil {
		raw = cipher.Encrypt(raw)
	}
	armored := []byte(base64.StdEncoding.EncodeToString(raw))

	full := make([]byte, 0, videoHeaderSize+len(armored))
	full = append(full, imageMagic...)
	full = binary.BigEndian.AppendUint32(full, uint32(len(armored)))
	full = append(full, armored...)

	rgb, w, h, err := decodeRGB(carrierBytes)
	if err != nil {
		return nil, err
	}

	totalBits := len(full) * 8
	if totalBits > len(rgb) {
		return nil, fmt.Errorf("%w: payload needs %d bits, image holds %d", ErrCapacity, totalBits, len(rgb))
	}

	for bitIndex := 0; bitIndex < totalBits; bitIndex++ {
		bit := (full[bitIndex>>3] >> (7 - (bitIndex & 7))) & 1
		rgb[bitIndex] = (rgb[bitIndex] & 0xFE) | bit
	}

	return encodeBMP(rgb, w, h)
}

// Extract recovers the payload embedded by Embed.
func (c *ImageCodec) Extract(stegoBytes []byte) (Payload, error) {
	cipher, err := c.cipher()
	if err != nil {
		return Payload{}, err
	}

	rgb, _, _, err := decodeRGB(stegoBytes)
	if err != nil {
		return Payload{}, err
	}

	headerBits := videoHeaderSize * 8
	if len(rgb) < headerBits {
		return Payload{}, fmt.Errorf("%w: image ended before header was read", ErrTruncated)
	}

	var header bitAccumulator
	for i := 0; i < headerBits; i++ {
		header.push(rgb[i] & 1)
	}
	if !bytes.Equal(header.buf[:4], imageMagic) {
		return Payload{}, fmt.Errorf("%w: no hidden message or file found in image", ErrFormat)
	}
	payloadLen := int(binary.BigEndian.Uint32(header.buf[4:8]))
	if payloadLen <= 0 {
		return Payload{}, fmt.Errorf("%w: invalid embedded payload length %d", ErrFormat, payloadLen)
	}

	payloadBits := payloadLen * 8
	if headerBits+payloadBits > len(rgb) {
		return Payload{}, fmt.Errorf("%w: image ended before payload was fully read", ErrTruncated)
	}

	var body bitAccumulator
	for i := headerBits; i < headerBits+payloadBits; i++ {
		body.push(rgb[i] & 1)
	}

	encrypted, err := base64.StdEncoding.DecodeString(string(body.buf))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: incorrect password or corrupted payload", ErrCrypto)
	}
	raw := encrypted
	if cipher != nil {
		raw = cipher.Decrypt(encrypted)
	}
	return UnmarshalWire(raw)
}

package stego

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stego-backend/crypto"
)

// videoMagic marks an embedded payload in a video carrier. The header is
// magic(4) | length(4, big-endian byte count of the base64-armored
// encrypted payload). No ECC flag: the video path does not apply ECC.
var videoMagic = []byte("VST2")

const (
	videoHeaderSize = 8

	// MaxVideoBytes is the hard input ceiling; larger uploads are rejected
	// before any transcoding happens.
	MaxVideoBytes = 64 * 1024 * 1024

	// Carriers are normalized to 480p before embedding to bound memory and
	// transcode time.
	scaleWidth  = 854
	scaleHeight = 480
)

// VideoMeta describes a normalized frame stream.
type VideoMeta struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// FrameSource yields raw RGB frames in decode order. ReadFrame fills buf
// (width*height*3 bytes, row-major with interleaved channels) and returns
// io.EOF when the stream ends.
type FrameSource interface {
	ReadFrame(buf []byte) error
	Close() error
}

// FrameSink consumes raw RGB frames of the same fixed layout.
type FrameSink interface {
	WriteFrame(buf []byte) error
	Close() error
}

// Transcoder is the external video tool boundary: scaling, probing, frame
// streaming and audio remuxing. Implementations shell out to ffmpeg; tests
// inject in-memory fakes.
type Transcoder interface {
	Scale(inputPath string, width, height int) (string, error)
	Probe(path string) (VideoMeta, error)
	OpenSource(path string) (FrameSource, VideoMeta, error)
	OpenSink(path string, meta VideoMeta) (FrameSink, error)
	Remux(videoOnlyPath, originalPath, outputPath string) error
}

// VideoOptions configures one video embed or extract call.
type VideoOptions struct {
	Password  string
	Encrypt   bool
	Container string
}

// VideoCodec embeds and extracts payloads in the LSB of every RGB channel
// sample across a streamed frame sequence. Frames are processed one at a
// time and released immediately; the full video is never held in memory.
type VideoCodec struct {
	opts VideoOptions
	tc   Transcoder
}

func NewVideoCodec(opts VideoOptions, tc Transcoder) *VideoCodec {
	return &VideoCodec{opts: opts, tc: tc}
}

func (c *VideoCodec) cipher() (*crypto.XORCipher, error) {
	if !c.opts.Encrypt {
		return nil, nil
	}
	if err := crypto.ValidateKey(c.opts.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return crypto.NewXORCipher(c.opts.Password), nil
}

// container returns the sanitized output container. The intermediate video
// stream is FFV1, so only containers that can carry it survive; everything
// else falls back to Matroska.
func (c *VideoCodec) container() string {
	ext := strings.ToLower(c.opts.Container)
	switch ext {
	case "mkv", "avi":
		return ext
	}
	return "mkv"
}

// framePayload builds the full wire sequence: header plus the
// base64-armored, XOR-encrypted JSON payload.
func (c *VideoCodec) framePayload(payload Payload) ([]byte, error) {
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
	armored := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(armored, raw)

	full := make([]byte, 0, videoHeaderSize+len(armored))
	full = append(full, videoMagic...)
	full = binary.BigEndian.AppendUint32(full, uint32(len(armored)))
	return append(full, armored...), nil
}

// Embed hides payload in videoBytes and returns the stego video along with
// its container extension. The carrier is normalized to 480p first; after
// embedding, the original audio track is remuxed onto the output without
// re-encoding the video stream. A failed remux is not fatal: the silent
// stego video is returned instead.
func (c *VideoCodec) Embed(videoBytes []byte, payload Payload) ([]byte, string, error) {
	if len(videoBytes) > MaxVideoBytes {
		return nil, "", fmt.Errorf("%w: video exceeds %d bytes", ErrSizeLimit, MaxVideoBytes)
	}

	full, err := c.framePayload(payload)
	if err != nil {
		return nil, "", err
	}

	tmpdir, err := os.MkdirTemp("", "video-stego-")
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer os.RemoveAll(tmpdir)

	inputPath := filepath.Join(tmpdir, "input.bin")
	if err := os.WriteFile(inputPath, videoBytes, 0o600); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrIO, err)
	}

	scaledPath, err := c.tc.Scale(inputPath, scaleWidth, scaleHeight)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to downscale video: %v", ErrTranscode, err)
	}

	src, meta, err := c.tc.OpenSource(scaledPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: unable to read downscaled video: %v", ErrTranscode, err)
	}
	// src may be reopened below, so close through the variable.
	defer func() { src.Close() }()
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, "", fmt.Errorf("%w: invalid video dimensions %dx%d", ErrIO, meta.Width, meta.Height)
	}

	if meta.FrameCount <= 0 {
		// Unknown frame count: stream once to count, then reopen.
		count, err := countFrames(src, meta)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrIO, err)
		}
		src.Close()
		if src, meta, err = c.tc.OpenSource(scaledPath); err != nil {
			return nil, "", fmt.Errorf("%w: unable to re-open downscaled video: %v", ErrTranscode, err)
		}
		meta.FrameCount = count
	}

	totalBits := len(full) * 8
	capacityBits := meta.FrameCount * meta.Width * meta.Height * 3
	if totalBits > capacityBits {
		return nil, "", fmt.Errorf("%w: payload needs %d bits, video holds %d", ErrCapacity, totalBits, capacityBits)
	}

	noAudioPath := filepath.Join(tmpdir, "video_no_audio.mkv")
	sink, err := c.tc.OpenSink(noAudioPath, meta)
	if err != nil {
		return nil, "", fmt.Errorf("%w: unable to create intermediate output: %v", ErrTranscode, err)
	}

	if err := embedFrames(src, sink, meta, full); err != nil {
		sink.Close()
		return nil, "", err
	}
	if err := sink.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrTranscode, err)
	}

	container := c.container()
	outputPath := filepath.Join(tmpdir, "stego_output."+container)
	if err := c.tc.Remux(noAudioPath, inputPath, outputPath); err != nil {
		// Degraded path: ship the stego video without its audio track
		// rather than failing the whole call.
		outputPath = noAudioPath
	}

	finalBytes, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	extension := strings.TrimPrefix(filepath.Ext(outputPath), ".")
	return finalBytes, extension, nil
}

func countFrames(src FrameSource, meta VideoMeta) (int, error) {
	buf := make([]byte, meta.Width*meta.Height*3)
	count := 0
	for {
		err := src.ReadFrame(buf)
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
		count++
	}
}

// embedFrames streams frames from src to sink, overwriting channel LSBs
// with successive payload bits until the payload is exhausted. The bit
// cursor lives only for the duration of this loop.
func embedFrames(src FrameSource, sink FrameSink, meta VideoMeta, full []byte) error {
	buf := make([]byte, meta.Width*meta.Height*3)
	totalBits := len(full) * 8
	bitIndex := 0

	for {
		err := src.ReadFrame(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}

		for i := 0; i < len(buf) && bitIndex < totalBits; i++ {
			bit := (full[bitIndex>>3] >> (7 - (bitIndex & 7))) & 1
			buf[i] = (buf[i] & 0xFE) | bit
			bitIndex++
		}

		if err := sink.WriteFrame(buf); err != nil {
			return fmt.Errorf("%w: %v", ErrTranscode, err)
		}
	}

	if bitIndex < totalBits {
		return fmt.Errorf("%w: ran out of frames before embedding completed", ErrIO)
	}
	return nil
}

// bitAccumulator packs incoming bits MSB-first into a growing byte buffer.
type bitAccumulator struct {
	buf  []byte
	bits int
}

func (a *bitAccumulator) push(bit byte) {
	idx := a.bits >> 3
	if idx == len(a.buf) {
		a.buf = append(a.buf, 0)
	}
	a.buf[idx] = (a.buf[idx] << 1) | (bit & 1)
	a.bits++
}

// Extract recovers the payload embedded by Embed. Frames are consumed only
// until the declared payload length is satisfied; extraction stops
// mid-frame the moment the last bit arrives, so cost is bounded by the
// payload size rather than the video length.
func (c *VideoCodec) Extract(videoBytes []byte) (Payload, error) {
	if len(videoBytes) > MaxVideoBytes {
		return Payload{}, fmt.Errorf("%w: video exceeds %d bytes", ErrSizeLimit, MaxVideoBytes)
	}

	cipher, err := c.cipher()
	if err != nil {
		return Payload{}, err
	}

	tmpdir, err := os.MkdirTemp("", "video-stego-")
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer os.RemoveAll(tmpdir)

	videoPath := filepath.Join(tmpdir, "stego_video.bin")
	if err := os.WriteFile(videoPath, videoBytes, 0o600); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrIO, err)
	}

	src, meta, err := c.tc.OpenSource(videoPath)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: unable to read stego video: %v", ErrTranscode, err)
	}
	defer src.Close()
	if meta.Width <= 0 || meta.Height <= 0 {
		return Payload{}, fmt.Errorf("%w: invalid stego video dimensions %dx%d", ErrIO, meta.Width, meta.Height)
	}

	armored, err := collectPayloadBits(src, meta)
	if err != nil {
		return Payload{}, err
	}

	encrypted := make([]byte, base64.StdEncoding.DecodedLen(len(armored)))
	n, err := base64.StdEncoding.Decode(encrypted, armored)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: incorrect password or corrupted payload", ErrCrypto)
	}
	raw := encrypted[:n]
	if cipher != nil {
		raw = cipher.Decrypt(raw)
	}
	return UnmarshalWire(raw)
}

// collectPayloadBits feeds channel LSBs into a bit accumulator, parsing the
// header as soon as its 64 bits are in, then reading exactly the declared
// number of payload bits.
func collectPayloadBits(src FrameSource, meta VideoMeta) ([]byte, error) {
	buf := make([]byte, meta.Width*meta.Height*3)

	var header, payload bitAccumulator
	payloadBitsExpected := -1
	headerBits := videoHeaderSize * 8

	for {
		err := src.ReadFrame(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}

		for _, val := range buf {
			bit := val & 1

			if header.bits < headerBits {
				header.push(bit)
				if header.bits == headerBits {
					if string(header.buf[:4]) != string(videoMagic) {
						return nil, fmt.Errorf("%w: no embedded payload found (magic mismatch)", ErrFormat)
					}
					payloadLen := int(binary.BigEndian.Uint32(header.buf[4:8]))
					if payloadLen <= 0 {
						return nil, fmt.Errorf("%w: invalid embedded payload length %d", ErrFormat, payloadLen)
					}
					payloadBitsExpected = payloadLen * 8
				}
				continue
			}

			payload.push(bit)
			if payload.bits == payloadBitsExpected {
				return payload.buf, nil
			}
		}
	}

	if header.bits < headerBits {
		return nil, fmt.Errorf("%w: video ended before header was read", ErrTruncated)
	}
	return nil, fmt.Errorf("%w: video ended before payload was fully read", ErrTruncated)
}

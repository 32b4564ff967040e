package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WavFormatError reports a malformed RIFF/WAVE container.
type WavFormatError struct {
	Reason string
}

func (e *WavFormatError) Error() string {
	return fmt.Sprintf("invalid WAV file: %s", e.Reason)
}

// WavInfo locates the sample data inside a RIFF/WAVE buffer.
type WavInfo struct {
	DataOffset  int // byte offset of the data chunk body
	DataSize    int // byte length of the data chunk body
	SampleWidth int // bytes per sample, from fmt bits_per_sample/8
}

// ParseWAV scans the RIFF sub-chunks of wavBytes and returns the location
// of the data chunk plus the sample width. It fails with *WavFormatError if
// the RIFF/WAVE header is absent or truncated, or no data chunk exists.
func ParseWAV(wavBytes []byte) (*WavInfo, error) {
	if len(wavBytes) < 12 {
		return nil, &WavFormatError{Reason: "too short"}
	}
	if !bytes.Equal(wavBytes[0:4], []byte("RIFF")) {
		return nil, &WavFormatError{Reason: "missing RIFF header"}
	}
	if !bytes.Equal(wavBytes[8:12], []byte("WAVE")) {
		return nil, &WavFormatError{Reason: "missing WAVE marker"}
	}

	info := &WavInfo{SampleWidth: 2}
	foundData := false

	pos := 12
	for pos+8 <= len(wavBytes) {
		chunkID := wavBytes[pos : pos+4]
		chunkSize := int(binary.LittleEndian.Uint32(wavBytes[pos+4 : pos+8]))
		body := pos + 8

		switch {
		case bytes.Equal(chunkID, []byte("fmt ")):
			if body+16 > len(wavBytes) {
				return nil, &WavFormatError{Reason: "truncated fmt chunk"}
			}
			bitsPerSample := int(binary.LittleEndian.Uint16(wavBytes[body+14 : body+16]))
			if bitsPerSample > 0 {
				info.SampleWidth = bitsPerSample / 8
			}
		case bytes.Equal(chunkID, []byte("data")):
			if body+chunkSize > len(wavBytes) {
				return nil, &WavFormatError{Reason: "truncated data chunk"}
			}
			info.DataOffset = body
			info.DataSize = chunkSize
			foundData = true
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		pos = body + chunkSize + chunkSize%2
	}

	if !foundData {
		return nil, &WavFormatError{Reason: "data chunk not found"}
	}
	return info, nil
}

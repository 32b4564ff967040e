package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stego-backend/models"
)

func TestEncodePCMToWAVRoundTrip(t *testing.T) {
	pcm := make([]byte, 400)
	for i := range pcm {
		pcm[i] = byte(i*13 + 1)
	}
	meta := &models.AudioMetadata{SampleRate: 8000, Channels: 1, BitDepth: 16}

	wavData, err := NewDecoder().EncodePCMToWAV(pcm, meta)
	require.NoError(t, err)

	info, err := ParseWAV(wavData)
	require.NoError(t, err)
	assert.Equal(t, 2, info.SampleWidth)
	assert.Equal(t, len(pcm), info.DataSize)
	// 16-bit samples write back as the same little-endian bytes.
	assert.Equal(t, pcm, wavData[info.DataOffset:info.DataOffset+info.DataSize])
}

func TestEncodePCMToWAVStereo(t *testing.T) {
	pcm := make([]byte, 256)
	for i := range pcm {
		pcm[i] = byte(i * 7)
	}
	meta := &models.AudioMetadata{SampleRate: 44100, Channels: 2, BitDepth: 16}

	wavData, err := NewDecoder().EncodePCMToWAV(pcm, meta)
	require.NoError(t, err)

	info, err := ParseWAV(wavData)
	require.NoError(t, err)
	assert.Equal(t, pcm, wavData[info.DataOffset:info.DataOffset+info.DataSize])
}

func TestEncodePCMToWAVRejectsOddLength(t *testing.T) {
	meta := &models.AudioMetadata{SampleRate: 8000, Channels: 1, BitDepth: 16}
	_, err := NewDecoder().EncodePCMToWAV(make([]byte, 3), meta)
	assert.Error(t, err)
}

// Package audio handles carrier containers: RIFF/WAVE parsing, MP3 carrier
// ingestion and PSNR quality assessment.
package audio

import (
	"fmt"
	"io"
	"os"
	"stego-backend/models"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tosone/minimp3"
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// DecodeMP3 decodes an MP3 buffer into interleaved 16-bit little-endian PCM.
func (d *Decoder) DecodeMP3(mp3Data []byte) ([]byte, *models.AudioMetadata, error) {
	decoder, data, err := minimp3.DecodeFull(mp3Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode MP3: %v", err)
	}
	defer decoder.Close()

	totalBytes := len(data)
	samplesPerChannel := totalBytes / 2 / decoder.Channels // 2 bytes per 16-bit sample
	duration := float64(samplesPerChannel) / float64(decoder.SampleRate)

	metadata := &models.AudioMetadata{
		SampleRate: decoder.SampleRate,
		Channels:   decoder.Channels,
		BitDepth:   16,
		Duration:   duration,
		TotalBytes: totalBytes,
	}

	return data, metadata, nil
}

// EncodePCMToWAV wraps interleaved 16-bit PCM into a RIFF/WAVE container.
func (d *Decoder) EncodePCMToWAV(pcmData []byte, metadata *models.AudioMetadata) ([]byte, error) {
	if len(pcmData)%2 != 0 {
		return nil, fmt.Errorf("PCM data length must be even for 16-bit samples")
	}

	sampleCount := len(pcmData) / 2
	samples := make([]int, sampleCount)

	for i := range sampleCount {
		// Little-endian 16-bit sample
		low := int16(pcmData[i*2])
		high := int16(pcmData[i*2+1])
		samples[i] = int(low | (high << 8))
	}

	format := &goaudio.Format{
		NumChannels: metadata.Channels,
		SampleRate:  metadata.SampleRate,
	}

	buf := &goaudio.IntBuffer{
		Format: format,
		Data:   samples,
	}

	// wav.NewEncoder needs a WriteSeeker, so go through a temp file
	tempFile, err := os.CreateTemp("", "carrier_*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %v", err)
	}
	defer tempFile.Close()
	defer os.Remove(tempFile.Name())

	encoder := wav.NewEncoder(tempFile, metadata.SampleRate, metadata.BitDepth, metadata.Channels, 1)

	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %v", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close WAV encoder: %v", err)
	}

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind temp file: %v", err)
	}
	wavData, err := io.ReadAll(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %v", err)
	}

	return wavData, nil
}

// MP3ToWAV converts an MP3 carrier to a WAV carrier so the LSB codec can
// operate on uncompressed samples. The stego output stays WAV: re-encoding
// to MP3 would destroy the embedded bits.
func (d *Decoder) MP3ToWAV(mp3Data []byte) ([]byte, *models.AudioMetadata, error) {
	pcm, metadata, err := d.DecodeMP3(mp3Data)
	if err != nil {
		return nil, nil, err
	}
	wavData, err := d.EncodePCMToWAV(pcm, metadata)
	if err != nil {
		return nil, nil, err
	}
	return wavData, metadata, nil
}

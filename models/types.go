// Package models contain needed models
package models

// StegoResponse represents an error or status response from an embed endpoint
type StegoResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	PSNR    float64 `json:"psnr,omitempty"`
}

// ExtractResponse represents the response after extraction
type ExtractResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	File    *SecretFile `json:"file,omitempty"`
}

// SecretFile carries an extracted file payload back to the client,
// base64-armored.
type SecretFile struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
}

// TextEmbedResponse returns the watermarked host text
type TextEmbedResponse struct {
	Watermarked string `json:"watermarked"`
}

// AudioMetadata represents metadata about an audio carrier
type AudioMetadata struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
	TotalBytes int
}

// ChatMessage is one relayed chat entry
type ChatMessage struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Ciphertext string `json:"ciphertext"`
	Sender     string `json:"sender"`
	Cover      string `json:"cover"`
	SentAt     string `json:"sent_at"`
}

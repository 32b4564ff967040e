package stego

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// PayloadKind tags the two payload variants.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadFile
)

// DefaultSecretFilename is used when a file payload carries no name.
const DefaultSecretFilename = "secret.bin"

// Payload is the secret to embed: either UTF-8 text or a named file.
type Payload struct {
	Kind     PayloadKind
	Data     []byte
	Filename string
}

// TextPayload builds a text payload.
func TextPayload(message string) Payload {
	return Payload{Kind: PayloadText, Data: []byte(message)}
}

// FilePayload builds a file payload, defaulting the filename.
func FilePayload(data []byte, filename string) Payload {
	if filename == "" {
		filename = DefaultSecretFilename
	}
	return Payload{Kind: PayloadFile, Data: data, Filename: filename}
}

// Validate enforces the payload invariants before embedding.
func (p Payload) Validate() error {
	if len(p.Data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrFormat)
	}
	switch p.Kind {
	case PayloadText:
		if !utf8.Valid(p.Data) {
			return fmt.Errorf("%w: text payload is not valid UTF-8", ErrFormat)
		}
	case PayloadFile:
		if p.Filename == "" {
			return fmt.Errorf("%w: file payload requires a filename", ErrFormat)
		}
	default:
		return fmt.Errorf("%w: unknown payload kind %d", ErrFormat, p.Kind)
	}
	return nil
}

// payloadWire is the JSON wire object shared by the video and image paths.
// Field order matters for byte-compatibility with previously produced
// carriers: type, filename, data.
type payloadWire struct {
	Type     string `json:"type"`
	Filename string `json:"filename,omitempty"`
	Data     string `json:"data"`
}

// MarshalWire serializes the payload to its JSON wire form. File data is
// base64-armored inside the JSON object.
func (p Payload) MarshalWire() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var obj payloadWire
	switch p.Kind {
	case PayloadText:
		obj = payloadWire{Type: "text", Data: string(p.Data)}
	case PayloadFile:
		obj = payloadWire{
			Type:     "file",
			Filename: p.Filename,
			Data:     base64.StdEncoding.EncodeToString(p.Data),
		}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return raw, nil
}

// UnmarshalWire parses the JSON wire form back into a tagged payload.
func UnmarshalWire(raw []byte) (Payload, error) {
	var obj payloadWire
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Payload{}, fmt.Errorf("%w: invalid embedded data format", ErrFormat)
	}
	switch obj.Type {
	case "text":
		return TextPayload(obj.Data), nil
	case "file":
		data, err := base64.StdEncoding.DecodeString(obj.Data)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: corrupted embedded file data", ErrFormat)
		}
		return FilePayload(data, obj.Filename), nil
	}
	return Payload{}, fmt.Errorf("%w: unknown embedded payload type %q", ErrFormat, obj.Type)
}

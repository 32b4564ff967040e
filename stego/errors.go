// Package stego implements LSB steganography codecs for audio, video,
// image and text carriers.
package stego

import "errors"

// Error taxonomy shared by all codecs. Handlers match with errors.Is and
// map every one of them to a user-facing rejection; none are retried.
var (
	// ErrFormat indicates a malformed container, header or magic mismatch.
	ErrFormat = errors.New("format error")

	// ErrCapacity indicates the payload does not fit in the carrier.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrTruncated indicates the carrier ended before the declared payload
	// was fully read.
	ErrTruncated = errors.New("truncated payload")

	// ErrCrypto indicates a missing password when encryption was requested,
	// or ciphertext that cannot be decoded after decryption.
	ErrCrypto = errors.New("crypto error")

	// ErrSizeLimit indicates the input exceeds the hard operational ceiling.
	ErrSizeLimit = errors.New("size limit exceeded")

	// ErrIO indicates an external container or stream failure.
	ErrIO = errors.New("io error")

	// ErrTranscode indicates the external transcoder process failed.
	ErrTranscode = errors.New("transcode error")
)

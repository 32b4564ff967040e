package stego

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToBitsMSBFirst(t *testing.T) {
	bits := BytesToBits([]byte{0xA5})
	assert.Equal(t, []byte{1, 0, 1, 0, 0, 1, 0, 1}, bits)
}

func TestBitsRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xFF},
		{0xDE, 0xAD, 0xBE, 0xEF},
		[]byte("the quick brown fox"),
	}
	for _, in := range inputs {
		assert.Equal(t, in, BitsToBytes(BytesToBits(in)))
	}
}

func TestBitsToBytesPadsFinalByte(t *testing.T) {
	// Three bits 101 become 1010_0000.
	out := BitsToBytes([]byte{1, 0, 1})
	assert.Equal(t, []byte{0xA0}, out)
}

func TestBytesToBitsLength(t *testing.T) {
	assert.Len(t, BytesToBits(make([]byte, 13)), 13*8)
}

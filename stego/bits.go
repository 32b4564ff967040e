package stego

// BytesToBits expands data into one byte per bit, MSB of data[0] first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

// BitsToBytes is the inverse of BytesToBits. A final partial byte is
// zero-padded on the low end, so BitsToBytes(BytesToBits(b)) == b for any b.
func BitsToBytes(bits []byte) []byte {
	out := make([]byte, 0, (len(bits)+7)/8)
	for i := 0; i < len(bits); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if i+j < len(bits) {
				b |= bits[i+j] & 1
			}
		}
		out = append(out, b)
	}
	return out
}

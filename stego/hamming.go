package stego

// Hamming(7,4) over bit slices as produced by BytesToBits. Each 4-bit data
// block becomes a 7-bit codeword laid out in the classic positional order
// [p1 p2 d1 p4 d2 d3 d4], where parity bits sit at positions 1, 2 and 4
// (1-based) so the decode syndrome directly indexes the flipped bit.

// HammingEncode encodes bits into Hamming(7,4) codewords. The final
// incomplete 4-bit block is zero-padded. Expansion ratio is 7/4.
func HammingEncode(bits []byte) []byte {
	blocks := (len(bits) + 3) / 4
	padded := make([]byte, blocks*4)
	copy(padded, bits)

	out := make([]byte, 0, blocks*7)
	for i := 0; i < blocks; i++ {
		d1 := padded[i*4]
		d2 := padded[i*4+1]
		d3 := padded[i*4+2]
		d4 := padded[i*4+3]

		p1 := d1 ^ d2 ^ d4
		p2 := d1 ^ d3 ^ d4
		p4 := d2 ^ d3 ^ d4

		out = append(out, p1, p2, d1, p4, d2, d3, d4)
	}
	return out
}

// HammingDecode decodes 7-bit codewords back into data bits, correcting a
// single flipped bit per codeword. Two or more errors in one codeword are
// uncorrectable and decode to wrong data without being detected; callers
// accept this as the (7,4) code's known limit. Trailing bits that do not
// fill a whole codeword are ignored.
func HammingDecode(bits []byte) []byte {
	blocks := len(bits) / 7
	out := make([]byte, 0, blocks*4)
	for i := 0; i < blocks; i++ {
		var cw [7]byte
		copy(cw[:], bits[i*7:i*7+7])

		s1 := cw[0] ^ cw[2] ^ cw[4] ^ cw[6]
		s2 := cw[1] ^ cw[2] ^ cw[5] ^ cw[6]
		s4 := cw[3] ^ cw[4] ^ cw[5] ^ cw[6]

		syndrome := int(s1) | int(s2)<<1 | int(s4)<<2
		if syndrome != 0 {
			cw[syndrome-1] ^= 1
		}

		out = append(out, cw[2], cw[4], cw[5], cw[6])
	}
	return out
}

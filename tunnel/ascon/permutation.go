package ascon

import "math/bits"

// state is the 320-bit Ascon permutation state. Words are big-endian with
// respect to the byte-oriented sponge interface.
type state [5]uint64

// Round constants from the Ascon v1.2 submission, Table 4.
// p12 uses the full table, p8 starts at index 4, p6 at index 6.
var roundc = [12]uint64{
	0xf0, 0xe1, 0xd2, 0xc3,
	0xb4, 0xa5, 0x96, 0x87,
	0x78, 0x69, 0x5a, 0x4b,
}

// rounds applies the last n rounds of the Ascon permutation.
func (s *state) rounds(n int) {
	x0, x1, x2, x3, x4 := s[0], s[1], s[2], s[3], s[4]
	for _, rc := range roundc[12-n:] {
		// constant addition
		x2 ^= rc

		// substitution layer, bitsliced 5-bit S-box
		x0 ^= x4
		x4 ^= x3
		x2 ^= x1
		t0 := ^x0 & x1
		t1 := ^x1 & x2
		t2 := ^x2 & x3
		t3 := ^x3 & x4
		t4 := ^x4 & x0
		x0 ^= t1
		x1 ^= t2
		x2 ^= t3
		x3 ^= t4
		x4 ^= t0
		x1 ^= x0
		x0 ^= x4
		x3 ^= x2
		x2 = ^x2

		// linear diffusion layer
		x0 ^= bits.RotateLeft64(x0, -19) ^ bits.RotateLeft64(x0, -28)
		x1 ^= bits.RotateLeft64(x1, -61) ^ bits.RotateLeft64(x1, -39)
		x2 ^= bits.RotateLeft64(x2, -1) ^ bits.RotateLeft64(x2, -6)
		x3 ^= bits.RotateLeft64(x3, -10) ^ bits.RotateLeft64(x3, -17)
		x4 ^= bits.RotateLeft64(x4, -7) ^ bits.RotateLeft64(x4, -41)
	}
	s[0], s[1], s[2], s[3], s[4] = x0, x1, x2, x3, x4
}

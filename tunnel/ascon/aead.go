package ascon

import (
	"crypto/subtle"
	"encoding/binary"
)

// initRounds is the number of permutation rounds for initialization and
// finalization (pA). The per-block count (pB) is a variant parameter.
const initRounds = 12

// variant holds the parameters that distinguish the two supported ciphers.
// Everything else about the construction is shared.
type variant struct {
	name string
	iv   uint64 // initialization word: key size, rate, pA, pB
	rate int    // sponge rate in bytes, 8 or 16
	pb   int    // permutation rounds between blocks
}

// The catalog of supported variants. Lookup is by exact display name; there
// is no normalization and no aliasing.
var variants = [...]variant{
	{name: Variant128, iv: 0x80400c0600000000, rate: 8, pb: 6},
	{name: Variant128a, iv: 0x80800c0800000000, rate: 16, pb: 8},
}

func lookupVariant(name string) *variant {
	for i := range variants {
		if variants[i].name == name {
			return &variants[i]
		}
	}
	return nil
}

// seal encrypts plaintext into body and writes the 16-byte tag into tag.
// body must hold exactly len(plaintext) bytes. key must be 16 bytes and
// nonce exactly 16; callers validate and truncate.
func (v *variant) seal(body, tag, key, nonce, additionalData, plaintext []byte) {
	k0 := binary.BigEndian.Uint64(key[0:8])
	k1 := binary.BigEndian.Uint64(key[8:16])

	var s state
	v.initialize(&s, k0, k1, nonce)
	v.absorb(&s, additionalData)
	s[4] ^= 1 // domain separation between associated data and plaintext

	v.encryptBody(&s, body, plaintext)

	t0, t1 := v.finalize(&s, k0, k1)
	binary.BigEndian.PutUint64(tag[0:8], t0)
	binary.BigEndian.PutUint64(tag[8:16], t1)
}

// open decrypts ciphertext into body and verifies tag in constant time.
// body must hold exactly len(ciphertext) bytes. It reports whether the tag
// verified; on false the contents of body are unspecified and callers must
// discard them.
func (v *variant) open(body, key, nonce, additionalData, ciphertext, tag []byte) bool {
	k0 := binary.BigEndian.Uint64(key[0:8])
	k1 := binary.BigEndian.Uint64(key[8:16])

	var s state
	v.initialize(&s, k0, k1, nonce)
	v.absorb(&s, additionalData)
	s[4] ^= 1

	v.decryptBody(&s, body, ciphertext)

	t0, t1 := v.finalize(&s, k0, k1)
	var want [TagSize]byte
	binary.BigEndian.PutUint64(want[0:8], t0)
	binary.BigEndian.PutUint64(want[8:16], t1)
	return subtle.ConstantTimeCompare(want[:], tag) == 1
}

// initialize loads IV || K || N, runs pA rounds, and mixes the key back in.
func (v *variant) initialize(s *state, k0, k1 uint64, nonce []byte) {
	s[0] = v.iv
	s[1] = k0
	s[2] = k1
	s[3] = binary.BigEndian.Uint64(nonce[0:8])
	s[4] = binary.BigEndian.Uint64(nonce[8:16])
	s.rounds(initRounds)
	s[3] ^= k0
	s[4] ^= k1
}

// absorb mixes the associated data into the state. Empty associated data is
// neither padded nor absorbed.
func (v *variant) absorb(s *state, ad []byte) {
	if len(ad) == 0 {
		return
	}
	for len(ad) >= v.rate {
		s[0] ^= binary.BigEndian.Uint64(ad[0:8])
		if v.rate == 16 {
			s[1] ^= binary.BigEndian.Uint64(ad[8:16])
		}
		ad = ad[v.rate:]
		s.rounds(v.pb)
	}
	var buf [16]byte
	n := copy(buf[:], ad)
	buf[n] |= 0x80
	s[0] ^= binary.BigEndian.Uint64(buf[0:8])
	if v.rate == 16 {
		s[1] ^= binary.BigEndian.Uint64(buf[8:16])
	}
	s.rounds(v.pb)
}

// encryptBody duplexes the plaintext through the sponge. dst and p may be
// the same slice. No permutation follows the final block.
func (v *variant) encryptBody(s *state, dst, p []byte) {
	for len(p) >= v.rate {
		s[0] ^= binary.BigEndian.Uint64(p[0:8])
		binary.BigEndian.PutUint64(dst[0:8], s[0])
		if v.rate == 16 {
			s[1] ^= binary.BigEndian.Uint64(p[8:16])
			binary.BigEndian.PutUint64(dst[8:16], s[1])
		}
		p = p[v.rate:]
		dst = dst[v.rate:]
		s.rounds(v.pb)
	}

	// final partial block, padded inside the state
	var buf [16]byte
	n := copy(buf[:], p)
	buf[n] |= 0x80
	s[0] ^= binary.BigEndian.Uint64(buf[0:8])
	if v.rate == 16 {
		s[1] ^= binary.BigEndian.Uint64(buf[8:16])
	}
	var ks [16]byte
	binary.BigEndian.PutUint64(ks[0:8], s[0])
	if v.rate == 16 {
		binary.BigEndian.PutUint64(ks[8:16], s[1])
	}
	copy(dst, ks[:n])
}

// decryptBody inverts encryptBody: the ciphertext replaces the rate portion
// of the state. dst and c may be the same slice.
func (v *variant) decryptBody(s *state, dst, c []byte) {
	for len(c) >= v.rate {
		x0 := binary.BigEndian.Uint64(c[0:8])
		binary.BigEndian.PutUint64(dst[0:8], x0^s[0])
		s[0] = x0
		if v.rate == 16 {
			x1 := binary.BigEndian.Uint64(c[8:16])
			binary.BigEndian.PutUint64(dst[8:16], x1^s[1])
			s[1] = x1
		}
		c = c[v.rate:]
		dst = dst[v.rate:]
		s.rounds(v.pb)
	}

	var ks [16]byte
	binary.BigEndian.PutUint64(ks[0:8], s[0])
	if v.rate == 16 {
		binary.BigEndian.PutUint64(ks[8:16], s[1])
	}
	n := len(c)
	for i := 0; i < n; i++ {
		ci := c[i]
		dst[i] = ci ^ ks[i]
		ks[i] = ci
	}
	ks[n] ^= 0x80
	s[0] = binary.BigEndian.Uint64(ks[0:8])
	if v.rate == 16 {
		s[1] = binary.BigEndian.Uint64(ks[8:16])
	}
}

// finalize mixes the key in at the rate boundary, runs pA rounds, and
// returns the two tag words.
func (v *variant) finalize(s *state, k0, k1 uint64) (uint64, uint64) {
	w := v.rate / 8
	s[w] ^= k0
	s[w+1] ^= k1
	s.rounds(initRounds)
	return s[3] ^ k0, s[4] ^ k1
}

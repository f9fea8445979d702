package ascon

import (
	"fmt"
	"math"
)

// Cipher binds a key to one Ascon variant and implements the
// crypto/cipher.AEAD interface, so suite negotiation can hand out Ascon the
// same way it hands out AES-GCM or ChaCha20-Poly1305.
//
// Cipher is safe for concurrent use: all state lives on the stack of each
// call.
type Cipher struct {
	v   *variant
	key [KeySize]byte
}

// New returns a Cipher for the named variant. The key must be exactly
// 16 bytes.
func New(key []byte, variant string) (*Cipher, error) {
	v := lookupVariant(variant)
	if v == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	c := &Cipher{v: v}
	copy(c.key[:], key)
	return c, nil
}

// Variant returns the display name of the bound variant.
func (c *Cipher) Variant() string { return c.v.name }

func (c *Cipher) NonceSize() int { return NonceSize }

func (c *Cipher) Overhead() int { return TagSize }

// Seal encrypts and authenticates plaintext, appends body || tag to dst,
// and returns the extended slice. It panics on a short nonce or an
// impossible output size, per the cipher.AEAD contract. Nonces longer than
// NonceSize are accepted; only the first NonceSize bytes contribute.
func (c *Cipher) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) < NonceSize {
		panic("ascon: nonce too short")
	}
	if len(plaintext) > math.MaxInt-TagSize {
		panic("ascon: plaintext too large")
	}
	ret, out := sliceForAppend(dst, len(plaintext)+TagSize)
	body, tag := out[:len(plaintext)], out[len(plaintext):]
	c.v.seal(body, tag, c.key[:], nonce[:NonceSize], additionalData, plaintext)
	return ret
}

// Open decrypts and verifies a body || tag buffer, appends the plaintext to
// dst, and returns the extended slice. Verification failures of any cause
// return ErrAuthentication with the output zeroed.
func (c *Cipher) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) < NonceSize {
		return nil, ErrNonceSize
	}
	if len(ciphertext) < TagSize {
		return nil, ErrCiphertextTooShort
	}
	n := len(ciphertext) - TagSize
	body, tag := ciphertext[:n], ciphertext[n:]
	ret, out := sliceForAppend(dst, n)
	if !c.v.open(out, c.key[:], nonce[:NonceSize], additionalData, body, tag) {
		clear(out)
		return nil, ErrAuthentication
	}
	return ret, nil
}

func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}

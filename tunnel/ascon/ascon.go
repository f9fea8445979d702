package ascon

import (
	"errors"
	"fmt"
	"math"
)

const (
	// KeySize is the exact key length in bytes for both variants.
	KeySize = 16
	// NonceSize is the number of nonce bytes consumed. Longer nonces are
	// accepted; only the first NonceSize bytes contribute.
	NonceSize = 16
	// TagSize is the authentication tag length appended to the ciphertext.
	TagSize = 16
)

// Variant display names. Resolution is by exact match.
const (
	Variant128  = "Ascon-AEAD128"
	Variant128a = "Ascon-AEAD128a"
)

var (
	ErrUnknownVariant     = errors.New("ascon: unknown variant")
	ErrKeySize            = errors.New("ascon: key must be exactly 16 bytes")
	ErrNonceSize          = errors.New("ascon: nonce must be at least 16 bytes")
	ErrCiphertextTooShort = errors.New("ascon: ciphertext shorter than tag")
	ErrPlaintextTooLarge  = errors.New("ascon: plaintext length overflows output size")

	// ErrAuthentication is returned for every failed decryption, whatever
	// the cause. Callers learn that no plaintext exists, nothing else.
	ErrAuthentication = errors.New("ascon: message authentication failed")
)

// Encrypt seals plaintext under the named variant and returns
// body || tag in a single freshly allocated buffer of
// len(plaintext)+TagSize bytes.
//
// The key must be exactly 16 bytes and the nonce at least 16; only
// nonce[:16] contributes to the result. additionalData is authenticated but
// not encrypted and may be nil.
func Encrypt(key, nonce, additionalData, plaintext []byte, variant string) ([]byte, error) {
	v := lookupVariant(variant)
	if v == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	if len(nonce) < NonceSize {
		return nil, ErrNonceSize
	}
	if len(plaintext) > math.MaxInt-TagSize {
		return nil, ErrPlaintextTooLarge
	}

	out := make([]byte, len(plaintext)+TagSize)
	body, tag := out[:len(plaintext)], out[len(plaintext):]
	v.seal(body, tag, key, nonce[:NonceSize], additionalData, plaintext)
	return out, nil
}

// Decrypt opens a body || tag buffer produced by Encrypt under the same
// variant, key, nonce, and additionalData, returning the plaintext.
//
// Any verification failure, from a flipped bit to a wrong key, yields
// ErrAuthentication and no plaintext. Malformed arguments yield the
// corresponding usage error instead; use errors.Is to tell the classes
// apart.
func Decrypt(key, nonce, additionalData, ciphertext []byte, variant string) ([]byte, error) {
	v := lookupVariant(variant)
	if v == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	if len(nonce) < NonceSize {
		return nil, ErrNonceSize
	}
	if len(ciphertext) < TagSize {
		return nil, ErrCiphertextTooShort
	}

	n := len(ciphertext) - TagSize
	body, tag := ciphertext[:n], ciphertext[n:]
	plaintext := make([]byte, n)
	if !v.open(plaintext, key, nonce[:NonceSize], additionalData, body, tag) {
		clear(plaintext)
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

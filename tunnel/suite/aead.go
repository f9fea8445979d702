package suite

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Kamalbura/secure-tunnel/tunnel/ascon"
)

// ErrAEADKeySize is returned when the key material does not fit the token.
var ErrAEADKeySize = errors.New("suite: wrong AEAD key size")

// NewAEAD instantiates the cipher behind an AEAD token. Transport keys are
// always 32 bytes; Ascon-128a uses the leading 16, the others use all 32.
func NewAEAD(token string, key []byte) (cipher.AEAD, error) {
	a, err := ResolveAEAD(token)
	if err != nil {
		return nil, err
	}
	switch a.Token {
	case TokenAESGCM:
		if len(key) != a.KeySize {
			return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrAEADKeySize, a.Name, a.KeySize, len(key))
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case TokenChaCha20Poly1305:
		if len(key) != a.KeySize {
			return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrAEADKeySize, a.Name, a.KeySize, len(key))
		}
		return chacha20poly1305.New(key)
	case TokenAscon128a:
		if len(key) < a.KeySize {
			return nil, fmt.Errorf("%w: %s needs at least %d bytes, got %d", ErrAEADKeySize, a.Name, a.KeySize, len(key))
		}
		return ascon.New(key[:a.KeySize], ascon.Variant128a)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAEAD, token)
}

package handshake

import (
	"crypto/mlkem"
	"errors"
	"fmt"
)

// ErrKEMUnavailable marks suites whose KEM the runtime cannot provide. The
// registry deliberately lists more KEMs than any one build implements;
// Classic-McEliece and HQC peers negotiate down to an ML-KEM suite.
var ErrKEMUnavailable = errors.New("handshake: KEM not available in this runtime")

// kem is the ephemeral key encapsulation state for one handshake.
type kem interface {
	// Generate creates the ephemeral keypair and returns the public
	// encapsulation key bytes for the hello.
	Generate() ([]byte, error)
	// Decapsulate recovers the shared secret on the generating side.
	Decapsulate(ciphertext []byte) ([]byte, error)
	// Encapsulate derives a shared secret against a peer's public key,
	// returning the ciphertext to send and the secret.
	Encapsulate(peerPublic []byte) (ciphertext, secret []byte, err error)
}

func newKEM(name string) (kem, error) {
	switch name {
	case "ML-KEM-768":
		return &kem768{}, nil
	case "ML-KEM-1024":
		return &kem1024{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrKEMUnavailable, name)
}

type kem768 struct {
	dk *mlkem.DecapsulationKey768
}

func (k *kem768) Generate() ([]byte, error) {
	dk, err := mlkem.GenerateKey768()
	if err != nil {
		return nil, err
	}
	k.dk = dk
	return dk.EncapsulationKey().Bytes(), nil
}

func (k *kem768) Decapsulate(ciphertext []byte) ([]byte, error) {
	if k.dk == nil {
		return nil, errors.New("handshake: decapsulation before Generate")
	}
	return k.dk.Decapsulate(ciphertext)
}

func (k *kem768) Encapsulate(peerPublic []byte) ([]byte, []byte, error) {
	ek, err := mlkem.NewEncapsulationKey768(peerPublic)
	if err != nil {
		return nil, nil, err
	}
	secret, ciphertext := ek.Encapsulate()
	return ciphertext, secret, nil
}

type kem1024 struct {
	dk *mlkem.DecapsulationKey1024
}

func (k *kem1024) Generate() ([]byte, error) {
	dk, err := mlkem.GenerateKey1024()
	if err != nil {
		return nil, err
	}
	k.dk = dk
	return dk.EncapsulationKey().Bytes(), nil
}

func (k *kem1024) Decapsulate(ciphertext []byte) ([]byte, error) {
	if k.dk == nil {
		return nil, errors.New("handshake: decapsulation before Generate")
	}
	return k.dk.Decapsulate(ciphertext)
}

func (k *kem1024) Encapsulate(peerPublic []byte) ([]byte, []byte, error) {
	ek, err := mlkem.NewEncapsulationKey1024(peerPublic)
	if err != nil {
		return nil, nil, err
	}
	secret, ciphertext := ek.Encapsulate()
	return ciphertext, secret, nil
}

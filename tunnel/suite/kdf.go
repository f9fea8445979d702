package suite

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// TransportKeySize is the per-direction key length produced by the KDF.
const TransportKeySize = 32

// KDF labels, frozen for wire compatibility with deployed fleets.
var (
	kdfSalt       = []byte("pq-drone-gcs|hkdf|v1")
	kdfInfoPrefix = []byte("pq-drone-gcs:kdf:v1|")
)

var ErrKDFInput = errors.New("suite: missing KDF input")

// DeriveTransportKeys expands a KEM shared secret into the two directional
// transport keys using HKDF-SHA256. The info string binds the keys to the
// session and to the negotiated algorithm names, so a transcript spliced
// from another session derives nothing useful.
//
// Returns (droneToGCS, gcsToDrone), each TransportKeySize bytes.
func DeriveTransportKeys(sharedSecret []byte, sessionID [8]byte, kemName, sigName string) ([]byte, []byte, error) {
	if len(sharedSecret) == 0 {
		return nil, nil, ErrKDFInput
	}
	if kemName == "" || sigName == "" {
		return nil, nil, ErrKDFInput
	}

	info := make([]byte, 0, len(kdfInfoPrefix)+len(sessionID)+len(kemName)+len(sigName)+2)
	info = append(info, kdfInfoPrefix...)
	info = append(info, sessionID[:]...)
	info = append(info, '|')
	info = append(info, kemName...)
	info = append(info, '|')
	info = append(info, sigName...)

	hk := hkdf.New(sha256.New, sharedSecret, kdfSalt, info)
	okm := make([]byte, 2*TransportKeySize)
	if _, err := io.ReadFull(hk, okm); err != nil {
		return nil, nil, err
	}
	return okm[:TransportKeySize], okm[TransportKeySize:], nil
}

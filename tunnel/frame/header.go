package frame

import (
	"encoding/binary"
	"errors"
)

// WireVersion is the frozen frame format version. Bump only with a
// coordinated fleet upgrade.
const WireVersion = 1

const (
	// HeaderSize is the length of the clear frame preamble.
	HeaderSize = 22
	// SessionIDSize is the length of the session identifier.
	SessionIDSize = 8
)

var ErrHeaderTooShort = errors.New("frame: wire too short for header")

// Header is the clear preamble of every frame:
//
//	version (1) || kem_id (1) || kem_param (1) || sig_id (1) || sig_param (1) ||
//	session_id (8) || seq (8 BE) || epoch (1)
type Header struct {
	Version   byte
	IDs       [4]byte
	SessionID [SessionIDSize]byte
	Seq       uint64
	Epoch     byte
}

// Bytes packs the header into its wire form.
func (h Header) Bytes() [HeaderSize]byte {
	var b [HeaderSize]byte
	b[0] = h.Version
	copy(b[1:5], h.IDs[:])
	copy(b[5:13], h.SessionID[:])
	binary.BigEndian.PutUint64(b[13:21], h.Seq)
	b[21] = h.Epoch
	return b
}

// ParseHeader reads a header from the front of wire.
func ParseHeader(wire []byte) (Header, error) {
	if len(wire) < HeaderSize {
		return Header{}, ErrHeaderTooShort
	}
	var h Header
	h.Version = wire[0]
	copy(h.IDs[:], wire[1:5])
	copy(h.SessionID[:], wire[5:13])
	h.Seq = binary.BigEndian.Uint64(wire[13:21])
	h.Epoch = wire[21]
	return h, nil
}

// buildNonce writes the deterministic AEAD nonce, epoch (1) || seq (11 BE),
// zero-padded to len(dst). dst must be at least 12 bytes.
func buildNonce(dst []byte, epoch byte, seq uint64) {
	for i := range dst {
		dst[i] = 0
	}
	dst[0] = epoch
	binary.BigEndian.PutUint64(dst[4:12], seq)
}

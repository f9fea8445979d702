package handshake

import (
	"encoding/binary"
	"errors"

	"github.com/Kamalbura/secure-tunnel/tunnel/frame"
)

const (
	sessionIDSize = frame.SessionIDSize
	challengeSize = 8
)

var (
	ErrMalformedHello = errors.New("handshake: malformed server hello")
	ErrVersion        = errors.New("handshake: wire version mismatch")
)

// transcriptLabel separates the signed transcript from any other use of the
// station key. Frozen.
var transcriptLabel = []byte("|pq-drone-gcs:v1|")

// ServerHello is the station's opening message.
//
// Wire layout:
//
//	version (1) || kem_name_len (2) || kem_name || sig_name_len (2) || sig_name ||
//	session_id (8) || challenge (8) || kem_pub_len (4) || kem_pub ||
//	sig_len (2) || signature
type ServerHello struct {
	Version   byte
	KEMName   string
	SigName   string
	SessionID [sessionIDSize]byte
	Challenge [challengeSize]byte
	KEMPublic []byte
	Signature []byte
}

// transcript is the byte string the station signs. It pins the version,
// session, algorithm names, ephemeral public key, and challenge, so no
// field can be swapped without invalidating the signature.
func (h ServerHello) transcript() []byte {
	b := make([]byte, 0, 1+len(transcriptLabel)+sessionIDSize+len(h.KEMName)+len(h.SigName)+len(h.KEMPublic)+challengeSize+4)
	b = append(b, h.Version)
	b = append(b, transcriptLabel...)
	b = append(b, h.SessionID[:]...)
	b = append(b, '|')
	b = append(b, h.KEMName...)
	b = append(b, '|')
	b = append(b, h.SigName...)
	b = append(b, '|')
	b = append(b, h.KEMPublic...)
	b = append(b, '|')
	b = append(b, h.Challenge[:]...)
	return b
}

func (h ServerHello) marshal() []byte {
	b := make([]byte, 0, 1+2+len(h.KEMName)+2+len(h.SigName)+sessionIDSize+challengeSize+4+len(h.KEMPublic)+2+len(h.Signature))
	b = append(b, h.Version)
	b = binary.BigEndian.AppendUint16(b, uint16(len(h.KEMName)))
	b = append(b, h.KEMName...)
	b = binary.BigEndian.AppendUint16(b, uint16(len(h.SigName)))
	b = append(b, h.SigName...)
	b = append(b, h.SessionID[:]...)
	b = append(b, h.Challenge[:]...)
	b = binary.BigEndian.AppendUint32(b, uint32(len(h.KEMPublic)))
	b = append(b, h.KEMPublic...)
	b = binary.BigEndian.AppendUint16(b, uint16(len(h.Signature)))
	b = append(b, h.Signature...)
	return b
}

func parseServerHello(wire []byte) (ServerHello, error) {
	var h ServerHello
	cur := wire

	take := func(n int) ([]byte, bool) {
		if len(cur) < n {
			return nil, false
		}
		out := cur[:n]
		cur = cur[n:]
		return out, true
	}
	takeU16 := func() (int, bool) {
		b, ok := take(2)
		if !ok {
			return 0, false
		}
		return int(binary.BigEndian.Uint16(b)), true
	}

	b, ok := take(1)
	if !ok {
		return ServerHello{}, ErrMalformedHello
	}
	h.Version = b[0]

	n, ok := takeU16()
	if !ok || n == 0 {
		return ServerHello{}, ErrMalformedHello
	}
	if b, ok = take(n); !ok {
		return ServerHello{}, ErrMalformedHello
	}
	h.KEMName = string(b)

	if n, ok = takeU16(); !ok || n == 0 {
		return ServerHello{}, ErrMalformedHello
	}
	if b, ok = take(n); !ok {
		return ServerHello{}, ErrMalformedHello
	}
	h.SigName = string(b)

	if b, ok = take(sessionIDSize); !ok {
		return ServerHello{}, ErrMalformedHello
	}
	copy(h.SessionID[:], b)
	if b, ok = take(challengeSize); !ok {
		return ServerHello{}, ErrMalformedHello
	}
	copy(h.Challenge[:], b)

	lb, ok := take(4)
	if !ok {
		return ServerHello{}, ErrMalformedHello
	}
	pubLen := int(binary.BigEndian.Uint32(lb))
	if pubLen == 0 || pubLen > maxMessageSize {
		return ServerHello{}, ErrMalformedHello
	}
	if b, ok = take(pubLen); !ok {
		return ServerHello{}, ErrMalformedHello
	}
	h.KEMPublic = append([]byte(nil), b...)

	if n, ok = takeU16(); !ok || n == 0 {
		return ServerHello{}, ErrMalformedHello
	}
	if b, ok = take(n); !ok {
		return ServerHello{}, ErrMalformedHello
	}
	h.Signature = append([]byte(nil), b...)

	if len(cur) != 0 {
		return ServerHello{}, ErrMalformedHello
	}
	return h, nil
}

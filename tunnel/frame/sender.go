package frame

import (
	"crypto/cipher"
	"errors"
	"sync"

	"github.com/Kamalbura/secure-tunnel/tunnel/suite"
)

// DefaultRekeyThreshold caps the outbound sequence counter well below the
// nonce space so operators have time to rotate keys.
const DefaultRekeyThreshold = uint64(1) << 63

var (
	ErrSequenceExhausted = errors.New("frame: sequence threshold reached, rekey required")
	ErrEpochExhausted    = errors.New("frame: epoch wrap forbidden without rekey")
)

// SenderConfig configures one outbound direction of an established session.
type SenderConfig struct {
	Suite     suite.Suite
	SessionID [SessionIDSize]byte
	// Key is this direction's transport key from the handshake KDF.
	Key   []byte
	Epoch byte
	// RekeyThreshold caps the sequence counter. Zero means
	// DefaultRekeyThreshold.
	RekeyThreshold uint64
}

// Sender seals outbound frames. It is safe for concurrent use.
type Sender struct {
	mu        sync.Mutex
	aead      cipher.AEAD
	ids       [4]byte
	sessionID [SessionIDSize]byte
	epoch     byte
	seq       uint64
	rekeyAt   uint64
}

// NewSender builds a Sender from handshake output.
func NewSender(cfg SenderConfig) (*Sender, error) {
	aead, err := suite.NewAEAD(cfg.Suite.AEAD.Token, cfg.Key)
	if err != nil {
		return nil, err
	}
	threshold := cfg.RekeyThreshold
	if threshold == 0 {
		threshold = DefaultRekeyThreshold
	}
	return &Sender{
		aead:      aead,
		ids:       cfg.Suite.HeaderIDs(),
		sessionID: cfg.SessionID,
		epoch:     cfg.Epoch,
		rekeyAt:   threshold,
	}, nil
}

// Seal encrypts plaintext into header || ciphertext+tag and advances the
// sequence counter. Once the rekey threshold is reached every call returns
// ErrSequenceExhausted until the session is re-established; nothing is
// encrypted past it.
func (s *Sender) Seal(plaintext []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq >= s.rekeyAt {
		return nil, ErrSequenceExhausted
	}

	hdr := Header{
		Version:   WireVersion,
		IDs:       s.ids,
		SessionID: s.sessionID,
		Seq:       s.seq,
		Epoch:     s.epoch,
	}.Bytes()

	nonce := make([]byte, s.aead.NonceSize())
	buildNonce(nonce, s.epoch, s.seq)

	out := make([]byte, HeaderSize, HeaderSize+len(plaintext)+s.aead.Overhead())
	copy(out, hdr[:])
	out = s.aead.Seal(out, nonce, plaintext, hdr[:])

	s.seq++
	return out, nil
}

// Seq returns the next sequence number to be used.
func (s *Sender) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Epoch returns the current epoch.
func (s *Sender) Epoch() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// BumpEpoch advances to the next epoch and resets the sequence counter.
// Wrapping 255 back to 0 under the same key would reuse nonces, so it is
// refused; rotate keys with a new handshake instead.
func (s *Sender) BumpEpoch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == 255 {
		return ErrEpochExhausted
	}
	s.epoch++
	s.seq = 0
	return nil
}

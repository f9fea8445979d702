package frame

import (
	"crypto/cipher"
	"errors"
	"sync"

	"github.com/Kamalbura/secure-tunnel/tunnel/suite"
)

var (
	ErrVersionMismatch = errors.New("frame: wire version mismatch")
	ErrIDMismatch      = errors.New("frame: algorithm ID mismatch")
	ErrSessionMismatch = errors.New("frame: session ID mismatch")
	ErrEpochMismatch   = errors.New("frame: epoch mismatch")
	ErrAuthentication  = errors.New("frame: message authentication failed")
)

// ReceiverConfig configures one inbound direction of an established session.
type ReceiverConfig struct {
	Suite     suite.Suite
	SessionID [SessionIDSize]byte
	// Key is this direction's transport key from the handshake KDF.
	Key   []byte
	Epoch byte
	// Window is the anti-replay window width in packets. Zero means
	// DefaultWindow.
	Window int
}

// Receiver validates and opens inbound frames. It is safe for concurrent
// use.
type Receiver struct {
	mu        sync.Mutex
	aead      cipher.AEAD
	ids       [4]byte
	sessionID [SessionIDSize]byte
	epoch     byte
	win       *window
}

// NewReceiver builds a Receiver from handshake output.
func NewReceiver(cfg ReceiverConfig) (*Receiver, error) {
	size := cfg.Window
	if size == 0 {
		size = DefaultWindow
	}
	win, err := newWindow(size)
	if err != nil {
		return nil, err
	}
	aead, err := suite.NewAEAD(cfg.Suite.AEAD.Token, cfg.Key)
	if err != nil {
		return nil, err
	}
	return &Receiver{
		aead:      aead,
		ids:       cfg.Suite.HeaderIDs(),
		sessionID: cfg.SessionID,
		epoch:     cfg.Epoch,
		win:       win,
	}, nil
}

// Open validates the header, enforces the anti-replay window, reconstructs
// the nonce, and decrypts. Every failure is a typed error; classify with
// errors.Is. The replay window only records a sequence number after the
// frame authenticates, so spoofed headers cannot displace live sequence
// numbers.
func (r *Receiver) Open(wire []byte) ([]byte, error) {
	h, err := ParseHeader(wire)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h.Version != WireVersion {
		return nil, ErrVersionMismatch
	}
	if h.IDs != r.ids {
		return nil, ErrIDMismatch
	}
	if h.SessionID != r.sessionID {
		return nil, ErrSessionMismatch
	}
	if h.Epoch != r.epoch {
		return nil, ErrEpochMismatch
	}
	if err := r.win.check(h.Seq); err != nil {
		return nil, err
	}

	nonce := make([]byte, r.aead.NonceSize())
	buildNonce(nonce, h.Epoch, h.Seq)
	plaintext, err := r.aead.Open(nil, nonce, wire[HeaderSize:], wire[:HeaderSize])
	if err != nil {
		return nil, ErrAuthentication
	}

	r.win.commit(h.Seq)
	return plaintext, nil
}

// Epoch returns the epoch currently accepted.
func (r *Receiver) Epoch() byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

// BumpEpoch advances to the next epoch and clears the replay window.
// Wrapping 255 back to 0 under the same key is refused, as on the sender.
func (r *Receiver) BumpEpoch() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch == 255 {
		return ErrEpochExhausted
	}
	r.epoch++
	r.win.reset()
	return nil
}

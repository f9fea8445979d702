package handshake

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Kamalbura/secure-tunnel/tunnel/frame"
	"github.com/Kamalbura/secure-tunnel/tunnel/suite"
)

const (
	// maxMessageSize caps a single length-prefixed handshake message.
	// The largest legitimate payload is a Classic McEliece public key
	// (~1 MB); anything above this is an attack or a framing bug.
	maxMessageSize = 1 << 20

	// PSKSize is the required pre-shared key length. Shorter keys are
	// rejected rather than stretched.
	PSKSize = 32

	tagSize = sha256.Size
)

var (
	ErrSignature          = errors.New("handshake: server signature rejected")
	ErrPeerAuthentication = errors.New("handshake: peer authentication failed")
	ErrDowngrade          = errors.New("handshake: negotiated suite differs from requested")
	ErrMessageTooLarge    = errors.New("handshake: message exceeds size limit")
	ErrPSKSize            = errors.New("handshake: pre-shared key must be 32 bytes")
)

// Result holds the agreed session parameters. SendKey and RecvKey are the
// directional transport keys for this side; handing them to frame.NewSender
// and frame.NewReceiver completes the setup.
type Result struct {
	Suite     suite.Suite
	SessionID [sessionIDSize]byte
	SendKey   []byte
	RecvKey   []byte
}

// ServerConfig configures the ground-station side of the exchange.
type ServerConfig struct {
	// Suite to offer. The client aborts if it requested anything else.
	Suite suite.Suite

	// Signer holds the station's long-term signing key. Ed25519 private
	// keys satisfy this directly; HSM-backed keys plug in the same way.
	Signer crypto.Signer

	// PSK authenticates the drone. Must be exactly PSKSize bytes.
	PSK []byte
}

// ClientConfig configures the drone side of the exchange.
type ClientConfig struct {
	// Suite the drone requires. A hello offering a different KEM or
	// signature scheme is rejected as a downgrade.
	Suite suite.Suite

	// VerifyServer checks the station's signature over the hello
	// transcript. For an Ed25519 station key:
	//
	//	func(msg, sig []byte) bool { return ed25519.Verify(pub, msg, sig) }
	VerifyServer func(message, signature []byte) bool

	// PSK proves the drone's identity to the station. Must be exactly
	// PSKSize bytes.
	PSK []byte
}

// Server runs the ground-station side of the handshake over conn. It sends
// a signed hello carrying a fresh KEM public key, then authenticates the
// drone's reply against the PSK before decapsulating. The caller owns conn
// deadlines; a stalled peer is surfaced as an I/O error.
func Server(conn io.ReadWriter, cfg ServerConfig) (*Result, error) {
	if len(cfg.PSK) != PSKSize {
		return nil, ErrPSKSize
	}
	if cfg.Signer == nil {
		return nil, errors.New("handshake: nil signer")
	}
	k, err := newKEM(cfg.Suite.KEM.Name)
	if err != nil {
		return nil, err
	}
	pub, err := k.Generate()
	if err != nil {
		return nil, err
	}

	hello := ServerHello{
		Version:   frame.WireVersion,
		KEMName:   cfg.Suite.KEM.Name,
		SigName:   cfg.Suite.Signature.Name,
		KEMPublic: pub,
	}
	if _, err := rand.Read(hello.SessionID[:]); err != nil {
		return nil, err
	}
	if _, err := rand.Read(hello.Challenge[:]); err != nil {
		return nil, err
	}
	sig, err := cfg.Signer.Sign(rand.Reader, hello.transcript(), crypto.Hash(0))
	if err != nil {
		return nil, fmt.Errorf("handshake: sign hello: %w", err)
	}
	hello.Signature = sig

	wire := hello.marshal()
	if err := writeMessage(conn, wire); err != nil {
		return nil, err
	}

	kemCT, err := readMessage(conn)
	if err != nil {
		return nil, err
	}
	tag := make([]byte, tagSize)
	if _, err := io.ReadFull(conn, tag); err != nil {
		return nil, fmt.Errorf("handshake: read auth tag: %w", err)
	}
	mac := hmac.New(sha256.New, cfg.PSK)
	mac.Write(wire)
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return nil, ErrPeerAuthentication
	}

	shared, err := k.Decapsulate(kemCT)
	if err != nil {
		return nil, fmt.Errorf("handshake: decapsulate: %w", err)
	}
	droneToGCS, gcsToDrone, err := suite.DeriveTransportKeys(shared, hello.SessionID, hello.KEMName, hello.SigName)
	if err != nil {
		return nil, err
	}
	return &Result{
		Suite:     cfg.Suite,
		SessionID: hello.SessionID,
		SendKey:   gcsToDrone,
		RecvKey:   droneToGCS,
	}, nil
}

// Client runs the drone side of the handshake over conn. It verifies the
// station's signature over the hello transcript, refuses any suite other
// than the one requested, encapsulates to the station's KEM key, and proves
// possession of the PSK by MACing the exact hello bytes it received.
func Client(conn io.ReadWriter, cfg ClientConfig) (*Result, error) {
	if len(cfg.PSK) != PSKSize {
		return nil, ErrPSKSize
	}
	if cfg.VerifyServer == nil {
		return nil, errors.New("handshake: nil server verifier")
	}

	wire, err := readMessage(conn)
	if err != nil {
		return nil, err
	}
	hello, err := parseServerHello(wire)
	if err != nil {
		return nil, err
	}
	if hello.Version != frame.WireVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersion, hello.Version, frame.WireVersion)
	}
	if !cfg.VerifyServer(hello.transcript(), hello.Signature) {
		return nil, ErrSignature
	}
	if hello.KEMName != cfg.Suite.KEM.Name || hello.SigName != cfg.Suite.Signature.Name {
		return nil, fmt.Errorf("%w: server offered %s/%s", ErrDowngrade, hello.KEMName, hello.SigName)
	}

	k, err := newKEM(hello.KEMName)
	if err != nil {
		return nil, err
	}
	kemCT, shared, err := k.Encapsulate(hello.KEMPublic)
	if err != nil {
		return nil, fmt.Errorf("handshake: encapsulate: %w", err)
	}

	if err := writeMessage(conn, kemCT); err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, cfg.PSK)
	mac.Write(wire)
	if _, err := conn.Write(mac.Sum(nil)); err != nil {
		return nil, fmt.Errorf("handshake: write auth tag: %w", err)
	}

	droneToGCS, gcsToDrone, err := suite.DeriveTransportKeys(shared, hello.SessionID, hello.KEMName, hello.SigName)
	if err != nil {
		return nil, err
	}
	return &Result{
		Suite:     cfg.Suite,
		SessionID: hello.SessionID,
		SendKey:   droneToGCS,
		RecvKey:   gcsToDrone,
	}, nil
}

func writeMessage(w io.Writer, msg []byte) error {
	if len(msg) > maxMessageSize {
		return ErrMessageTooLarge
	}
	buf := make([]byte, 4+len(msg))
	binary.BigEndian.PutUint32(buf, uint32(len(msg)))
	copy(buf[4:], msg)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("handshake: write message: %w", err)
	}
	return nil
}

func readMessage(r io.Reader) ([]byte, error) {
	var lb [4]byte
	if _, err := io.ReadFull(r, lb[:]); err != nil {
		return nil, fmt.Errorf("handshake: read length: %w", err)
	}
	n := binary.BigEndian.Uint32(lb[:])
	if n == 0 || n > maxMessageSize {
		return nil, ErrMessageTooLarge
	}
	msg := make([]byte, n)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, fmt.Errorf("handshake: read message: %w", err)
	}
	return msg, nil
}

package tunnel

import (
	"errors"

	"github.com/Kamalbura/secure-tunnel/tunnel/frame"
	"github.com/Kamalbura/secure-tunnel/tunnel/handshake"
	"github.com/Kamalbura/secure-tunnel/tunnel/payload"
)

// Config tunes an Endpoint. The zero value is a working default.
type Config struct {
	// Compress runs payloads through the LZ4 codec inside the encrypted
	// envelope. Both ends of the session must agree on this setting.
	Compress bool

	// Window overrides the receiver's anti-replay window width. Zero
	// means frame.DefaultWindow.
	Window int

	// RekeyThreshold caps the sender's sequence counter. Zero means
	// frame.DefaultRekeyThreshold.
	RekeyThreshold uint64
}

// Endpoint is one side of an established session.
type Endpoint struct {
	sender   *frame.Sender
	receiver *frame.Receiver
	compress bool
	counters Counters
}

// New wires handshake output into a working endpoint.
func New(cfg Config, hs handshake.Result) (*Endpoint, error) {
	sender, err := frame.NewSender(frame.SenderConfig{
		Suite:          hs.Suite,
		SessionID:      hs.SessionID,
		Key:            hs.SendKey,
		RekeyThreshold: cfg.RekeyThreshold,
	})
	if err != nil {
		return nil, err
	}
	receiver, err := frame.NewReceiver(frame.ReceiverConfig{
		Suite:     hs.Suite,
		SessionID: hs.SessionID,
		Key:       hs.RecvKey,
		Window:    cfg.Window,
	})
	if err != nil {
		return nil, err
	}
	return &Endpoint{sender: sender, receiver: receiver, compress: cfg.Compress}, nil
}

// Seal encrypts one outbound payload into a wire frame.
func (e *Endpoint) Seal(plaintext []byte) ([]byte, error) {
	p := plaintext
	if e.compress {
		p = payload.Encode(plaintext)
	}
	wire, err := e.sender.Seal(p)
	if err != nil {
		return nil, err
	}
	e.counters.SealedFrames.Add(1)
	e.counters.SealedBytes.Add(uint64(len(wire)))
	return wire, nil
}

// Open authenticates and decrypts one inbound wire frame. Failures are
// counted by rejection stage and returned as the frame layer's typed
// errors.
func (e *Endpoint) Open(wire []byte) ([]byte, error) {
	p, err := e.receiver.Open(wire)
	if err != nil {
		e.countDrop(err)
		return nil, err
	}
	if e.compress {
		p, err = payload.Decode(p)
		if err != nil {
			e.counters.DropPayload.Add(1)
			return nil, err
		}
	}
	e.counters.OpenedFrames.Add(1)
	e.counters.OpenedBytes.Add(uint64(len(wire)))
	return p, nil
}

// Counters exposes the endpoint's traffic totals.
func (e *Endpoint) Counters() *Counters {
	return &e.counters
}

// Epochs returns the current outbound and inbound epoch numbers.
func (e *Endpoint) Epochs() (send, recv byte) {
	return e.sender.Epoch(), e.receiver.Epoch()
}

// RotateEpoch advances both directions' epochs and resets the replay
// window. Both peers must rotate at an agreed point in the traffic;
// frames from the previous epoch are rejected afterwards.
func (e *Endpoint) RotateEpoch() error {
	if err := e.sender.BumpEpoch(); err != nil {
		return err
	}
	return e.receiver.BumpEpoch()
}

func (e *Endpoint) countDrop(err error) {
	switch {
	case errors.Is(err, frame.ErrReplay):
		e.counters.DropReplay.Add(1)
	case errors.Is(err, frame.ErrAuthentication):
		e.counters.DropAuth.Add(1)
	case errors.Is(err, frame.ErrSessionMismatch):
		e.counters.DropSession.Add(1)
	case errors.Is(err, frame.ErrEpochMismatch):
		e.counters.DropEpoch.Add(1)
	default:
		e.counters.DropHeader.Add(1)
	}
}

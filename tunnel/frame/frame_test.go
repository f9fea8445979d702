package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Kamalbura/secure-tunnel/tunnel/suite"
)

func testSuite(t *testing.T, aeadToken string) suite.Suite {
	t.Helper()
	s, err := suite.Compose("mlkem768", aeadToken, "mldsa65")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testPair(t *testing.T, aeadToken string) (*Sender, *Receiver) {
	t.Helper()
	s := testSuite(t, aeadToken)
	key := bytes.Repeat([]byte{0x2a}, suite.TransportKeySize)
	session := [SessionIDSize]byte{0xde, 0xad, 0xbe, 0xef, 1, 2, 3, 4}

	snd, err := NewSender(SenderConfig{Suite: s, SessionID: session, Key: key})
	if err != nil {
		t.Fatal(err)
	}
	rcv, err := NewReceiver(ReceiverConfig{Suite: s, SessionID: session, Key: key})
	if err != nil {
		t.Fatal(err)
	}
	return snd, rcv
}

func TestSealOpenAcrossCiphers(t *testing.T) {
	for _, token := range []string{suite.TokenAESGCM, suite.TokenChaCha20Poly1305, suite.TokenAscon128a} {
		t.Run(token, func(t *testing.T) {
			snd, rcv := testPair(t, token)

			payloads := [][]byte{
				nil,
				[]byte("x"),
				[]byte("MAVLink HEARTBEAT #17"),
				bytes.Repeat([]byte{0x5c}, 1200),
			}
			for i, p := range payloads {
				wire, err := snd.Seal(p)
				if err != nil {
					t.Fatalf("Seal #%d: %v", i, err)
				}
				if len(wire) != HeaderSize+len(p)+16 {
					t.Fatalf("wire length = %d, want %d", len(wire), HeaderSize+len(p)+16)
				}
				h, err := ParseHeader(wire)
				if err != nil {
					t.Fatal(err)
				}
				if h.Version != WireVersion || h.Seq != uint64(i) || h.Epoch != 0 {
					t.Fatalf("header = %+v", h)
				}
				got, err := rcv.Open(wire)
				if err != nil {
					t.Fatalf("Open #%d: %v", i, err)
				}
				if !bytes.Equal(got, p) {
					t.Fatalf("payload #%d mismatch", i)
				}
			}
		})
	}
}

func TestReplayRejected(t *testing.T) {
	snd, rcv := testPair(t, suite.TokenAESGCM)

	wire, err := snd.Seal([]byte("once"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rcv.Open(wire); err != nil {
		t.Fatal(err)
	}
	if _, err := rcv.Open(wire); !errors.Is(err, ErrReplay) {
		t.Fatalf("replay: err = %v, want ErrReplay", err)
	}
}

func TestReorderedDelivery(t *testing.T) {
	snd, rcv := testPair(t, suite.TokenChaCha20Poly1305)

	var wires [][]byte
	for i := 0; i < 5; i++ {
		w, err := snd.Seal([]byte{byte(i)})
		if err != nil {
			t.Fatal(err)
		}
		wires = append(wires, w)
	}
	for _, i := range []int{4, 1, 3, 0, 2} {
		got, err := rcv.Open(wires[i])
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if got[0] != byte(i) {
			t.Fatalf("frame %d: wrong payload", i)
		}
	}
}

func TestTamperingDoesNotBurnSequence(t *testing.T) {
	snd, rcv := testPair(t, suite.TokenAscon128a)

	wire, err := snd.Seal([]byte("guidance update"))
	if err != nil {
		t.Fatal(err)
	}

	tampered := append([]byte(nil), wire...)
	tampered[len(tampered)-1] ^= 0x01
	if _, err := rcv.Open(tampered); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("tampered frame: err = %v, want ErrAuthentication", err)
	}

	// the genuine frame with the same sequence number must still open
	if _, err := rcv.Open(wire); err != nil {
		t.Fatalf("genuine frame after forgery attempt: %v", err)
	}
}

func TestHeaderValidation(t *testing.T) {
	snd, rcv := testPair(t, suite.TokenAESGCM)

	wire, err := snd.Seal([]byte("probe"))
	if err != nil {
		t.Fatal(err)
	}

	mutate := func(f func(w []byte)) []byte {
		w := append([]byte(nil), wire...)
		f(w)
		return w
	}

	cases := []struct {
		name string
		wire []byte
		want error
	}{
		{"short wire", wire[:HeaderSize-1], ErrHeaderTooShort},
		{"version", mutate(func(w []byte) { w[0] = 2 }), ErrVersionMismatch},
		{"kem id", mutate(func(w []byte) { w[1] = 9 }), ErrIDMismatch},
		{"sig param", mutate(func(w []byte) { w[4] = 9 }), ErrIDMismatch},
		{"session", mutate(func(w []byte) { w[5] ^= 0xff }), ErrSessionMismatch},
		{"epoch", mutate(func(w []byte) { w[21] = 7 }), ErrEpochMismatch},
	}
	for _, tc := range cases {
		if _, err := rcv.Open(tc.wire); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	// untouched frame still opens after all those rejections
	if _, err := rcv.Open(wire); err != nil {
		t.Fatalf("clean frame: %v", err)
	}
}

func TestRekeyThreshold(t *testing.T) {
	s := testSuite(t, suite.TokenAESGCM)
	key := bytes.Repeat([]byte{0x2a}, suite.TransportKeySize)

	snd, err := NewSender(SenderConfig{Suite: s, Key: key, RekeyThreshold: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := snd.Seal([]byte("t")); err != nil {
			t.Fatalf("seal %d: %v", i, err)
		}
	}
	if _, err := snd.Seal([]byte("t")); !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("past threshold: err = %v, want ErrSequenceExhausted", err)
	}
	// and it stays exhausted
	if _, err := snd.Seal([]byte("t")); !errors.Is(err, ErrSequenceExhausted) {
		t.Fatal("sender recovered without rekey")
	}
}

func TestEpochBump(t *testing.T) {
	snd, rcv := testPair(t, suite.TokenAESGCM)

	before, err := snd.Seal([]byte("epoch 0"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rcv.Open(before); err != nil {
		t.Fatal(err)
	}

	if err := snd.BumpEpoch(); err != nil {
		t.Fatal(err)
	}
	if err := rcv.BumpEpoch(); err != nil {
		t.Fatal(err)
	}
	if snd.Seq() != 0 {
		t.Fatalf("seq after bump = %d, want 0", snd.Seq())
	}

	// sequence numbers restart without tripping the replay window
	after, err := snd.Seal([]byte("epoch 1"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := rcv.Open(after)
	if err != nil {
		t.Fatalf("first frame of new epoch: %v", err)
	}
	if !bytes.Equal(got, []byte("epoch 1")) {
		t.Fatal("payload mismatch after epoch bump")
	}

	// frames from the previous epoch no longer match
	if _, err := rcv.Open(before); !errors.Is(err, ErrEpochMismatch) {
		t.Fatalf("old epoch frame: err = %v, want ErrEpochMismatch", err)
	}
}

func TestEpochWrapRefused(t *testing.T) {
	s := testSuite(t, suite.TokenAESGCM)
	key := bytes.Repeat([]byte{0x2a}, suite.TransportKeySize)

	snd, err := NewSender(SenderConfig{Suite: s, Key: key, Epoch: 255})
	if err != nil {
		t.Fatal(err)
	}
	if err := snd.BumpEpoch(); !errors.Is(err, ErrEpochExhausted) {
		t.Fatalf("sender wrap: err = %v, want ErrEpochExhausted", err)
	}

	rcv, err := NewReceiver(ReceiverConfig{Suite: s, Key: key, Epoch: 255})
	if err != nil {
		t.Fatal(err)
	}
	if err := rcv.BumpEpoch(); !errors.Is(err, ErrEpochExhausted) {
		t.Fatalf("receiver wrap: err = %v, want ErrEpochExhausted", err)
	}
}

func TestWrongKeyFailsClosed(t *testing.T) {
	s := testSuite(t, suite.TokenAscon128a)
	session := [SessionIDSize]byte{1}

	snd, err := NewSender(SenderConfig{
		Suite: s, SessionID: session,
		Key: bytes.Repeat([]byte{0x2a}, suite.TransportKeySize),
	})
	if err != nil {
		t.Fatal(err)
	}
	rcv, err := NewReceiver(ReceiverConfig{
		Suite: s, SessionID: session,
		Key: bytes.Repeat([]byte{0x2b}, suite.TransportKeySize),
	})
	if err != nil {
		t.Fatal(err)
	}

	wire, err := snd.Seal([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rcv.Open(wire); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("cross-key frame: err = %v, want ErrAuthentication", err)
	}
}

func TestReceiverWindowBounds(t *testing.T) {
	s := testSuite(t, suite.TokenAESGCM)
	key := bytes.Repeat([]byte{0x2a}, suite.TransportKeySize)

	if _, err := NewReceiver(ReceiverConfig{Suite: s, Key: key, Window: 32}); !errors.Is(err, ErrWindowSize) {
		t.Fatalf("window 32: err = %v, want ErrWindowSize", err)
	}
	if _, err := NewReceiver(ReceiverConfig{Suite: s, Key: key, Window: MaxWindow + 1}); !errors.Is(err, ErrWindowSize) {
		t.Fatalf("window too large: err = %v, want ErrWindowSize", err)
	}
}

func BenchmarkSealFrame(b *testing.B) {
	s, _ := suite.Compose("mlkem768", "aesgcm", "mldsa65")
	snd, _ := NewSender(SenderConfig{Suite: s, Key: make([]byte, suite.TransportKeySize)})
	payload := make([]byte, 1200)
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := snd.Seal(payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkOpenFrame(b *testing.B) {
	s, _ := suite.Compose("mlkem768", "ascon128a", "mldsa65")
	key := make([]byte, suite.TransportKeySize)
	snd, _ := NewSender(SenderConfig{Suite: s, Key: key})
	payload := make([]byte, 1200)

	wires := make([][]byte, b.N)
	for i := range wires {
		w, err := snd.Seal(payload)
		if err != nil {
			b.Fatal(err)
		}
		wires[i] = w
	}
	rcv, _ := NewReceiver(ReceiverConfig{Suite: s, Key: key, Window: MaxWindow})
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rcv.Open(wires[i]); err != nil {
			b.Fatal(err)
		}
	}
}

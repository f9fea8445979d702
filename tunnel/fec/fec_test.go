package fec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func testPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i * 31)
	}
	return p
}

func TestProtectRecoverAllShards(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	payload := testPayload(997)
	datagrams, err := c.Protect(7, payload)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if len(datagrams) != 6 {
		t.Fatalf("got %d datagrams, want 6", len(datagrams))
	}
	// 997 bytes over 4 data shards pads to 250 per shard.
	for i, d := range datagrams {
		if len(d) != ShardHeaderSize+250 {
			t.Fatalf("datagram %d: %d bytes, want %d", i, len(d), ShardHeaderSize+250)
		}
	}

	got, err := c.Recover(datagrams)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("recovered payload does not match original")
	}
}

func TestRecoverFromLoss(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	payload := testPayload(997)
	datagrams, err := c.Protect(7, payload)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	// Every single and double loss pattern must recover.
	for i := 0; i < len(datagrams); i++ {
		for j := i; j < len(datagrams); j++ {
			kept := make([][]byte, 0, len(datagrams))
			for k, d := range datagrams {
				if k == i || k == j {
					continue
				}
				kept = append(kept, d)
			}
			got, err := c.Recover(kept)
			if err != nil {
				t.Fatalf("drop {%d,%d}: %v", i, j, err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("drop {%d,%d}: payload mismatch", i, j)
			}
		}
	}
}

func TestTooManyLost(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	datagrams, err := c.Protect(1, testPayload(512))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	if _, err := c.Recover(datagrams[:3]); !errors.Is(err, ErrTooManyLost) {
		t.Fatalf("err = %v, want ErrTooManyLost", err)
	}
	if _, err := c.Recover(nil); !errors.Is(err, ErrTooManyLost) {
		t.Fatalf("no shards: err = %v, want ErrTooManyLost", err)
	}
}

func TestRecoverOutOfOrderWithDuplicates(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	payload := testPayload(300)
	datagrams, err := c.Protect(42, payload)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	arrived := [][]byte{
		datagrams[5], datagrams[2], datagrams[2], datagrams[0],
		datagrams[4], datagrams[0], datagrams[1],
	}
	got, err := c.Recover(arrived)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch")
	}
}

func TestGroupMismatchDetected(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	a, err := c.Protect(1, testPayload(400))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	b, err := c.Protect(2, testPayload(400))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	mixed := [][]byte{a[0], a[1], b[2], a[3]}
	if _, err := c.Recover(mixed); !errors.Is(err, ErrGroupMismatch) {
		t.Fatalf("err = %v, want ErrGroupMismatch", err)
	}
}

func TestShardValidation(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	datagrams, err := c.Protect(9, testPayload(512))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	if _, err := c.Recover([][]byte{datagrams[0][:ShardHeaderSize-1]}); !errors.Is(err, ErrShardTooShort) {
		t.Fatalf("short shard: err = %v, want ErrShardTooShort", err)
	}

	flagged := append([]byte(nil), datagrams[0]...)
	flagged[11] = 0x80
	if _, err := c.Recover([][]byte{flagged}); !errors.Is(err, ErrShardHeader) {
		t.Fatalf("reserved flags: err = %v, want ErrShardHeader", err)
	}

	badIndex := append([]byte(nil), datagrams[0]...)
	badIndex[4] = 6
	if _, err := c.Recover([][]byte{badIndex}); !errors.Is(err, ErrShardHeader) {
		t.Fatalf("index out of range: err = %v, want ErrShardHeader", err)
	}

	other, err := NewCodec(5, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if _, err := other.Recover(datagrams); !errors.Is(err, ErrShardHeader) {
		t.Fatalf("geometry mismatch: err = %v, want ErrShardHeader", err)
	}

	// Zeroed length claim on every shard parses but cannot describe a
	// frame.
	zeroLen := make([][]byte, len(datagrams))
	for i, d := range datagrams {
		cp := append([]byte(nil), d...)
		binary.BigEndian.PutUint32(cp[7:11], 0)
		zeroLen[i] = cp
	}
	if _, err := c.Recover(zeroLen); !errors.Is(err, ErrShardHeader) {
		t.Fatalf("zero length: err = %v, want ErrShardHeader", err)
	}
}

func TestTinyPayload(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	payload := []byte{0xaa, 0xbb, 0xcc}
	datagrams, err := c.Protect(3, payload)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	got, err := c.Recover(datagrams[2:])
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %x, want %x", got, payload)
	}
}

func TestConfigRejected(t *testing.T) {
	for _, tc := range [][2]int{{0, 2}, {4, 0}, {-1, 2}, {200, 56}} {
		if _, err := NewCodec(tc[0], tc[1]); !errors.Is(err, ErrCodecConfig) {
			t.Fatalf("NewCodec(%d, %d): err = %v, want ErrCodecConfig", tc[0], tc[1], err)
		}
	}

	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if _, err := c.Protect(1, nil); !errors.Is(err, ErrPayloadSize) {
		t.Fatalf("empty payload: err = %v, want ErrPayloadSize", err)
	}
}

func TestShardGroupPeek(t *testing.T) {
	c, err := NewCodec(2, 1)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	datagrams, err := c.Protect(0xdeadbeef, testPayload(64))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	for i, d := range datagrams {
		g, err := ShardGroup(d)
		if err != nil {
			t.Fatalf("shard %d: %v", i, err)
		}
		if g != 0xdeadbeef {
			t.Fatalf("shard %d: group %#x", i, g)
		}
	}
	if _, err := ShardGroup([]byte{1, 2, 3}); !errors.Is(err, ErrShardTooShort) {
		t.Fatalf("err = %v, want ErrShardTooShort", err)
	}
}

func TestOverhead(t *testing.T) {
	c, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if got := c.Overhead(); got != 1.5 {
		t.Fatalf("Overhead() = %v, want 1.5", got)
	}
}

func BenchmarkProtect(b *testing.B) {
	c, err := NewCodec(4, 2)
	if err != nil {
		b.Fatal(err)
	}
	payload := testPayload(1200)
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Protect(uint32(i), payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecoverWithLoss(b *testing.B) {
	c, err := NewCodec(4, 2)
	if err != nil {
		b.Fatal(err)
	}
	payload := testPayload(1200)
	datagrams, err := c.Protect(1, payload)
	if err != nil {
		b.Fatal(err)
	}
	lossy := [][]byte{datagrams[1], datagrams[2], datagrams[3], datagrams[4]}
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Recover(lossy); err != nil {
			b.Fatal(err)
		}
	}
}

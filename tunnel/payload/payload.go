package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

const (
	flagRaw byte = 0x00
	flagLZ4 byte = 0x01

	// minCompressSize is the smallest payload worth attempting to
	// compress. Below this the LZ4 frame overhead always loses.
	minCompressSize = 64
)

// MaxDecodedSize bounds the decompressed size Decode will produce,
// regardless of what the compressed body claims.
const MaxDecodedSize = 1 << 20

var (
	ErrPayloadTooShort = errors.New("payload: encoded payload too short")
	ErrPayloadCorrupt  = errors.New("payload: corrupt payload")
	ErrPayloadTooLarge = errors.New("payload: decoded payload exceeds size limit")
)

var encoderPool = sync.Pool{
	New: func() interface{} {
		return lz4.NewWriter(nil)
	},
}

var decoderPool = sync.Pool{
	New: func() interface{} {
		return lz4.NewReader(nil)
	},
}

// Encode prepares p for sealing. The result is p prefixed with the raw
// flag, or an LZ4 body prefixed with the compressed flag, whichever is
// smaller. Payloads larger than MaxDecodedSize are never compressed, so
// anything Encode emits is always decodable.
func Encode(p []byte) []byte {
	if len(p) >= minCompressSize && len(p) <= MaxDecodedSize {
		var buf bytes.Buffer
		buf.Grow(len(p) + 1)
		buf.WriteByte(flagLZ4)

		w := encoderPool.Get().(*lz4.Writer)
		w.Reset(&buf)
		_ = w.Apply(lz4.CompressionLevelOption(lz4.Fast))
		_, werr := w.Write(p)
		cerr := w.Close()
		encoderPool.Put(w)

		if werr == nil && cerr == nil && buf.Len() < 1+len(p) {
			return buf.Bytes()
		}
	}

	out := make([]byte, 1+len(p))
	out[0] = flagRaw
	copy(out[1:], p)
	return out
}

// Decode reverses Encode. The returned slice never aliases enc.
func Decode(enc []byte) ([]byte, error) {
	if len(enc) == 0 {
		return nil, ErrPayloadTooShort
	}
	body := enc[1:]

	switch enc[0] {
	case flagRaw:
		return append([]byte(nil), body...), nil

	case flagLZ4:
		r := decoderPool.Get().(*lz4.Reader)
		defer decoderPool.Put(r)
		r.Reset(bytes.NewReader(body))

		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(r, MaxDecodedSize+1))
		if err != nil {
			return nil, ErrPayloadCorrupt
		}
		if n > MaxDecodedSize {
			return nil, ErrPayloadTooLarge
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("%w: unknown flag 0x%02x", ErrPayloadCorrupt, enc[0])
	}
}

package fec

import (
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/reedsolomon"
)

// MaxShards is the most shards one group can carry; the data and parity
// counts each travel in a single header byte.
const MaxShards = 255

var (
	ErrCodecConfig = errors.New("fec: invalid data/parity configuration")
	ErrPayloadSize = errors.New("fec: payload size out of range")
	ErrTooManyLost = errors.New("fec: too many shards lost")
)

// Codec splits sealed frames into shard datagrams and rebuilds them.
// A Codec is safe for concurrent use.
type Codec struct {
	enc    reedsolomon.Encoder
	data   int
	parity int
}

// NewCodec builds a codec that survives the loss of up to parityShards
// datagrams per group.
func NewCodec(dataShards, parityShards int) (*Codec, error) {
	if dataShards < 1 || parityShards < 1 || dataShards+parityShards > MaxShards {
		return nil, ErrCodecConfig
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, err
	}
	return &Codec{enc: enc, data: dataShards, parity: parityShards}, nil
}

func (c *Codec) DataShards() int   { return c.data }
func (c *Codec) ParityShards() int { return c.parity }
func (c *Codec) TotalShards() int  { return c.data + c.parity }

// Overhead returns the wire expansion ratio, shard headers excluded.
func (c *Codec) Overhead() float64 {
	return float64(c.TotalShards()) / float64(c.data)
}

// Protect splits one sealed frame into TotalShards datagrams. group ties
// the shards together on the receive side; the sender bumps it per frame.
func (c *Codec) Protect(group uint32, sealed []byte) ([][]byte, error) {
	if len(sealed) == 0 || uint64(len(sealed)) > math.MaxUint32 {
		return nil, ErrPayloadSize
	}
	shards, err := c.enc.Split(sealed)
	if err != nil {
		return nil, err
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, err
	}

	out := make([][]byte, len(shards))
	for i, body := range shards {
		d := make([]byte, ShardHeaderSize+len(body))
		shardHeader{
			Group:   group,
			Index:   i,
			Data:    c.data,
			Parity:  c.parity,
			OrigLen: len(sealed),
		}.encode(d)
		copy(d[ShardHeaderSize:], body)
		out[i] = d
	}
	return out, nil
}

// Recover rebuilds the sealed frame from whichever of a group's datagrams
// arrived. Order does not matter and duplicates are tolerated; any
// DataShards distinct shards suffice. All datagrams must belong to the
// same group and match the codec's geometry.
func (c *Codec) Recover(datagrams [][]byte) ([]byte, error) {
	if len(datagrams) == 0 {
		return nil, ErrTooManyLost
	}

	total := c.data + c.parity
	shards := make([][]byte, total)
	var (
		first     shardHeader
		shardSize int
		haveFirst bool
	)
	for _, d := range datagrams {
		h, body, err := parseShard(d)
		if err != nil {
			return nil, err
		}
		if h.Data != c.data || h.Parity != c.parity {
			return nil, fmt.Errorf("%w: shard geometry %d+%d, codec %d+%d", ErrShardHeader, h.Data, h.Parity, c.data, c.parity)
		}
		if !haveFirst {
			first = h
			shardSize = len(body)
			haveFirst = true
		} else {
			if h.Group != first.Group {
				return nil, fmt.Errorf("%w: %d and %d", ErrGroupMismatch, first.Group, h.Group)
			}
			if h.OrigLen != first.OrigLen || len(body) != shardSize {
				return nil, fmt.Errorf("%w: inconsistent shard metadata in group %d", ErrShardHeader, h.Group)
			}
		}
		if shards[h.Index] == nil {
			shards[h.Index] = body
		}
	}
	if shardSize == 0 || first.OrigLen <= 0 || first.OrigLen > c.data*shardSize {
		return nil, fmt.Errorf("%w: length %d does not fit %d data shards of %d bytes", ErrShardHeader, first.OrigLen, c.data, shardSize)
	}

	missing := false
	for i := 0; i < c.data; i++ {
		if shards[i] == nil {
			missing = true
			break
		}
	}
	if missing {
		if err := c.enc.ReconstructData(shards); err != nil {
			if errors.Is(err, reedsolomon.ErrTooFewShards) {
				return nil, ErrTooManyLost
			}
			return nil, err
		}
	}

	out := make([]byte, 0, first.OrigLen)
	for i := 0; i < c.data && len(out) < first.OrigLen; i++ {
		remaining := first.OrigLen - len(out)
		if remaining >= len(shards[i]) {
			out = append(out, shards[i]...)
		} else {
			out = append(out, shards[i][:remaining]...)
		}
	}
	return out, nil
}

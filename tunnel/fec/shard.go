package fec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ShardHeaderSize is the per-datagram overhead added by Protect.
//
// Layout:
//
//	group (4, BE) || index (1) || data (1) || parity (1) || orig_len (4, BE) || flags (1)
//
// flags is reserved and must be zero.
const ShardHeaderSize = 12

var (
	ErrShardTooShort = errors.New("fec: shard shorter than header")
	ErrShardHeader   = errors.New("fec: bad shard header")
	ErrGroupMismatch = errors.New("fec: shards from different groups")
)

type shardHeader struct {
	Group   uint32
	Index   int
	Data    int
	Parity  int
	OrigLen int
}

func (h shardHeader) encode(dst []byte) {
	binary.BigEndian.PutUint32(dst[0:4], h.Group)
	dst[4] = byte(h.Index)
	dst[5] = byte(h.Data)
	dst[6] = byte(h.Parity)
	binary.BigEndian.PutUint32(dst[7:11], uint32(h.OrigLen))
	dst[11] = 0
}

func parseShard(datagram []byte) (shardHeader, []byte, error) {
	if len(datagram) < ShardHeaderSize {
		return shardHeader{}, nil, ErrShardTooShort
	}
	h := shardHeader{
		Group:   binary.BigEndian.Uint32(datagram[0:4]),
		Index:   int(datagram[4]),
		Data:    int(datagram[5]),
		Parity:  int(datagram[6]),
		OrigLen: int(binary.BigEndian.Uint32(datagram[7:11])),
	}
	if flags := datagram[11]; flags != 0 {
		return shardHeader{}, nil, fmt.Errorf("%w: reserved flags 0x%02x", ErrShardHeader, flags)
	}
	if h.Data < 1 || h.Parity < 1 || h.Index >= h.Data+h.Parity {
		return shardHeader{}, nil, fmt.Errorf("%w: index %d of %d+%d", ErrShardHeader, h.Index, h.Data, h.Parity)
	}
	return h, datagram[ShardHeaderSize:], nil
}

// ShardGroup reads the group number from a shard datagram without parsing
// the rest of the header. Receivers use it to bucket arrivals by frame
// before handing a bucket to Recover.
func ShardGroup(datagram []byte) (uint32, error) {
	if len(datagram) < ShardHeaderSize {
		return 0, ErrShardTooShort
	}
	return binary.BigEndian.Uint32(datagram[0:4]), nil
}

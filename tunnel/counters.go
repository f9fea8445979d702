package tunnel

import "sync/atomic"

// Counters tracks one endpoint's traffic totals. All fields may be read
// while the endpoint is in use; Snapshot copies them out as plain values.
type Counters struct {
	SealedFrames atomic.Uint64
	SealedBytes  atomic.Uint64
	OpenedFrames atomic.Uint64
	OpenedBytes  atomic.Uint64

	// Drops, by the stage that rejected the frame.
	DropHeader  atomic.Uint64
	DropSession atomic.Uint64
	DropEpoch   atomic.Uint64
	DropReplay  atomic.Uint64
	DropAuth    atomic.Uint64
	DropPayload atomic.Uint64
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	SealedFrames uint64
	SealedBytes  uint64
	OpenedFrames uint64
	OpenedBytes  uint64

	DropHeader  uint64
	DropSession uint64
	DropEpoch   uint64
	DropReplay  uint64
	DropAuth    uint64
	DropPayload uint64
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		SealedFrames: c.SealedFrames.Load(),
		SealedBytes:  c.SealedBytes.Load(),
		OpenedFrames: c.OpenedFrames.Load(),
		OpenedBytes:  c.OpenedBytes.Load(),
		DropHeader:   c.DropHeader.Load(),
		DropSession:  c.DropSession.Load(),
		DropEpoch:    c.DropEpoch.Load(),
		DropReplay:   c.DropReplay.Load(),
		DropAuth:     c.DropAuth.Load(),
		DropPayload:  c.DropPayload.Load(),
	}
}

// Dropped returns the total number of rejected inbound frames.
func (s Snapshot) Dropped() uint64 {
	return s.DropHeader + s.DropSession + s.DropEpoch + s.DropReplay + s.DropAuth + s.DropPayload
}

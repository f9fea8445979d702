package frame

import "errors"

// Replay window bounds. The window must be wide enough to absorb radio-link
// reordering but small enough to keep per-packet cost flat.
const (
	MinWindow     = 64
	MaxWindow     = 8192
	DefaultWindow = 1024
)

var (
	ErrWindowSize = errors.New("frame: replay window out of range")
	ErrReplay     = errors.New("frame: replayed or stale sequence")
)

// window is a sliding anti-replay bitmap over sequence numbers. Bit p
// records whether sequence high-p has been accepted. check is read-only;
// commit mutates. Keeping the two apart lets the receiver authenticate a
// frame before its sequence number is consumed.
type window struct {
	size int
	high uint64
	seen bool // false until the first commit
	bits []uint64
}

func newWindow(size int) (*window, error) {
	if size < MinWindow || size > MaxWindow {
		return nil, ErrWindowSize
	}
	return &window{
		size: size,
		bits: make([]uint64, (size+63)/64),
	}, nil
}

// check reports whether seq is acceptable: not yet seen and not older than
// the window tail.
func (w *window) check(seq uint64) error {
	if !w.seen || seq > w.high {
		return nil
	}
	offset := w.high - seq
	if offset >= uint64(w.size) {
		return ErrReplay
	}
	if w.get(int(offset)) {
		return ErrReplay
	}
	return nil
}

// commit records seq as accepted. Callers must have cleared it with check
// under the same lock.
func (w *window) commit(seq uint64) {
	if !w.seen {
		w.seen = true
		w.high = seq
		w.set(0)
		return
	}
	if seq > w.high {
		w.shift(seq - w.high)
		w.high = seq
		w.set(0)
		return
	}
	w.set(int(w.high - seq))
}

// reset clears all replay state, for epoch changes.
func (w *window) reset() {
	w.seen = false
	w.high = 0
	for i := range w.bits {
		w.bits[i] = 0
	}
}

func (w *window) get(p int) bool {
	return w.bits[p/64]&(1<<uint(p%64)) != 0
}

func (w *window) set(p int) {
	w.bits[p/64] |= 1 << uint(p%64)
}

// shift slides the bitmap forward by k sequence numbers.
func (w *window) shift(k uint64) {
	if k >= uint64(w.size) {
		for i := range w.bits {
			w.bits[i] = 0
		}
		return
	}
	ws := int(k / 64)
	bs := uint(k % 64)
	for i := len(w.bits) - 1; i >= 0; i-- {
		var v uint64
		if i-ws >= 0 {
			v = w.bits[i-ws] << bs
			if bs > 0 && i-ws-1 >= 0 {
				v |= w.bits[i-ws-1] >> (64 - bs)
			}
		}
		w.bits[i] = v
	}
	if rem := uint(w.size % 64); rem != 0 {
		w.bits[len(w.bits)-1] &= (1 << rem) - 1
	}
}

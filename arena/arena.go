package arena

import (
	"math"

	"go.uber.org/zap"

	"github.com/embwasm/hostshim/errors"
)

// Ref is an offset into the arena's backing region.
type Ref = uint32

// Nil is the sentinel for "no allocation". Offset 0 is a valid allocation
// (the first byte of the backing region), so the sentinel lives at the top
// of the offset space instead.
const Nil Ref = math.MaxUint32

// Quantum is the allocation granularity. Every request is rounded up to a
// multiple of this, which also serves as the default alignment guarantee.
const Quantum = 8

// Arena is a bounded bump allocator. It is not safe for concurrent use;
// the platform layer assumes a single logical thread of control.
type Arena struct {
	data   []byte
	cursor uint32
	sizes  map[Ref]uint32
	logger *zap.Logger
}

// Option configures an Arena.
type Option func(*Arena)

// WithLogger sets the logger used for allocation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(a *Arena) {
		a.logger = l
	}
}

// New creates an arena with the given capacity in bytes. The backing region
// is allocated once, up front, and lives as long as the arena.
func New(capacity uint32, opts ...Option) *Arena {
	a := &Arena{
		data:   make([]byte, capacity),
		sizes:  make(map[Ref]uint32),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Alloc returns an offset to size bytes, rounding the request up to the
// allocation quantum. A zero-size request returns Nil without advancing the
// cursor. Exhaustion is reported as an error, never as a truncated range.
func (a *Arena) Alloc(size uint32) (Ref, error) {
	if size == 0 {
		return Nil, nil
	}

	rounded := roundUp(size, Quantum)
	if rounded < size || uint64(a.cursor)+uint64(rounded) > uint64(len(a.data)) {
		a.logger.Debug("arena exhausted",
			zap.Uint32("size", size),
			zap.Uint32("used", a.cursor),
			zap.Int("capacity", len(a.data)))
		return Nil, errors.Exhausted(errors.PhaseAlloc, size, a.cursor, uint32(len(a.data)))
	}

	ref := a.cursor
	a.cursor += rounded
	a.sizes[ref] = rounded
	return ref, nil
}

// AllocZeroed allocates count elements of elemSize bytes each and
// zero-fills them. The multiplication is checked: a product that does not
// fit the offset type fails with an overflow error before the cursor moves.
func (a *Arena) AllocZeroed(count, elemSize uint32) (Ref, error) {
	total := uint64(count) * uint64(elemSize)
	if total > math.MaxUint32 {
		return Nil, errors.Overflow(errors.PhaseAlloc, count, elemSize)
	}

	ref, err := a.Alloc(uint32(total))
	if err != nil || ref == Nil {
		return ref, err
	}

	clear(a.data[ref : uint64(ref)+total])
	return ref, nil
}

// Realloc allocates a new region of newSize bytes and copies
// min(oldSize, newSize) bytes from ref. A Nil ref behaves as Alloc; a zero
// newSize behaves as Free and returns Nil. The old region is never
// reclaimed, so the returned offset always differs from ref.
func (a *Arena) Realloc(ref Ref, newSize uint32) (Ref, error) {
	if ref == Nil {
		return a.Alloc(newSize)
	}
	if newSize == 0 {
		a.Free(ref)
		return Nil, nil
	}

	newRef, err := a.Alloc(newSize)
	if err != nil {
		return Nil, err
	}

	// The size table remembers what Alloc handed out, so growth keeps the
	// old contents instead of silently dropping them.
	if oldSize, ok := a.sizes[ref]; ok {
		n := min(oldSize, newSize)
		copy(a.data[newRef:newRef+n], a.data[ref:ref+n])
	}
	return newRef, nil
}

// Free releases nothing: the arena retains every allocation until the arena
// itself goes away. It exists so callers can pair allocations with releases.
func (a *Arena) Free(ref Ref) {
	_ = ref
}

// AllocAligned advances the cursor to the next multiple of align, then
// behaves as Alloc. align must be a power of two. The alignment gap is
// consumed even when the allocation itself fails.
func (a *Arena) AllocAligned(align, size uint32) (Ref, error) {
	if align == 0 || align&(align-1) != 0 {
		return Nil, errors.InvalidAlignment(align)
	}

	aligned := roundUp(a.cursor, align)
	if aligned < a.cursor || uint64(aligned) > uint64(len(a.data)) {
		return Nil, errors.Exhausted(errors.PhaseAlloc, size, a.cursor, uint32(len(a.data)))
	}
	a.cursor = aligned

	return a.Alloc(size)
}

// View returns a mutable window into the backing region. The window stays
// valid for the life of the arena.
func (a *Arena) View(off, length uint32) ([]byte, error) {
	if uint64(off)+uint64(length) > uint64(len(a.data)) {
		return nil, errors.OutOfBounds(errors.PhaseAlloc, off, length, uint32(len(a.data)))
	}
	return a.data[off : off+length : off+length], nil
}

// Size returns the capacity of the backing region.
func (a *Arena) Size() uint32 {
	return uint32(len(a.data))
}

// Capacity returns the fixed capacity of the backing region in bytes.
func (a *Arena) Capacity() uint32 {
	return uint32(len(a.data))
}

// Used returns the number of bytes consumed so far, including rounding and
// alignment gaps.
func (a *Arena) Used() uint32 {
	return a.cursor
}

// Available returns the bytes remaining before exhaustion.
func (a *Arena) Available() uint32 {
	return uint32(len(a.data)) - a.cursor
}

// Reset rewinds the cursor and zeroes the backing region. This is a test
// convenience only: the interpreter contract has no reset, and live offsets
// become meaningless after the call.
func (a *Arena) Reset() {
	a.cursor = 0
	clear(a.data)
	clear(a.sizes)
}

func roundUp(v, to uint32) uint32 {
	return (v + to - 1) &^ (to - 1)
}

package platform

import (
	"time"

	"go.uber.org/zap"

	"github.com/embwasm/hostshim/arena"
	"github.com/embwasm/hostshim/errors"
)

// MapAlignment is the alignment of every mapped region. 32 bytes satisfies
// the engine's linear-memory requirements on the observed configuration.
const MapAlignment = 32

// DefaultPageSize is the page size reported to the engine. The target has
// no real pages; 4096 is what the engine expects to hear.
const DefaultPageSize = 4096

// Protection is the requested access mode for a mapping. The target has no
// page-protection facility, so these are recorded in the request shape only.
type Protection uint32

const (
	ProtNone  Protection = 0
	ProtRead  Protection = 1
	ProtWrite Protection = 2
	ProtExec  Protection = 4
)

// MapFlags carries the caller's mapping flags. They are accepted and
// ignored.
type MapFlags uint32

// Platform is the primitive shim. All memory operations delegate to the
// arena; everything else is a stand-in that always succeeds.
type Platform struct {
	arena    *arena.Arena
	logger   *zap.Logger
	boot     time.Time
	threadID uint32
}

// Option configures a Platform.
type Option func(*Platform)

// WithLogger sets the logger used for primitive-level diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Platform) {
		p.logger = l
	}
}

// New creates a platform shim backed by the given arena.
func New(a *arena.Arena, opts ...Option) *Platform {
	p := &Platform{
		arena:    a,
		logger:   zap.NewNop(),
		boot:     time.Now(),
		threadID: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init performs platform startup. Nothing on the target needs priming, but
// the host-adaptation contract has an init/destroy pair.
func (p *Platform) Init() error {
	return nil
}

// Destroy tears down the platform. The arena has static extent, so there is
// nothing to release.
func (p *Platform) Destroy() {}

// Arena returns the backing allocator.
func (p *Platform) Arena() *arena.Arena {
	return p.arena
}

// PageSize returns the page size reported to the engine.
func (p *Platform) PageSize() uint32 {
	return DefaultPageSize
}

// MapPages emulates mmap: hint, prot, and flags are ignored, the region
// comes from the arena at MapAlignment, and the bytes read as zero on
// return. Exhaustion surfaces as an error, never as a garbage offset.
func (p *Platform) MapPages(hint arena.Ref, size uint32, prot Protection, flags MapFlags) (arena.Ref, error) {
	_, _, _ = hint, prot, flags

	if size == 0 {
		return arena.Nil, errors.InvalidInput(errors.PhaseMap, "zero-size mapping")
	}

	ref, err := p.arena.AllocAligned(MapAlignment, size)
	if err != nil {
		return arena.Nil, errors.New(errors.PhaseMap, errors.KindExhausted).
			Detail("map %d bytes", size).
			Cause(err).
			Build()
	}

	// The arena never reuses space, but the mmap contract is explicit:
	// mapped bytes read as zero.
	buf, err := p.arena.View(ref, size)
	if err != nil {
		return arena.Nil, err
	}
	clear(buf)

	p.logger.Debug("mapped pages",
		zap.Uint32("ref", ref),
		zap.Uint32("size", size))
	return ref, nil
}

// UnmapPages always succeeds and returns nothing to the arena. The offset
// stays valid; callers must not assume the range becomes reusable.
func (p *Platform) UnmapPages(ref arena.Ref, size uint32) {
	_ = size
	p.arena.Free(ref)
}

// RemapPages grows or shrinks a mapping by mapping a new region and copying
// min(oldSize, newSize) bytes from the old one.
func (p *Platform) RemapPages(old arena.Ref, oldSize, newSize uint32) (arena.Ref, error) {
	ref, err := p.MapPages(arena.Nil, newSize, ProtNone, 0)
	if err != nil {
		return arena.Nil, err
	}

	if old != arena.Nil && oldSize > 0 {
		n := min(oldSize, newSize)
		src, err := p.arena.View(old, n)
		if err != nil {
			return arena.Nil, err
		}
		dst, err := p.arena.View(ref, n)
		if err != nil {
			return arena.Nil, err
		}
		copy(dst, src)
	}

	p.UnmapPages(old, oldSize)
	return ref, nil
}

// ProtectPages always succeeds: there is no protection boundary to enforce
// on the target.
func (p *Platform) ProtectPages(ref arena.Ref, size uint32, prot Protection) error {
	_, _, _ = ref, size, prot
	return nil
}

// FlushDataCache is a no-op. Correct only in interpreter-only mode; a JIT
// backend would make this a real coherency requirement.
func (p *Platform) FlushDataCache() {}

// FlushInstructionCache is a no-op, with the same interpreter-only caveat
// as FlushDataCache.
func (p *Platform) FlushInstructionCache(start arena.Ref, length uint32) {
	_, _ = start, length
}

// CurrentThreadID returns a constant identity: the engine runs on a single
// logical thread of execution.
func (p *Platform) CurrentThreadID() uint32 {
	return p.threadID
}

// StackBoundary reports no stack boundary; the engine falls back to its own
// guard handling.
func (p *Platform) StackBoundary() arena.Ref {
	return arena.Nil
}

// BootTimeMicros returns microseconds since the platform was created.
func (p *Platform) BootTimeMicros() uint64 {
	return uint64(time.Since(p.boot).Microseconds())
}

// ThreadCPUTimeMicros returns 0: the target offers no per-thread CPU
// accounting.
func (p *Platform) ThreadCPUTimeMicros() uint64 {
	return 0
}

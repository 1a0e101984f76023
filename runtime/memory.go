package runtime

import (
	"math"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/embwasm/hostshim/arena"
	"github.com/embwasm/hostshim/errors"
	"github.com/embwasm/hostshim/platform"
)

// arenaMemoryAllocator backs wazero linear memories with arena mappings.
// The maximum is reserved up front: the arena cannot extend a mapping in
// place, so reserve-then-commit is the only growth strategy that keeps the
// buffer stable.
type arenaMemoryAllocator struct {
	plat   *platform.Platform
	logger *zap.Logger
}

func (a *arenaMemoryAllocator) Allocate(cap, max uint64) experimental.LinearMemory {
	reserve := max
	if reserve < cap {
		reserve = cap
	}
	if reserve > math.MaxUint32 {
		a.logger.Error("guest memory reservation exceeds the offset space",
			zap.Uint64("max", max))
		return exhaustedLinearMemory{}
	}

	ref, err := a.plat.MapPages(arena.Nil, uint32(reserve), platform.ProtRead|platform.ProtWrite, 0)
	if err != nil {
		a.logger.Error("guest memory reservation failed",
			zap.Uint64("reserve", reserve),
			zap.Error(err))
		return exhaustedLinearMemory{}
	}

	buf, err := a.plat.Arena().View(ref, uint32(reserve))
	if err != nil {
		return exhaustedLinearMemory{}
	}

	return &arenaLinearMemory{plat: a.plat, base: ref, buf: buf}
}

// arenaLinearMemory is one guest linear memory inside the arena.
type arenaLinearMemory struct {
	plat *platform.Platform
	base arena.Ref
	buf  []byte
}

func (m *arenaLinearMemory) Reallocate(size uint64) []byte {
	if size > uint64(len(m.buf)) {
		// Growth beyond the reservation would need a new mapping and a
		// moved buffer, which wazero does not allow. The engine reports
		// this to the guest as a failed memory.grow.
		return nil
	}
	return m.buf[:size]
}

func (m *arenaLinearMemory) Free() {
	m.plat.UnmapPages(m.base, uint32(len(m.buf)))
}

// exhaustedLinearMemory refuses every commit, turning reservation failure
// into an instantiation error instead of a garbage buffer.
type exhaustedLinearMemory struct{}

func (exhaustedLinearMemory) Reallocate(uint64) []byte { return nil }
func (exhaustedLinearMemory) Free()                    {}

// guestRegion adapts wazero linear memory to the Region interface so the
// crt functions work on guest memory the same way they work on the arena.
type guestRegion struct {
	mem api.Memory
}

func (g guestRegion) View(off, length uint32) ([]byte, error) {
	buf, ok := g.mem.Read(off, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseRuntime, off, length, g.mem.Size())
	}
	return buf, nil
}

func (g guestRegion) Size() uint32 {
	return g.mem.Size()
}

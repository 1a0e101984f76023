package hostshim

// Region is a bounded, offset-addressed view of platform memory.
type Region interface {
	// View returns a mutable window into the region. Writes through the
	// returned slice are visible to every other holder of a view.
	View(off uint32, length uint32) ([]byte, error)

	// Size returns the total size of the region in bytes.
	Size() uint32
}

// Allocator hands out offsets into a bounded backing region.
// Offsets are never reclaimed; Free exists to satisfy callers that
// pair allocations with releases.
type Allocator interface {
	Alloc(size uint32) (uint32, error)
	AllocAligned(align, size uint32) (uint32, error)
	Free(off uint32)
}

// Package arena implements a bounded bump allocator over a fixed-capacity
// byte region.
//
// The arena is the single allocation authority for the whole platform layer:
// it hands out monotonically increasing, alignment-satisfying offsets into
// its backing store and never reclaims space. Free is a no-op, Realloc
// always moves, and once the cursor reaches capacity every further request
// fails with an exhausted error for the remaining life of the arena.
//
// Offsets are used instead of pointers because the target is a single
// address space with no virtual memory: an offset plus the backing region is
// the whole story. Offset 0 is a valid allocation; the Nil sentinel marks
// "no allocation".
package arena

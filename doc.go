// Package hostshim provides the platform-abstraction layer for hosting
// WebAssembly guests on a single-address-space, resource-constrained target.
//
// The target has no virtual memory, no page protection, and no preemptive
// userland threading, so the primitives a WebAssembly engine's host-adaptation
// layer expects (dynamic allocation, page mapping, mutexes, thread identity)
// have to be emulated on top of a strictly bounded backing store.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	hostshim/        Root package with core Region and Allocator interfaces
//	├── arena/       Bounded bump allocator over a fixed byte region
//	├── platform/    Pseudo-mmap, cache/mutex/thread stand-ins, native dispatch
//	├── crt/         Minimal C-runtime surface (mem/str/math/printf)
//	├── runtime/     Hosts guest modules on wazero, wired to the platform layer
//	└── errors/      Structured error types for the platform layer
//
// # Quick Start
//
// Run a guest module against a 256 KiB arena:
//
//	rt, err := runtime.New(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	results, err := inst.Call(ctx, "add", 1, 2)
//
// # Memory Model
//
// All memory comes from a single fixed-capacity arena with a monotonic
// cursor. Space is never reclaimed: Free and UnmapPages are no-ops, and once
// cumulative allocation reaches the arena capacity every further request
// fails with an exhausted error for the remaining life of the process.
// Guest linear memory is carved out of the same arena through the engine's
// memory-allocator hook.
//
// # Thread Safety
//
// The entire layer assumes a single logical thread of control. The mutex and
// thread-identity primitives exist to satisfy the host-adaptation surface and
// provide no actual exclusion; see package platform for the precondition.
package hostshim

// Package runtime hosts WebAssembly guest modules on the platform shim.
//
// The engine is wazero in interpreter mode, matching the non-JIT execution
// model the platform layer assumes. Every byte the engine needs comes from
// the bounded arena: module images are staged there at load, and guest
// linear memory is carved from it through wazero's memory-allocator hook,
// so arena exhaustion is the single out-of-memory signal for the whole
// embedding.
//
// Host natives registered with RegisterNative are exposed to guests under
// the "env" import namespace and invoked through the platform's native-call
// dispatch trampoline, alongside the built-in printf, clock_us, and abort
// imports.
package runtime

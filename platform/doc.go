// Package platform presents the host-primitive surface a WebAssembly
// engine's host-adaptation layer expects, on a target that has none of the
// underlying facilities.
//
// Page mapping delegates to the bounded arena with a fixed alignment and a
// zero fill; unmapping, protection, and cache maintenance are no-ops because
// the target has no virtual memory, no protection boundary, and no
// incoherent cache path in interpreter-only mode. Mutexes and thread
// identity are stand-ins that always succeed.
//
// # Single-Thread Precondition
//
// The mutex operations provide NO actual mutual exclusion. The whole layer
// is sound only while the engine runs on one logical thread of execution;
// a multi-threaded embedding must replace these primitives with real ones
// before relaxing that assumption.
package platform

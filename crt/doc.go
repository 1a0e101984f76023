// Package crt supplies the minimal C-runtime surface the hosted engine
// links against: byte and string operations over offset-addressed regions,
// sort and search over packed element arrays, double-precision math shims,
// and a printf family with real conversion handling.
//
// Functions operate on a hostshim.Region rather than raw slices because the
// callers hold offsets, not pointers: the arena on the host side, guest
// linear memory on the engine side. Null-terminated string operations scan
// within the region bounds and report an error when no terminator exists,
// instead of running off the end the way the C originals would.
package crt

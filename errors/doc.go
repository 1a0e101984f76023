// Package errors provides structured error types for the platform layer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries a detail message, the offending value,
// and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAlloc, errors.KindExhausted).
//		Detail("requested %d bytes, %d available", size, avail).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Exhausted(errors.PhaseAlloc, size, used, capacity)
//	err := errors.InvalidAlignment(align)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two Errors match under errors.Is when their Phase and Kind are equal, so
// callers can test for exhaustion without caring which component reported it.
package errors

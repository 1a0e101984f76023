package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAlloc    Phase = "alloc"    // arena allocation
	PhaseMap      Phase = "map"      // page mapping emulation
	PhaseDispatch Phase = "dispatch" // native-call dispatch
	PhaseFormat   Phase = "format"   // printf-family formatting
	PhaseLoad     Phase = "load"     // module loading
	PhaseRuntime  Phase = "runtime"  // runtime operations
	PhaseHost     Phase = "host"     // native function registration
)

// Kind categorizes the error
type Kind string

const (
	KindExhausted        Kind = "exhausted"
	KindOverflow         Kind = "overflow"
	KindInvalidAlignment Kind = "invalid_alignment"
	KindInvalidInput     Kind = "invalid_input"
	KindUnsupported      Kind = "unsupported"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindNotFound         Kind = "not_found"
	KindRegistration     Kind = "registration"
	KindInstantiation    Kind = "instantiation"
)

// Error is the structured error type used throughout the platform layer
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Exhausted creates an arena-exhaustion error. Exhaustion is fatal for the
// remaining life of the process: the arena never reclaims space, so a retry
// is deterministic and pointless.
func Exhausted(phase Phase, size, used, capacity uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhausted,
		Detail: fmt.Sprintf("cannot allocate %d bytes (%d of %d used)", size, used, capacity),
		Value:  size,
	}
}

// Overflow creates a size-computation overflow error
func Overflow(phase Phase, count, elemSize uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("%d elements of %d bytes overflows the size type", count, elemSize),
	}
}

// InvalidAlignment creates a bad-alignment error
func InvalidAlignment(align uint32) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindInvalidAlignment,
		Detail: fmt.Sprintf("alignment %d is not a power of two", align),
		Value:  align,
	}
}

// OutOfBounds creates an out of bounds error for region access
func OutOfBounds(phase Phase, off, length, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) exceeds region size %d", off, uint64(off)+uint64(length), size),
		Value:  off,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Registration creates a native-function registration error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %q", name),
		Cause:  cause,
	}
}

// Instantiation wraps a module instantiation failure
func Instantiation(cause error) *Error {
	return &Error{
		Phase: PhaseRuntime,
		Kind:  KindInstantiation,
		Cause: cause,
	}
}

// Load wraps a module loading failure
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

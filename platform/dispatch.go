package platform

import (
	"go.uber.org/zap"

	"github.com/embwasm/hostshim/errors"
)

// WordSize is the size of a native argument word in bytes.
const WordSize = 4

// MaxDispatchArity is the highest argument count the trampoline supports.
const MaxDispatchArity = 4

// NativeFunc is any function the dispatch trampoline can invoke: zero to
// four word-sized arguments and a word-sized result.
//
// The concrete types are:
//
//	func() uint32
//	func(uint32) uint32
//	func(uint32, uint32) uint32
//	func(uint32, uint32, uint32) uint32
//	func(uint32, uint32, uint32, uint32) uint32
type NativeFunc any

// NativeArity reports the argument count of fn, or an error when fn is not
// one of the supported trampoline shapes.
func NativeArity(fn NativeFunc) (uint32, error) {
	switch fn.(type) {
	case func() uint32:
		return 0, nil
	case func(uint32) uint32:
		return 1, nil
	case func(uint32, uint32) uint32:
		return 2, nil
	case func(uint32, uint32, uint32) uint32:
		return 3, nil
	case func(uint32, uint32, uint32, uint32) uint32:
		return 4, nil
	default:
		return 0, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Detail("unsupported native function shape %T", fn).
			Build()
	}
}

// DispatchNativeCall invokes fn with argBytes/WordSize argument words drawn
// from args and writes the word-sized result through result when it is
// non-nil.
//
// An arity above MaxDispatchArity, a short argument buffer, or a fn whose
// shape disagrees with the derived arity all fail loudly; result is left
// untouched on any error.
func (p *Platform) DispatchNativeCall(fn NativeFunc, args []uint32, argBytes uint32, result *uint32) error {
	arity := argBytes / WordSize
	if arity > MaxDispatchArity {
		p.logger.Warn("native call arity not supported",
			zap.Uint32("arity", arity))
		return errors.New(errors.PhaseDispatch, errors.KindUnsupported).
			Detail("arity %d exceeds maximum %d", arity, MaxDispatchArity).
			Build()
	}
	if uint32(len(args)) < arity {
		return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Detail("argument buffer holds %d words, arity is %d", len(args), arity).
			Build()
	}

	want, err := NativeArity(fn)
	if err != nil {
		return err
	}
	if want != arity {
		return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Detail("function takes %d words, caller passed %d", want, arity).
			Build()
	}

	var ret uint32
	switch f := fn.(type) {
	case func() uint32:
		ret = f()
	case func(uint32) uint32:
		ret = f(args[0])
	case func(uint32, uint32) uint32:
		ret = f(args[0], args[1])
	case func(uint32, uint32, uint32) uint32:
		ret = f(args[0], args[1], args[2])
	case func(uint32, uint32, uint32, uint32) uint32:
		ret = f(args[0], args[1], args[2], args[3])
	}

	if result != nil {
		*result = ret
	}
	return nil
}

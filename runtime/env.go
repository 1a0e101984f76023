package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/embwasm/hostshim/crt"
	"github.com/embwasm/hostshim/errors"
	"github.com/embwasm/hostshim/platform"
)

// builtinEnvFuncs are the imports every guest gets alongside registered
// natives. Registered names must not collide with them.
var builtinEnvFuncs = map[string]struct{}{
	"printf":   {},
	"clock_us": {},
	"abort":    {},
}

// ensureEnv instantiates the "env" host module once per runtime. After
// this, the native registry is frozen.
func (r *Runtime) ensureEnv(ctx context.Context) error {
	if r.envBuilt {
		return nil
	}

	builder := r.engine.NewHostModuleBuilder("env")

	i32 := api.ValueTypeI32
	for name, fn := range r.natives {
		arity, err := platform.NativeArity(fn)
		if err != nil {
			return errors.Registration(name, err)
		}

		params := make([]api.ValueType, arity)
		for i := range params {
			params[i] = i32
		}

		builder.NewFunctionBuilder().
			WithGoModuleFunction(r.nativeTrampoline(name, fn, arity), params, []api.ValueType{i32}).
			Export(name)
	}

	// printf(fmt_ptr, arg_ptr) -> length. The argument area follows the
	// C vararg layout inside guest memory.
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			fmtPtr := uint32(stack[0])
			argPtr := uint32(stack[1])

			g := guestRegion{mem: mod.Memory()}
			format, err := crt.CString(g, fmtPtr)
			if err != nil {
				r.logger.Warn("guest printf with bad format pointer", zap.Error(err))
				stack[0] = uint64(^uint32(0))
				return
			}
			n, err := r.printer.Printf(g, format, argPtr)
			if err != nil {
				r.logger.Warn("guest printf failed", zap.Error(err))
				stack[0] = uint64(^uint32(0))
				return
			}
			stack[0] = uint64(uint32(n))
		}), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		Export("printf")

	// clock_us() -> microseconds since platform boot.
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = r.plat.BootTimeMicros()
		}), nil, []api.ValueType{api.ValueTypeI64}).
		Export("clock_us")

	// abort(code) terminates the guest with the given exit code.
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			code := uint32(stack[0])
			r.logger.Warn("guest abort", zap.Uint32("code", code))
			_ = mod.CloseWithExitCode(ctx, code)
		}), []api.ValueType{i32}, nil).
		Export("abort")

	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Registration("env", err)
	}

	r.envBuilt = true
	return nil
}

// nativeTrampoline bridges a guest import to the platform's dispatch
// trampoline: word arguments off the wazero stack, word result back on it.
func (r *Runtime) nativeTrampoline(name string, fn platform.NativeFunc, arity uint32) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		words := make([]uint32, arity)
		for i := range words {
			words[i] = uint32(stack[i])
		}

		var result uint32
		if err := r.plat.DispatchNativeCall(fn, words, arity*platform.WordSize, &result); err != nil {
			r.logger.Error("native dispatch failed",
				zap.String("func", name),
				zap.Error(err))
			// A dispatch failure is a host bug; trap the guest rather
			// than hand it a fabricated result.
			panic(err)
		}
		stack[0] = uint64(result)
	}
}

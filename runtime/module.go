package runtime

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"

	"github.com/embwasm/hostshim"
	"github.com/embwasm/hostshim/arena"
	"github.com/embwasm/hostshim/errors"
)

// Module is a compiled guest module whose image lives in the arena.
type Module struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
	imageRef arena.Ref
}

// ExportedFunctions lists the module's exported function names, sorted.
func (m *Module) ExportedFunctions() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate creates an instance whose linear memory is carved from the
// arena. The env host module is built on first use, freezing the native
// registry.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	if err := m.runtime.ensureEnv(ctx); err != nil {
		return nil, err
	}

	ctx = experimental.WithMemoryAllocator(ctx, &arenaMemoryAllocator{
		plat:   m.runtime.plat,
		logger: m.runtime.logger,
	})

	mod, err := m.runtime.engine.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	return &Instance{runtime: m.runtime, module: mod}, nil
}

// Instance is a live guest. It is not safe for concurrent use, in keeping
// with the platform's single-thread model.
type Instance struct {
	runtime *Runtime
	module  api.Module
}

// Call invokes the exported function name with word- or long-sized
// arguments, returning the raw result stack.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Detail("call %q", name).
			Cause(err).
			Build()
	}
	return results, nil
}

// Memory returns the guest's linear memory as a Region, or nil when the
// module declares none.
func (i *Instance) Memory() hostshim.Region {
	mem := i.module.Memory()
	if mem == nil {
		return nil
	}
	return guestRegion{mem: mem}
}

// Close drops the instance. Its linear memory stays resident in the arena;
// unmapping never reclaims.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}

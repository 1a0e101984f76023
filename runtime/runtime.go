package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/embwasm/hostshim/arena"
	"github.com/embwasm/hostshim/crt"
	"github.com/embwasm/hostshim/errors"
	"github.com/embwasm/hostshim/platform"
)

const (
	// DefaultArenaCapacity matches the observed embedded configuration:
	// a 256 KiB static heap serving the whole embedding.
	DefaultArenaCapacity = 256 << 10

	// DefaultGuestPages caps guest linear memory at 2 pages (128 KiB),
	// leaving the rest of the default arena for everything else.
	DefaultGuestPages = 2
)

// Config holds configuration for runtime creation.
type Config struct {
	// ArenaCapacity is the fixed size of the backing store in bytes.
	// This is a hard ceiling on lifetime allocation: the arena never
	// reclaims space. 0 means DefaultArenaCapacity.
	ArenaCapacity uint32

	// GuestPages caps linear memory per guest instance in 64 KiB pages.
	// 0 means DefaultGuestPages.
	GuestPages uint32

	// Logger receives platform diagnostics and guest printf output.
	// nil means no logging.
	Logger *zap.Logger
}

// Runtime hosts guest modules against a single arena-backed platform.
type Runtime struct {
	engine   wazero.Runtime
	arena    *arena.Arena
	plat     *platform.Platform
	printer  *crt.Printer
	natives  map[string]platform.NativeFunc
	logger   *zap.Logger
	envBuilt bool
}

// New creates a runtime. The arena is allocated once here and lives until
// Close; nothing allocated from it is ever returned.
func New(ctx context.Context, cfg *Config) (*Runtime, error) {
	capacity := uint32(DefaultArenaCapacity)
	pages := uint32(DefaultGuestPages)
	logger := zap.NewNop()
	if cfg != nil {
		if cfg.ArenaCapacity > 0 {
			capacity = cfg.ArenaCapacity
		}
		if cfg.GuestPages > 0 {
			pages = cfg.GuestPages
		}
		if cfg.Logger != nil {
			logger = cfg.Logger
		}
	}

	a := arena.New(capacity, arena.WithLogger(logger))
	plat := platform.New(a, platform.WithLogger(logger))
	if err := plat.Init(); err != nil {
		return nil, err
	}

	// Interpreter mode: the platform's no-op cache maintenance is only
	// sound without a JIT writing code pages.
	engineCfg := wazero.NewRuntimeConfigInterpreter().
		WithMemoryLimitPages(pages)

	return &Runtime{
		engine:  wazero.NewRuntimeWithConfig(ctx, engineCfg),
		arena:   a,
		plat:    plat,
		printer: crt.NewPrinter(logger),
		natives: make(map[string]platform.NativeFunc),
		logger:  logger,
	}, nil
}

// Close releases the engine. The arena has static extent and is simply
// dropped with the runtime.
func (r *Runtime) Close(ctx context.Context) error {
	r.plat.Destroy()
	return r.engine.Close(ctx)
}

// Arena returns the backing allocator, e.g. for occupancy reporting.
func (r *Runtime) Arena() *arena.Arena {
	return r.arena
}

// Platform returns the primitive shim.
func (r *Runtime) Platform() *platform.Platform {
	return r.plat
}

// RegisterNative exposes fn to guests as an "env" import. fn must be one of
// the trampoline shapes (0-4 word arguments, word result; see
// platform.NativeFunc). Natives must be registered before the first
// Instantiate.
func (r *Runtime) RegisterNative(name string, fn platform.NativeFunc) error {
	if r.envBuilt {
		return errors.Registration(name, errors.InvalidInput(errors.PhaseHost, "env module already instantiated"))
	}
	if _, reserved := builtinEnvFuncs[name]; reserved {
		return errors.Registration(name, errors.InvalidInput(errors.PhaseHost, "name collides with a built-in import"))
	}
	if _, dup := r.natives[name]; dup {
		return errors.Registration(name, errors.InvalidInput(errors.PhaseHost, "already registered"))
	}
	if _, err := platform.NativeArity(fn); err != nil {
		return errors.Registration(name, err)
	}

	r.natives[name] = fn
	return nil
}

// Load stages the module image in the arena and compiles it. The staged
// copy stays resident for the life of the runtime, like every other arena
// allocation.
func (r *Runtime) Load(ctx context.Context, wasm []byte) (*Module, error) {
	if len(wasm) == 0 {
		return nil, errors.Load("empty module image", nil)
	}

	ref, err := r.arena.Alloc(uint32(len(wasm)))
	if err != nil {
		return nil, errors.Load("stage module image", err)
	}
	image, err := r.arena.View(ref, uint32(len(wasm)))
	if err != nil {
		return nil, err
	}
	copy(image, wasm)

	compiled, err := r.engine.CompileModule(ctx, image)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	r.logger.Debug("module loaded",
		zap.Uint32("image_ref", ref),
		zap.Int("image_size", len(wasm)))

	return &Module{
		runtime:  r,
		compiled: compiled,
		imageRef: ref,
	}, nil
}

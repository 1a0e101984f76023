package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/embwasm/hostshim/arena"
	"github.com/embwasm/hostshim/errors"
	"github.com/embwasm/hostshim/platform"
)

// addModule exports add(i32, i32) -> i32 and a one-page memory.
//
//	(module
//	  (memory (export "memory") 1 1)
//	  (func (export "add") (param i32 i32) (result i32)
//	    local.get 0
//	    local.get 1
//	    i32.add))
var addModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i32, i32) -> i32
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	// function: one func of type 0
	0x03, 0x02, 0x01, 0x00,
	// memory: min 1, max 1
	0x05, 0x04, 0x01, 0x01, 0x01, 0x01,
	// exports: "add" func 0, "memory" mem 0
	0x07, 0x10, 0x02,
	0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00,
	// code: local.get 0, local.get 1, i32.add
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

// nativeModule imports env.mul2(i32) -> i32 and exports run(i32) -> i32
// that forwards to it.
//
//	(module
//	  (import "env" "mul2" (func $mul2 (param i32) (result i32)))
//	  (func (export "run") (param i32) (result i32)
//	    local.get 0
//	    call $mul2))
var nativeModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i32) -> i32
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	// import: env.mul2 of type 0
	0x02, 0x0c, 0x01,
	0x03, 0x65, 0x6e, 0x76,
	0x04, 0x6d, 0x75, 0x6c, 0x32,
	0x00, 0x00,
	// function: one func of type 0
	0x03, 0x02, 0x01, 0x00,
	// export: "run" func 1
	0x07, 0x07, 0x01, 0x03, 0x72, 0x75, 0x6e, 0x00, 0x01,
	// code: local.get 0, call 0
	0x0a, 0x08, 0x01, 0x06, 0x00, 0x20, 0x00, 0x10, 0x00, 0x0b,
}

// printfModule imports env.printf and exports say() -> i32 that formats
// "count=%d\n" against an argument area holding the word 5. The format
// string lives at offset 16, the argument area at offset 64.
//
//	(module
//	  (import "env" "printf" (func $printf (param i32 i32) (result i32)))
//	  (memory 1 1)
//	  (func (export "say") (result i32)
//	    i32.const 16
//	    i32.const 64
//	    call $printf)
//	  (data (i32.const 16) "count=%d\n\00")
//	  (data (i32.const 64) "\05\00\00\00"))
var printfModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// types: (i32, i32) -> i32, () -> i32
	0x01, 0x0b, 0x02,
	0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x60, 0x00, 0x01, 0x7f,
	// import: env.printf of type 0
	0x02, 0x0e, 0x01,
	0x03, 0x65, 0x6e, 0x76,
	0x06, 0x70, 0x72, 0x69, 0x6e, 0x74, 0x66,
	0x00, 0x00,
	// function: one func of type 1
	0x03, 0x02, 0x01, 0x01,
	// memory: min 1, max 1
	0x05, 0x04, 0x01, 0x01, 0x01, 0x01,
	// export: "say" func 1
	0x07, 0x07, 0x01, 0x03, 0x73, 0x61, 0x79, 0x00, 0x01,
	// code: i32.const 16, i32.const 64, call 0
	0x0a, 0x0b, 0x01, 0x09, 0x00, 0x41, 0x10, 0x41, 0xc0, 0x00, 0x10, 0x00, 0x0b,
	// data: format string at 16, argument word at 64
	0x0b, 0x1a, 0x02,
	0x00, 0x41, 0x10, 0x0b, 0x0a,
	'c', 'o', 'u', 'n', 't', '=', '%', 'd', '\n', 0x00,
	0x00, 0x41, 0xc0, 0x00, 0x0b, 0x04,
	0x05, 0x00, 0x00, 0x00,
}

func newTestRuntime(t *testing.T, cfg *Config) *Runtime {
	t.Helper()
	rt, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close(context.Background()) })
	return rt
}

func TestRuntime_CallExport(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, nil)

	mod, err := rt.Load(ctx, addModule)
	require.NoError(t, err)

	inst, err := mod.Instantiate(ctx)
	require.NoError(t, err)
	defer inst.Close(ctx)

	results, err := inst.Call(ctx, "add", 5, 7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(12), results[0])
}

func TestRuntime_GuestMemoryComesFromArena(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, &Config{GuestPages: 1})

	before := rt.Arena().Used()

	mod, err := rt.Load(ctx, addModule)
	require.NoError(t, err)
	inst, err := mod.Instantiate(ctx)
	require.NoError(t, err)
	defer inst.Close(ctx)

	// The one-page linear memory is reserved inside the arena.
	assert.GreaterOrEqual(t, rt.Arena().Used()-before, uint32(65536))

	mem := inst.Memory()
	require.NotNil(t, mem)
	assert.Equal(t, uint32(65536), mem.Size())

	buf, err := mem.View(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf, "fresh guest memory reads as zero")
}

func TestRuntime_NativeDispatch(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, nil)

	require.NoError(t, rt.RegisterNative("mul2", func(a uint32) uint32 { return a * 2 }))

	mod, err := rt.Load(ctx, nativeModule)
	require.NoError(t, err)
	inst, err := mod.Instantiate(ctx)
	require.NoError(t, err)
	defer inst.Close(ctx)

	results, err := inst.Call(ctx, "run", 21)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(42), results[0])
}

func TestRuntime_GuestPrintf(t *testing.T) {
	ctx := context.Background()

	core, logged := observer.New(zap.InfoLevel)
	rt, err := New(ctx, &Config{Logger: zap.New(core)})
	require.NoError(t, err)
	defer rt.Close(ctx)

	mod, err := rt.Load(ctx, printfModule)
	require.NoError(t, err)
	inst, err := mod.Instantiate(ctx)
	require.NoError(t, err)
	defer inst.Close(ctx)

	results, err := inst.Call(ctx, "say")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(len("count=5\n")), results[0])

	found := false
	for _, entry := range logged.All() {
		if entry.Message == "count=5" {
			found = true
		}
	}
	assert.True(t, found, "rendered guest output should reach the logger")
}

func TestRuntime_CallMissingExport(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, nil)

	mod, err := rt.Load(ctx, addModule)
	require.NoError(t, err)
	inst, err := mod.Instantiate(ctx)
	require.NoError(t, err)
	defer inst.Close(ctx)

	_, err = inst.Call(ctx, "missing")
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotFound})
}

func TestRuntime_LoadRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, nil)

	_, err := rt.Load(ctx, nil)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput})

	_, err = rt.Load(ctx, []byte("not wasm"))
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput})
}

func TestRuntime_LoadFailsWhenArenaCannotStageImage(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, &Config{ArenaCapacity: 16})

	_, err := rt.Load(ctx, addModule)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindExhausted})
}

func TestRuntime_ModuleExports(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, nil)

	mod, err := rt.Load(ctx, addModule)
	require.NoError(t, err)

	assert.Equal(t, []string{"add"}, mod.ExportedFunctions())
}

func TestRegisterNative_Validation(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, nil)

	require.NoError(t, rt.RegisterNative("ok", func() uint32 { return 0 }))

	err := rt.RegisterNative("ok", func() uint32 { return 0 })
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseHost, Kind: errors.KindRegistration}, "duplicate")

	err = rt.RegisterNative("printf", func() uint32 { return 0 })
	assert.Error(t, err, "built-in names are reserved")

	err = rt.RegisterNative("bad", func(uint64) uint32 { return 0 })
	assert.Error(t, err, "unsupported shape")

	// Instantiating freezes the registry.
	mod, err := rt.Load(ctx, addModule)
	require.NoError(t, err)
	inst, err := mod.Instantiate(ctx)
	require.NoError(t, err)
	defer inst.Close(ctx)

	err = rt.RegisterNative("late", func() uint32 { return 0 })
	assert.Error(t, err)
}

func TestArenaMemoryAllocator_Exhaustion(t *testing.T) {
	a := arena.New(1024)
	alloc := &arenaMemoryAllocator{
		plat:   platform.New(a),
		logger: zap.NewNop(),
	}

	mem := alloc.Allocate(65536, 65536)
	assert.Nil(t, mem.Reallocate(65536), "an over-capacity reservation must refuse every commit")
	mem.Free()
}

func TestArenaMemoryAllocator_ReserveAndCommit(t *testing.T) {
	a := arena.New(256 << 10)
	alloc := &arenaMemoryAllocator{
		plat:   platform.New(a),
		logger: zap.NewNop(),
	}

	mem := alloc.Allocate(65536, 131072)

	buf := mem.Reallocate(65536)
	require.NotNil(t, buf)
	assert.Len(t, buf, 65536)

	grown := mem.Reallocate(131072)
	require.NotNil(t, grown)
	assert.Len(t, grown, 131072)
	assert.Same(t, &buf[0], &grown[0], "growth within the reservation must not move the buffer")

	assert.Nil(t, mem.Reallocate(131073), "growth beyond the reservation fails")
}

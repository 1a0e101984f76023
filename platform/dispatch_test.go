package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embwasm/hostshim/arena"
	"github.com/embwasm/hostshim/errors"
)

func TestDispatchNativeCall_Arities(t *testing.T) {
	p := New(arena.New(1024))

	tests := []struct {
		name string
		fn   NativeFunc
		args []uint32
		want uint32
	}{
		{
			name: "zero args returns the function's value",
			fn:   func() uint32 { return 99 },
			want: 99,
		},
		{
			name: "one arg",
			fn:   func(a uint32) uint32 { return a * 2 },
			args: []uint32{21},
			want: 42,
		},
		{
			name: "two args",
			fn:   func(a, b uint32) uint32 { return a + b },
			args: []uint32{40, 2},
			want: 42,
		},
		{
			name: "three args",
			fn:   func(a, b, c uint32) uint32 { return a*b + c },
			args: []uint32{6, 7, 0},
			want: 42,
		},
		{
			name: "four args",
			fn:   func(a, b, c, d uint32) uint32 { return a + b + c + d },
			args: []uint32{10, 20, 10, 2},
			want: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result uint32
			err := p.DispatchNativeCall(tt.fn, tt.args, uint32(len(tt.args))*WordSize, &result)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestDispatchNativeCall_NilResult(t *testing.T) {
	p := New(arena.New(1024))

	called := false
	err := p.DispatchNativeCall(func() uint32 {
		called = true
		return 7
	}, nil, 0, nil)

	require.NoError(t, err)
	assert.True(t, called, "function must still be invoked when result is discarded")
}

func TestDispatchNativeCall_ArityAboveMaxFailsLoudly(t *testing.T) {
	p := New(arena.New(1024))

	result := uint32(0xDEAD)
	args := []uint32{1, 2, 3, 4, 5}
	err := p.DispatchNativeCall(func() uint32 { return 1 }, args, 5*WordSize, &result)

	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindUnsupported})
	assert.Equal(t, uint32(0xDEAD), result, "result must be left untouched on error")
}

func TestDispatchNativeCall_ArityMismatch(t *testing.T) {
	p := New(arena.New(1024))

	result := uint32(0xDEAD)
	err := p.DispatchNativeCall(func(a, b uint32) uint32 { return a + b }, []uint32{1}, 1*WordSize, &result)

	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindInvalidInput})
	assert.Equal(t, uint32(0xDEAD), result)
}

func TestDispatchNativeCall_ShortArgBuffer(t *testing.T) {
	p := New(arena.New(1024))

	err := p.DispatchNativeCall(func(a, b uint32) uint32 { return a + b }, []uint32{1}, 2*WordSize, nil)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindInvalidInput})
}

func TestDispatchNativeCall_BadShape(t *testing.T) {
	p := New(arena.New(1024))

	err := p.DispatchNativeCall(func() {}, nil, 0, nil)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindInvalidInput})
}

func TestNativeArity(t *testing.T) {
	tests := []struct {
		fn    NativeFunc
		arity uint32
	}{
		{func() uint32 { return 0 }, 0},
		{func(uint32) uint32 { return 0 }, 1},
		{func(uint32, uint32) uint32 { return 0 }, 2},
		{func(uint32, uint32, uint32) uint32 { return 0 }, 3},
		{func(uint32, uint32, uint32, uint32) uint32 { return 0 }, 4},
	}

	for _, tt := range tests {
		got, err := NativeArity(tt.fn)
		require.NoError(t, err)
		assert.Equal(t, tt.arity, got)
	}

	_, err := NativeArity(func(uint64) uint32 { return 0 })
	assert.Error(t, err)
}

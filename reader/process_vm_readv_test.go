//go:build linux

package reader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsearch/process"
)

func TestProcessReadUINT8(t *testing.T) {
	mem, base, _ := guardedMapping(t)
	mem[0], mem[1] = 0x4D, 0x5A

	r, err := NewSelf()
	require.NoError(t, err)

	v, err := r.ReadUINT8(base)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x4D), v)

	v, err = r.ReadUINT8(base + 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x5A), v)
}

func TestProcessProtectedPageFaults(t *testing.T) {
	_, _, guard := guardedMapping(t)

	r, err := NewSelf()
	require.NoError(t, err)

	_, err = r.ReadUINT8(guard)
	assert.True(t, errors.Is(err, process.ErrFault), "got %v", err)
	assert.True(t, errors.Is(err, process.ErrAddressNotMapped), "got %v", err)
}

func TestProcessStaleMapFaultsInKernel(t *testing.T) {
	_, _, guard := guardedMapping(t)

	r, err := NewSelf()
	require.NoError(t, err)

	// Pretend the whole mapping is readable; the kernel still refuses the guard page
	r.mu.Lock()
	r.mm = append(r.mm[:0:0], r.mm...)
	for i := range r.mm {
		if r.mm[i].Address <= uint64(guard) && uint64(guard) < r.mm[i].End() {
			r.mm[i].Perms = "rw-p"
		}
	}
	r.mu.Unlock()

	_, err = r.ReadUINT8(guard)
	assert.True(t, errors.Is(err, process.ErrFault), "got %v", err)
}

func TestNewVM(t *testing.T) {
	r, err := New(KindVM)
	require.NoError(t, err)
	assert.IsType(t, &Process{}, r)
}

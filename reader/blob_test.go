package reader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsearch/process"
)

func TestBlobReadUINT8(t *testing.T) {
	b := NewBlob(0x10000, []byte{0xDE, 0xAD, 0xBE, 0xEF})

	v, err := b.ReadUINT8(0x10000)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xDE), v)

	v, err = b.ReadUINT8(0x10003)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xEF), v)
}

func TestBlobOutOfBoundsFaults(t *testing.T) {
	b := NewBlob(0x10000, []byte{1, 2, 3, 4})

	for _, addr := range []process.ProcessMemoryAddress{0, 0xFFFF, 0x10004, 0x20000} {
		_, err := b.ReadUINT8(addr)
		assert.True(t, errors.Is(err, process.ErrFault), "addr %s: %v", addr.ToString(), err)
	}

	_, err := b.ReadMemory(0x10002, 4)
	assert.True(t, errors.Is(err, process.ErrFault))
}

func TestBlobProtect(t *testing.T) {
	b := NewBlob(0x10000, make([]byte, 16)).Protect(0x10004, 4)

	_, err := b.ReadUINT8(0x10003)
	assert.NoError(t, err)

	for addr := process.ProcessMemoryAddress(0x10004); addr < 0x10008; addr++ {
		_, err := b.ReadUINT8(addr)
		assert.True(t, errors.Is(err, process.ErrFault))
	}

	_, err = b.ReadUINT8(0x10008)
	assert.NoError(t, err)

	_, err = b.ReadMemory(0x10000, 8)
	assert.True(t, errors.Is(err, process.ErrFault), "range overlapping a hole")
}

func TestNewKinds(t *testing.T) {
	r, err := New(KindDirect)
	require.NoError(t, err)
	assert.IsType(t, Direct{}, r)

	r, err = New("")
	require.NoError(t, err)
	assert.IsType(t, Direct{}, r)

	_, err = New("bogus")
	assert.Error(t, err)
}

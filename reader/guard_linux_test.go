//go:build linux

package reader

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"tsearch/process"
)

// guardedMapping maps two anonymous pages outside the Go heap and makes the
// second one inaccessible.
func guardedMapping(t *testing.T) (mem []byte, readable, guard process.ProcessMemoryAddress) {
	t.Helper()

	pageSize := unix.Getpagesize()
	mem, err := unix.Mmap(-1, 0, 2*pageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Munmap(mem) })

	require.NoError(t, unix.Mprotect(mem[pageSize:], unix.PROT_NONE))

	readable = process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&mem[0])))
	guard = readable.Add(process.ProcessMemorySize(pageSize))
	return mem, readable, guard
}

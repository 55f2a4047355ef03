//go:build linux

package reader

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"tsearch/process"
	"tsearch/process/memory_map"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to read memory of a
// process. An unmapped remote address fails with EFAULT instead of a signal.
func process_vm_readv(pid int, localBuf []byte, remoteAddr process.ProcessMemoryAddress) (int, error) {
	if len(localBuf) == 0 {
		return 0, nil
	}

	// Create iovec for local buffer
	localIov := unix.Iovec{
		Base: &localBuf[0],
	}
	localIov.SetLen(len(localBuf))

	// Create iovec for remote buffer
	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  len(localBuf),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	if errno != 0 {
		return 0, fmt.Errorf("process_vm_readv failed: %s (errno: %d)", errno.Error(), errno)
	}

	if int(n) != len(localBuf) {
		return int(n), fmt.Errorf("partial read: %d of %d bytes", n, len(localBuf))
	}

	return int(n), nil
}

// Process reads bytes of a process through process_vm_readv. Addresses are
// first checked against a snapshot of the memory map, so reads of
// unreadable mappings fail without a syscall.
type Process struct {
	pid int
	mm  []memory_map.MemoryMapItem
	mu  sync.RWMutex
}

var _ ByteReader = (*Process)(nil)

// NewProcess creates a reader for pid and snapshots its memory map
func NewProcess(pid int) (*Process, error) {
	p := &Process{pid: pid}
	if err := p.UpdateMemoryMap(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewSelf creates a reader for the calling process
func NewSelf() (*Process, error) {
	return NewProcess(os.Getpid())
}

// UpdateMemoryMap refreshes the memory map snapshot
func (p *Process) UpdateMemoryMap() error {
	mm, err := memory_map.NewLinuxMemoryMap().ReadMemoryMap(p.pid)
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()
	return nil
}

// ReadUINT8 reads an unsigned 8-bit integer from the specified address
func (p *Process) ReadUINT8(addr process.ProcessMemoryAddress) (uint8, error) {
	p.mu.RLock()
	readable := memory_map.IsReadableAddress(uint64(addr), p.mm)
	p.mu.RUnlock()

	if !readable {
		return 0, fault(addr, process.ErrAddressNotMapped)
	}

	var buf [1]byte
	if _, err := process_vm_readv(p.pid, buf[:], addr); err != nil {
		return 0, fault(addr, err)
	}
	return buf[0], nil
}

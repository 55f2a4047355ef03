//go:build windows

package memory_map

import (
	"fmt"
)

// WindowsMemoryMap implements MemoryMap for Windows
type WindowsMemoryMap struct{}

var _ MemoryMap = (*WindowsMemoryMap)(nil)

// NewWindowsMemoryMap creates a new WindowsMemoryMap instance
func NewWindowsMemoryMap() *WindowsMemoryMap {
	return &WindowsMemoryMap{}
}

// ReadMemoryMap reads and parses the memory map for a process
func (w *WindowsMemoryMap) ReadMemoryMap(pid int) ([]MemoryMapItem, error) {
	// TODO: walk the address space with VirtualQueryEx
	return nil, fmt.Errorf("ReadMemoryMap not implemented for Windows")
}

func (w *WindowsMemoryMap) IsReadablePerms(perms string) bool {
	return len(perms) > 0 && perms[0] == 'r'
}

// ReadSelf reads the memory map of the calling process
func ReadSelf() ([]MemoryMapItem, error) {
	return nil, fmt.Errorf("ReadSelf not implemented for Windows")
}

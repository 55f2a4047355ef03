//go:build !linux && !windows

package memory_map

import (
	"fmt"
	"runtime"
)

// ReadSelf reads the memory map of the calling process
func ReadSelf() ([]MemoryMapItem, error) {
	return nil, fmt.Errorf("ReadSelf not implemented for %s", runtime.GOOS)
}

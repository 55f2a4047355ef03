//go:build !linux

package reader

import (
	"fmt"
	"runtime"
)

// NewSelf is only available on Linux
func NewSelf() (ByteReader, error) {
	return nil, fmt.Errorf("vm reader not supported on %s", runtime.GOOS)
}

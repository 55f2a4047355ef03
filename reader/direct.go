package reader

import (
	"errors"
	"runtime/debug"
	"unsafe"

	"tsearch/process"
)

var errNullAddress = errors.New("null address")

// Direct dereferences addresses of the calling process. SIGSEGV and SIGBUS
// raised by the load are turned into a panic by debug.SetPanicOnFault and
// recovered into an ErrFault.
//
// Addresses must not point into the Go heap when the binary is built with
// checkptr instrumentation (-race, -msan).
type Direct struct{}

var _ ByteReader = Direct{}

func NewDirect() Direct {
	return Direct{}
}

// ReadUINT8 reads an unsigned 8-bit integer from the specified address
func (Direct) ReadUINT8(addr process.ProcessMemoryAddress) (v uint8, err error) {
	if addr == 0 {
		return 0, fault(addr, errNullAddress)
	}

	// Fault handling is per goroutine, restore whatever the caller had
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fault(addr, r)
		}
	}()

	return *(*uint8)(unsafe.Pointer(uintptr(addr))), nil
}

// Package reader implements fault-tolerant single byte reads. A read of an
// unmapped or protected address returns an error wrapping process.ErrFault
// instead of crashing the process.
package reader

import (
	"fmt"

	"tsearch/process"
)

// ByteReader reads one byte from an address in the caller's address space
type ByteReader interface {
	// ReadUINT8 reads an unsigned 8-bit integer from the specified address
	ReadUINT8(addr process.ProcessMemoryAddress) (uint8, error)
}

// Kind names a ByteReader implementation selectable from configuration
type Kind string

const (
	KindDirect Kind = "direct" // dereference with fault recovery
	KindVM     Kind = "vm"     // process_vm_readv against the own pid
)

// New returns the reader named by kind
func New(kind Kind) (ByteReader, error) {
	switch kind {
	case KindDirect, "":
		return NewDirect(), nil
	case KindVM:
		r, err := NewSelf()
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown reader kind %q", kind)
	}
}

func fault(addr process.ProcessMemoryAddress, cause any) error {
	if err, ok := cause.(error); ok {
		return fmt.Errorf("read at %s: %w: %w", addr.ToString(), process.ErrFault, err)
	}
	return fmt.Errorf("read at %s: %w: %v", addr.ToString(), process.ErrFault, cause)
}

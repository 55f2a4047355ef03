package reader

import (
	"errors"

	"tsearch/process"
)

var errOutOfBounds = errors.New("address out of bounds")
var errProtected = errors.New("address protected")

// Blob serves reads from an in-memory buffer mapped at a synthetic base
// address. Ranges marked with Protect fault like guard pages.
type Blob struct {
	baseaddress process.ProcessMemoryAddress
	data        []byte
	holes       []process.Region
}

var _ ByteReader = (*Blob)(nil)

func NewBlob(baseAddress process.ProcessMemoryAddress, data []byte) *Blob {
	return &Blob{
		baseaddress: baseAddress,
		data:        data,
	}
}

func (b *Blob) Data() []byte {
	return b.data
}

// Region returns the address range backed by the buffer
func (b *Blob) Region() process.Region {
	return process.Region{Base: b.baseaddress, Size: process.ProcessMemorySize(len(b.data))}
}

// Protect makes reads in [addr, addr+size) fail. It must not be called
// while reads are in flight.
func (b *Blob) Protect(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) *Blob {
	b.holes = append(b.holes, process.Region{Base: addr, Size: size})
	return b
}

func (b *Blob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	region := b.Region()
	if addr < region.Base || addr.Add(size) > region.End() {
		return nil, fault(addr, errOutOfBounds)
	}
	for _, hole := range b.holes {
		if hole.Contains(addr) || (addr < hole.Base && addr.Add(size) > hole.Base) {
			return nil, fault(addr, errProtected)
		}
	}
	offset := addr - b.baseaddress
	return b.data[offset : uint64(offset)+uint64(size)], nil
}

// ReadUINT8 reads an unsigned 8-bit integer from the specified address
func (b *Blob) ReadUINT8(addr process.ProcessMemoryAddress) (uint8, error) {
	data, err := b.ReadMemory(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

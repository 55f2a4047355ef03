package process

import "fmt"

// Region is a contiguous range [Base, Base+Size) of the caller's address space
type Region struct {
	Base ProcessMemoryAddress
	Size ProcessMemorySize
}

// End returns the first address past the region
func (r Region) End() ProcessMemoryAddress {
	return r.Base.Add(r.Size)
}

// Contains reports whether addr lies inside the region
func (r Region) Contains(addr ProcessMemoryAddress) bool {
	return addr >= r.Base && addr < r.End()
}

// IsValid reports whether the region has a non-null base and a non-zero size
func (r Region) IsValid() bool {
	return r.Base != 0 && r.Size != 0
}

func (r Region) String() string {
	return fmt.Sprintf("<%s : %s>", r.Base.ToString(), r.Size.ToString())
}

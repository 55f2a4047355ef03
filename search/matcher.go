package search

import (
	"tsearch/pattern"
	"tsearch/process"
	"tsearch/reader"
)

// Match returns the address of the first offset i in [0, length-len(p)]
// at which every exact token of p equals the byte at addr+i+j. Wildcard
// positions are not read. A read fault rejects the current offset only.
func Match(r reader.ByteReader, addr process.ProcessMemoryAddress, length process.ProcessMemorySize, p pattern.Pattern) (process.ProcessMemoryAddress, bool) {
	n := process.ProcessMemorySize(p.Len())
	if n == 0 || length < n {
		return 0, false
	}

	for i := process.ProcessMemorySize(0); i <= length-n; i++ {
		candidate := addr.Add(i)
		if matchAt(r, candidate, p) {
			return candidate, true
		}
	}

	return 0, false
}

func matchAt(r reader.ByteReader, addr process.ProcessMemoryAddress, p pattern.Pattern) bool {
	for j, token := range p {
		if token.IsWildcard() {
			continue
		}

		v, err := r.ReadUINT8(addr.Add(process.ProcessMemorySize(j)))
		if err != nil || !token.Matches(v) {
			return false
		}
	}
	return true
}

// Package process provides address, size and region types for the caller's own address space
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any readable mapped region.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrFault is returned when a byte cannot be read from an address, e.g. because the
	// page is unmapped or access-protected. Every reader failure wraps it.
	ErrFault = errors.New("memory fault")
)

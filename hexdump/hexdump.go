// Package hexdump renders memory around an address read through a
// fault-tolerant reader. Bytes that cannot be read are shown as "??".
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"tsearch/process"
	"tsearch/reader"

	"github.com/fatih/color"
)

// HexDumpOptions defines options for customizing the hexdump output
type HexDumpOptions struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// ShowASCII determines whether to show the ASCII representation
	ShowASCII bool

	// Color enables ANSI colours
	Color bool

	// Highlight is the address range to highlight, usually a match
	Highlight process.Region
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() HexDumpOptions {
	return HexDumpOptions{
		BytesPerLine: 16,
		ShowASCII:    true,
		Color:        false,
	}
}

type palette struct {
	offset, hex, zero, fault, highlight *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		offset:    color.New(color.FgCyan),
		hex:       color.New(color.FgGreen),
		zero:      color.New(color.FgHiBlack),
		fault:     color.New(color.FgRed),
		highlight: color.New(color.FgYellow, color.BgBlack, color.Bold),
	}
	for _, c := range []*color.Color{p.offset, p.hex, p.zero, p.fault, p.highlight} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// cell is one byte of the dump; ok is false when the read faulted
type cell struct {
	value byte
	ok    bool
}

func readCells(r reader.ByteReader, region process.Region) []cell {
	cells := make([]cell, region.Size)
	for i := range cells {
		v, err := r.ReadUINT8(region.Base.Add(process.ProcessMemorySize(i)))
		cells[i] = cell{value: v, ok: err == nil}
	}
	return cells
}

// Around returns the region of context bytes before and after a match of
// length n at addr. The start saturates at address zero.
func Around(addr process.ProcessMemoryAddress, n, context process.ProcessMemorySize) process.Region {
	start := addr - process.ProcessMemoryAddress(context)
	if process.ProcessMemoryAddress(context) > addr {
		start = 0
	}
	return process.Region{Base: start, Size: process.ProcessMemorySize(addr-start) + n + context}
}

// Dump creates a hex dump of region with specified options
func Dump(r reader.ByteReader, region process.Region, options HexDumpOptions) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, r, region, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of region to the specified writer
func DumpToWriter(writer io.Writer, r reader.ByteReader, region process.Region, options HexDumpOptions) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	pal := newPalette(options.Color)
	cells := readCells(r, region)

	for offset := 0; offset < len(cells); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(cells))
		addr := region.Base.Add(process.ProcessMemorySize(offset))
		formatLine(writer, cells[offset:end], addr, options, pal)
	}
}

// formatLine formats a single line of the hex dump
func formatLine(writer io.Writer, cells []cell, addr process.ProcessMemoryAddress, options HexDumpOptions, pal palette) {
	fmt.Fprint(writer, pal.offset.Sprintf("%016x", uint64(addr)), "  ")

	half := options.BytesPerLine / 2
	hexParts := make([]string, 0, len(cells))
	for i, c := range cells {
		hexParts = append(hexParts, formatHex(c, options.Highlight.Contains(addr.Add(process.ProcessMemorySize(i))), pal))
	}

	if half > 0 && len(hexParts) > half {
		fmt.Fprint(writer, strings.Join(hexParts[:half], " "), "  ", strings.Join(hexParts[half:], " "))
	} else {
		fmt.Fprint(writer, strings.Join(hexParts, " "))
	}

	if !options.ShowASCII {
		fmt.Fprintln(writer)
		return
	}

	// Padding to keep ASCII column aligned on short lines
	if missing := options.BytesPerLine - len(cells); missing > 0 {
		padding := missing * 3
		if half > 0 && len(cells) <= half {
			padding++
		}
		fmt.Fprint(writer, strings.Repeat(" ", padding))
	}

	fmt.Fprint(writer, " |")
	for i, c := range cells {
		fmt.Fprint(writer, formatASCII(c, options.Highlight.Contains(addr.Add(process.ProcessMemorySize(i))), pal))
	}
	fmt.Fprintln(writer, "|")
}

func formatHex(c cell, highlighted bool, pal palette) string {
	switch {
	case !c.ok:
		return pal.fault.Sprint("??")
	case highlighted:
		return pal.highlight.Sprintf("%02x", c.value)
	case c.value == 0:
		return pal.zero.Sprintf("%02x", c.value)
	default:
		return pal.hex.Sprintf("%02x", c.value)
	}
}

func formatASCII(c cell, highlighted bool, pal palette) string {
	ch := "."
	if c.ok && c.value < 0x80 && unicode.IsPrint(rune(c.value)) {
		ch = string(rune(c.value))
	}

	switch {
	case !c.ok:
		return pal.fault.Sprint("?")
	case highlighted:
		return pal.highlight.Sprint(ch)
	default:
		return ch
	}
}

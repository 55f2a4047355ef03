// Package pattern compiles textual byte patterns such as "54 68 ?? 73" into
// tokens that are either an exact byte or a wildcard.
package pattern

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyPattern is returned when the pattern text holds no tokens
var ErrEmptyPattern = errors.New("empty pattern")

// Token is one byte position of a pattern
type Token struct {
	Value byte
	Mask  byte // 0xFF for exact match, 0x00 for wildcard
}

// Exact returns a token that only matches b
func Exact(b byte) Token {
	return Token{Value: b, Mask: 0xFF}
}

// Wildcard returns a token that matches any byte
func Wildcard() Token {
	return Token{}
}

func (t Token) IsWildcard() bool {
	return t.Mask == 0
}

// Matches reports whether b satisfies the token
func (t Token) Matches(b byte) bool {
	return b&t.Mask == t.Value&t.Mask
}

// Pattern is an ordered, immutable sequence of tokens. Token order is
// matching order.
type Pattern []Token

// Compile parses whitespace separated tokens. A token of exactly two hex
// digits (any case) is an exact byte; anything else, "??" by convention,
// is a wildcard. Text that is empty after trimming yields an empty pattern
// and ErrEmptyPattern.
func Compile(text string) (Pattern, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Pattern{}, ErrEmptyPattern
	}

	p := make(Pattern, 0, len(fields))
	for _, field := range fields {
		p = append(p, compileToken(field))
	}

	return p, nil
}

func compileToken(field string) Token {
	if len(field) != 2 || !isHexDigit(field[0]) || !isHexDigit(field[1]) {
		return Wildcard()
	}

	v, err := strconv.ParseUint(field, 16, 8)
	if err != nil {
		return Wildcard()
	}
	return Exact(byte(v))
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Len returns the number of byte positions in the pattern
func (p Pattern) Len() int {
	return len(p)
}

// Bytes returns the pattern values and the mask, wildcard positions zeroed
func (p Pattern) Bytes() (values, mask []byte) {
	values = make([]byte, len(p))
	mask = make([]byte, len(p))
	for i, t := range p {
		values[i] = t.Value & t.Mask
		mask[i] = t.Mask
	}
	return values, mask
}

// String renders the canonical form, upper case hex and "??" for wildcards
func (p Pattern) String() string {
	var sb strings.Builder
	for i, t := range p {
		if i > 0 {
			sb.WriteString(" ")
		}
		if t.IsWildcard() {
			sb.WriteString("??")
		} else {
			sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte{t.Value})))
		}
	}
	return sb.String()
}

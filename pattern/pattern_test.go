package pattern

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Pattern
	}{
		{
			name: "exact bytes",
			text: "54 68 69 73",
			want: Pattern{Exact(0x54), Exact(0x68), Exact(0x69), Exact(0x73)},
		},
		{
			name: "wildcards",
			text: "54 ?? 69 ??",
			want: Pattern{Exact(0x54), Wildcard(), Exact(0x69), Wildcard()},
		},
		{
			name: "mixed case hex",
			text: "aB Cd ef 0F",
			want: Pattern{Exact(0xAB), Exact(0xCD), Exact(0xEF), Exact(0x0F)},
		},
		{
			name: "malformed tokens are wildcards",
			text: "5 123 zz 0x ?",
			want: Pattern{Wildcard(), Wildcard(), Wildcard(), Wildcard(), Wildcard()},
		},
		{
			name: "surrounding and repeated whitespace",
			text: "  \t41\n\n 42   ?? ",
			want: Pattern{Exact(0x41), Exact(0x42), Wildcard()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.text)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compile(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestCompileEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		p, err := Compile(text)
		assert.True(t, errors.Is(err, ErrEmptyPattern), "text %q", text)
		assert.Equal(t, 0, p.Len())
	}
}

func TestTokenMatches(t *testing.T) {
	assert.True(t, Exact(0x41).Matches(0x41))
	assert.False(t, Exact(0x41).Matches(0x42))
	for b := 0; b < 256; b++ {
		assert.True(t, Wildcard().Matches(byte(b)))
	}
}

func TestPatternString(t *testing.T) {
	p, err := Compile("54 68 69 73 ?? 70 72 xx 67 72 61 6d")
	require.NoError(t, err)
	assert.Equal(t, "54 68 69 73 ?? 70 72 ?? 67 72 61 6D", p.String())
}

func TestPatternBytes(t *testing.T) {
	p := Pattern{Exact(0x10), Wildcard(), Exact(0xFF)}
	values, mask := p.Bytes()
	assert.Equal(t, []byte{0x10, 0x00, 0xFF}, values)
	assert.Equal(t, []byte{0xFF, 0x00, 0xFF}, mask)
}

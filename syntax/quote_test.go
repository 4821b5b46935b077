package syntax

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntLiteral(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"1_000_000", 1000000},
		{"0x1F", 31},
		{"0X1f", 31},
		{"0o17", 15},
		{"0O17", 15},
		{"0b101", 5},
		{"0B101", 5},
	}
	for _, c := range cases {
		n, err := parseIntLiteral(c.raw)
		require.NoError(t, err, c.raw)
		assert.Equal(t, big.NewInt(c.want), n, c.raw)
	}
}

func TestParseIntLiteralInvalid(t *testing.T) {
	_, err := parseIntLiteral("0xZZ")
	assert.Error(t, err)
}

func TestParseFloatLiteral(t *testing.T) {
	f, err := parseFloatLiteral("1_000.5")
	require.NoError(t, err)
	assert.Equal(t, 1000.5, f)
}

func TestUnquoteStringEscapes(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`a\nb`, "a\nb"},
		{`a\tb`, "a\tb"},
		{`a\\b`, `a\b`},
		{`a\'b`, "a'b"},
		{`a\"b`, `a"b`},
		{`a\x41b`, "aAb"},
		{`aAb`, "aAb"},
		{`a\qb`, `a\qb`}, // unknown escape passes through literally
	}
	for _, c := range cases {
		got, err := unquoteString(c.body, false, false)
		require.NoError(t, err, c.body)
		assert.Equal(t, c.want, got, c.body)
	}
}

func TestUnquoteStringRawPassesThrough(t *testing.T) {
	got, err := unquoteString(`a\nb`, true, false)
	require.NoError(t, err)
	assert.Equal(t, `a\nb`, got)
}

func TestUnquoteBytes(t *testing.T) {
	b, err := unquoteBytes(`a\x41b`, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("aAb"), b)
}

package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestRoundTripExpr checks spec.md §8's round-trip property: printing the
// AST of a parsed expression and re-parsing the result yields a
// structurally equal tree (ignoring positions, which the printer does not
// attempt to preserve).
func TestRoundTripExpr(t *testing.T) {
	exprs := []string{
		"a + b * c",
		"(a + b) * c",
		"-2 ** 2",
		"2 ** -3",
		"a < b <= c",
		"a is not b",
		"a not in b",
		"a and b or not c",
		"[x for x in xs if x > 0]",
		"{k: v for k, v in items}",
		"(x for x in xs)",
		"a[1:2:3]",
		"a[:, ::2]",
		"f(1, *args, key=2, **kwargs)",
		"lambda a, b=1: a + b",
		"a if cond else b",
		"(1,)",
		"(1, 2, 3)",
	}
	for _, src := range exprs {
		orig := mustParseExpr(t, src)
		printed := String(orig)
		reparsed, err := ParseExpr("test.py", printed)
		require.NoError(t, err, "re-parsing printed form of %q (-> %q)", src, printed)
		if diff := cmp.Diff(orig, reparsed, astCmpOpts); diff != "" {
			t.Errorf("round trip mismatch for %q, printed as %q (-orig +reparsed):\n%s", src, printed, diff)
		}
	}
}

func TestRoundTripProgram(t *testing.T) {
	src := "def f(a, b=1, *args, **kwargs):\n    if a:\n        return a\n    else:\n        return b\n"
	orig, err := Parse("test.py", src)
	require.NoError(t, err)

	printed := String(orig)
	reparsed, err := Parse("test.py", printed)
	require.NoError(t, err, "re-parsing printed program (-> %q)", printed)

	// Compare statement trees only: File.Path differs (original filename vs.
	// the printed-text re-parse), which round-tripping never claims to
	// preserve.
	if diff := cmp.Diff(orig.Stmts, reparsed.Stmts, astCmpOpts); diff != "" {
		t.Errorf("round trip mismatch for program (-orig +reparsed):\n%s", diff)
	}
}

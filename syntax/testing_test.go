package syntax

import (
	"math/big"

	"github.com/google/go-cmp/cmp"
)

// astCmpOpts ignores source positions (irrelevant to structural equality,
// and not meaningfully comparable across independently-parsed trees) and
// teaches cmp how to compare the *big.Int payload an INT Literal carries,
// since big.Int has unexported fields cmp would otherwise refuse to walk
// into.
var astCmpOpts = cmp.Options{
	cmp.Comparer(func(a, b Position) bool { return true }),
	cmp.Comparer(func(a, b *big.Int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	}),
}

func mustParseExpr(t interface{ Fatalf(string, ...interface{}) }, src string) Expr {
	e, err := ParseExpr("test.py", src)
	if err != nil {
		t.Fatalf("ParseExpr(%q): %v", src, err)
	}
	return e
}

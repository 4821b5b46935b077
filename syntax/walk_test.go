package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkVisitsEveryIdent(t *testing.T) {
	e := mustParseExpr(t, "a + b * c")
	var names []string
	Walk(e, func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			names = append(names, id.Name)
		}
		return true
	})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
}

func TestWalkStopsDescendingWhenVisitReturnsFalse(t *testing.T) {
	e := mustParseExpr(t, "a + b")
	var visited []Node
	Walk(e, func(n Node) bool {
		visited = append(visited, n)
		return false // never descend
	})
	require.Len(t, visited, 1, "only the root BinaryExpr should be visited")
}

func TestWalkOverFunctionDefCoversParamsAndBody(t *testing.T) {
	f, err := Parse("test.py", "def f(a, b=1):\n    return a + b\n")
	require.NoError(t, err)
	var names []string
	Walk(f, func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			names = append(names, id.Name)
		}
		return true
	})
	assert.Contains(t, names, "f")
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "b")
}

func TestWalkHandlesOptionalExceptNameWithoutPanic(t *testing.T) {
	f, err := Parse("test.py", "try:\n    pass\nexcept:\n    pass\n")
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		Walk(f, func(n Node) bool { return true })
	})
}

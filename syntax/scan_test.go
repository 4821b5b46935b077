package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTokens(t *testing.T, src string, entry Token) []Token {
	sc, err := newScanner("test.py", src, entry)
	require.NoError(t, err)
	var toks []Token
	var val tokenValue
	for {
		tok := sc.nextToken(&val)
		toks = append(toks, tok)
		if tok == EOF {
			break
		}
	}
	return toks
}

func TestScanEntrySentinelIsFirstToken(t *testing.T) {
	toks := collectTokens(t, "pass\n", StartStatement)
	require.NotEmpty(t, toks)
	assert.Equal(t, StartStatement, toks[0])
}

func TestScanIndentOutdent(t *testing.T) {
	toks := collectTokens(t, "if a:\n    pass\npass\n", StartProgram)
	assert.Contains(t, toks, INDENT)
	assert.Contains(t, toks, OUTDENT)
}

func TestScanThreeDotsIsEllipsis(t *testing.T) {
	toks := collectTokens(t, "...", StartExpression)
	assert.Contains(t, toks, ELLIPSIS)
	assert.NotContains(t, toks, DOT)
}

func TestScanTwoDotsIsTwoSeparateDots(t *testing.T) {
	toks := collectTokens(t, "a..b", StartExpression)
	count := 0
	for _, tok := range toks {
		if tok == DOT {
			count++
		}
	}
	assert.Equal(t, 2, count)
	assert.NotContains(t, toks, ELLIPSIS)
}

func TestScanBlankAndCommentLinesStillEmitNewline(t *testing.T) {
	toks := collectTokens(t, "pass\n\n# comment\npass\n", StartProgram)
	newlineCount := 0
	for _, tok := range toks {
		if tok == NEWLINE {
			newlineCount++
		}
	}
	assert.GreaterOrEqual(t, newlineCount, 3)
}

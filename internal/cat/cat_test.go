package cat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenKinds(t *testing.T, src string) []Kind {
	t.Helper()
	c := New([]byte(src))
	var kinds []Kind
	for {
		tok, ok := c.Next()
		if !ok {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func TestCatBasic(t *testing.T) {
	kinds := tokenKinds(t, "foo  bar\n")
	require.Equal(t, []Kind{Text, Whitespace, Text, Newline}, kinds)
}

func TestCatSymbolsAndBacktick(t *testing.T) {
	c := New([]byte("`foo(a,b)"))
	tok, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, Symbol, tok.Kind)
	require.Equal(t, '`', tok.Symbol)

	tok, ok = c.Next()
	require.True(t, ok)
	require.Equal(t, Text, tok.Kind)
	require.Equal(t, "foo", string([]byte("`foo(a,b)")[tok.Begin:tok.End]))
}

func TestCatComments(t *testing.T) {
	kinds := tokenKinds(t, "// line\n/* block\ncomment */x")
	require.Equal(t, []Kind{Comment, Newline, Comment, Text}, kinds)
}

func TestCatSpansRoundtrip(t *testing.T) {
	src := "hello world, 42"
	c := New([]byte(src))
	var rebuilt []byte
	for {
		tok, ok := c.Next()
		if !ok {
			break
		}
		rebuilt = append(rebuilt, src[tok.Begin:tok.End]...)
	}
	require.Equal(t, src, string(rebuilt))
}

func TestCatEmpty(t *testing.T) {
	kinds := tokenKinds(t, "")
	require.Empty(t, kinds)
}

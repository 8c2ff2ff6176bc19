// Package parser implements the minimal SystemVerilog surface-syntax
// grammar this front end accepts: module headers, parameter and port
// lists, instantiations, variable declarations, and the small procedural
// statement subset the HIR data model names. The grammar itself is out of
// scope for the specified core (spec.md §1 lists the parser as an
// external collaborator); this package exists only to give the query and
// elaborate packages real design text to run against, written as a
// straightforward hand-rolled recursive-descent parser in the same style
// as the preprocessor it sits downstream of.
package parser

import (
	"github.com/stefanlippuner/moore/internal/cat"
	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/preproc"
	"github.com/stefanlippuner/moore/internal/source"
)

// TokenSource is anything that streams preprocessed tokens — satisfied by
// *preproc.Preprocessor, and by a canned slice in tests.
type TokenSource interface {
	Next() (preproc.TokenAndSpan, bool, error)
}

// sliceSource lets tests feed the parser a fixed token list without going
// through the preprocessor.
type sliceSource struct {
	toks []preproc.TokenAndSpan
	pos  int
}

func (s *sliceSource) Next() (preproc.TokenAndSpan, bool, error) {
	if s.pos >= len(s.toks) {
		return preproc.TokenAndSpan{}, false, nil
	}
	t := s.toks[s.pos]
	s.pos++
	return t, true, nil
}

// lexer adapts a TokenSource into the parser's lookahead interface,
// dropping whitespace, newlines, and comments — the grammar never needs
// them since the preprocessor has already resolved every directive. The
// underlying TokenSource is forward-only (a live *preproc.Preprocessor
// cannot be rewound), so any lookahead beyond the current token is
// buffered here rather than implemented by snapshotting and restoring
// lexer state.
type lexer struct {
	src  TokenSource
	buf  []preproc.TokenAndSpan
	done bool
}

func newLexer(src TokenSource) *lexer {
	return &lexer{src: src}
}

// fill ensures at least n+1 tokens are buffered (or input is exhausted).
func (l *lexer) fill(n int) {
	for !l.done && len(l.buf) <= n {
		t, ok, err := l.src.Next()
		if err != nil || !ok {
			// A preprocessor-level error has already been reported through
			// the shared sink; the parser just sees end of input.
			l.done = true
			return
		}
		switch t.Kind {
		case cat.Whitespace, cat.Newline, cat.Comment:
			continue
		}
		l.buf = append(l.buf, t)
	}
}

func (l *lexer) peek() (preproc.TokenAndSpan, bool) {
	return l.peekAt(0)
}

func (l *lexer) peekAt(n int) (preproc.TokenAndSpan, bool) {
	l.fill(n)
	if n >= len(l.buf) {
		return preproc.TokenAndSpan{}, false
	}
	return l.buf[n], true
}

func (l *lexer) bump() preproc.TokenAndSpan {
	t, ok := l.peek()
	if !ok {
		return preproc.TokenAndSpan{}
	}
	l.buf = l.buf[1:]
	return t
}

func (l *lexer) text() string {
	t, ok := l.peek()
	if !ok {
		return ""
	}
	return t.Span.Extract()
}

func (l *lexer) textAt(n int) string {
	t, ok := l.peekAt(n)
	if !ok {
		return ""
	}
	return t.Span.Extract()
}

func (l *lexer) isText(s string) bool {
	t, ok := l.peek()
	return ok && t.Kind == cat.Text && t.Span.Extract() == s
}

func (l *lexer) isTextAt(n int, s string) bool {
	t, ok := l.peekAt(n)
	return ok && t.Kind == cat.Text && t.Span.Extract() == s
}

func (l *lexer) isSymbol(r rune) bool {
	t, ok := l.peek()
	return ok && t.Kind == cat.Symbol && t.Symbol == r
}

func (l *lexer) isSymbolAt(n int, r rune) bool {
	t, ok := l.peekAt(n)
	return ok && t.Kind == cat.Symbol && t.Symbol == r
}

func (l *lexer) isTextKind() bool {
	t, ok := l.peek()
	return ok && t.Kind == cat.Text
}

// fail builds a PAR001 report anchored at the current token, or a PAR002
// report with no span when input is exhausted, and returns it as an error.
func (l *lexer) fail(want string) error {
	tok, ok := l.peek()
	if !ok {
		return diag.Fatalf("parser", diag.ParUnexpectedEOF, "unexpected end of input, expected %s", want).Build()
	}
	return diag.Fatalf("parser", diag.ParUnexpectedToken, "unexpected `%s`, expected %s", tok.Span.Extract(), want).
		Span(tok.Span).Build()
}

func (l *lexer) span() source.Span {
	if tok, ok := l.peek(); ok {
		return tok.Span
	}
	return source.Span{}
}

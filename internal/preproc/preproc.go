// Package preproc implements the SystemVerilog preprocessor: a streaming
// token filter that resolves `include, conditional compilation, and
// parameterised text-macro expansion over a stack of nested input
// streams while preserving source-location provenance. It is a direct
// port of original_source/src/svlog/preproc.rs, restructured around Go's
// iterator idiom (Next returning ok/err) instead of Rust's
// Iterator<Item = DiagResult2<...>>.
package preproc

import (
	"path/filepath"

	"github.com/stefanlippuner/moore/internal/cat"
	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/source"
)

// TokenAndSpan is one preprocessed token: its category kind plus the span
// of original source text it names. Macro expansion and include splicing
// never synthesize spans — every TokenAndSpan here points at real bytes in
// some Source (spec.md §4.1 observable contract).
type TokenAndSpan struct {
	Kind   cat.Kind
	Symbol rune
	Span   source.Span
}

func (t TokenAndSpan) isSymbol(r rune) bool {
	return t.Kind == cat.Symbol && t.Symbol == r
}

type streamFrame struct {
	src  source.Source
	iter *cat.Cat
}

// defcond is the tri-state entry on the conditional-compilation stack.
type defcond int

const (
	condEnabled defcond = iota
	condDisabled
	condDone
)

// Preprocessor streams (CatTokenKind, Span) pairs out of a root source,
// splicing in included files and expanding macros as directives are
// encountered. Create one with New and drain it with Next.
type Preprocessor struct {
	sources      *source.Manager
	includePaths []string
	sink         *diag.Sink

	// stack is the nested input streams; the topmost stream supplies the
	// next raw token until exhausted, at which point it is popped.
	stack []*streamFrame

	// contents pins every source touched by this preprocessor so that
	// spans handed to callers remain valid for the preprocessor's
	// lifetime (spec.md §4.1 state, §5 memory lifetime). The underlying
	// source.Manager never evicts content either, but this slice
	// documents and enforces the preprocessor's own half of that
	// contract independent of which Manager it was given.
	contents []*source.Content

	// pending is the macro-body playback stack: tokens queued for
	// injection before the next raw read, pushed in reverse order so a
	// plain pop yields them in original order.
	pending []TokenAndSpan

	macros    map[string]*macroDef
	condStack []defcond

	cur         TokenAndSpan
	curValid    bool
	initialized bool
	done        bool
}

// New creates a preprocessor rooted at root, searching includePaths (in
// addition to root's own directory) for `include targets. Diagnostics are
// emitted to sink as they are discovered.
func New(sm *source.Manager, root source.Source, includePaths []string, sink *diag.Sink) *Preprocessor {
	p := &Preprocessor{
		sources:      sm,
		includePaths: includePaths,
		sink:         sink,
		macros:       make(map[string]*macroDef),
	}
	p.pushStream(root)
	return p
}

func (p *Preprocessor) pushStream(src source.Source) {
	content := src.Content()
	p.contents = append(p.contents, content)
	p.stack = append(p.stack, &streamFrame{src: src, iter: content.Iter()})
}

// bump advances to the next token, preferring injected macro-body tokens
// over raw stream input, and transparently popping exhausted streams.
func (p *Preprocessor) bump() {
	if n := len(p.pending); n > 0 {
		p.cur = p.pending[n-1]
		p.pending = p.pending[:n-1]
		p.curValid = true
		return
	}
	for {
		if len(p.stack) == 0 {
			p.curValid = false
			return
		}
		top := p.stack[len(p.stack)-1]
		tok, ok := top.iter.Next()
		if !ok {
			p.stack = p.stack[:len(p.stack)-1]
			continue
		}
		p.cur = TokenAndSpan{
			Kind:   tok.Kind,
			Symbol: tok.Symbol,
			Span:   source.NewSpan(top.src, tok.Begin, tok.End),
		}
		p.curValid = true
		return
	}
}

// skipOneWhitespace bumps past a single following Whitespace token, if any.
// Directive handlers call this to skip the space between a directive
// keyword and its first argument; it never skips more than one token,
// matching the original's `match self.token { Some((Whitespace, _)) =>
// self.bump(), _ => () }` idiom used throughout.
func (p *Preprocessor) skipOneWhitespace() {
	if p.curValid && p.cur.Kind == cat.Whitespace {
		p.bump()
	}
}

func (p *Preprocessor) isInactive() bool {
	if len(p.condStack) == 0 {
		return false
	}
	return p.condStack[len(p.condStack)-1] != condEnabled
}

// Next returns the next preprocessed token. ok is false both at a natural
// end of input (err is nil) and after a fatal diagnostic has been emitted
// (err is non-nil, wrapping the *diag.Report); once a fatal has occurred,
// every subsequent call returns (zero, false, nil).
func (p *Preprocessor) Next() (TokenAndSpan, bool, error) {
	if p.done {
		return TokenAndSpan{}, false, nil
	}
	if !p.initialized {
		p.bump()
		p.initialized = true
	}

	for {
		if !p.curValid {
			return TokenAndSpan{}, false, nil
		}

		if p.cur.isSymbol('`') {
			backtickSpan := p.cur.Span
			p.bump()
			switch {
			case p.curValid && p.cur.Kind == cat.Text:
				nameSpan := p.cur.Span
				name := nameSpan.Extract()
				dirSpan := source.Union(backtickSpan, nameSpan)
				if rep := p.handleDirective(name, dirSpan); rep != nil {
					return p.fail(rep)
				}
				p.bump()
				continue
			case p.curValid && p.cur.isSymbol('`'):
				rep := diag.Fatalf("preproc", diag.PPStrayBacktick,
					"preprocessor concatenation '``' used outside of `define").
					Span(source.Union(backtickSpan, p.cur.Span)).Build()
				return p.fail(rep)
			default:
				rep := diag.Fatalf("preproc", diag.PPStrayBacktick,
					"expected compiler directive after '`'").Span(backtickSpan).Build()
				return p.fail(rep)
			}
		}

		if p.isInactive() {
			p.bump()
			continue
		}

		tok := p.cur
		p.bump()
		return tok, true, nil
	}
}

func (p *Preprocessor) fail(rep *diag.Report) (TokenAndSpan, bool, error) {
	p.sink.Emit(rep)
	p.done = true
	return TokenAndSpan{}, false, rep
}

func (p *Preprocessor) openInclude(filename, currentFile string) (source.Source, bool) {
	prefixes := make([]string, 0, 1+len(p.includePaths))
	prefixes = append(prefixes, filepath.Dir(currentFile))
	prefixes = append(prefixes, p.includePaths...)
	for _, prefix := range prefixes {
		candidate := filepath.Join(prefix, filename)
		if src, ok := p.sources.Open(candidate); ok {
			return src, true
		}
	}
	return source.Source{}, false
}

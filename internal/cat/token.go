package cat

import "fmt"

// Kind categorizes one token of raw input text. This is deliberately
// coarser than a full SystemVerilog token kind: the preprocessor only
// needs to recognize backticks, text runs (identifiers/keywords/numbers),
// whitespace, newlines, comments, and punctuation symbols to resolve
// directives; everything else is opaque payload for the downstream parser.
type Kind int

const (
	// Text is a maximal run of identifier/keyword/number characters.
	Text Kind = iota
	// Whitespace is a run of spaces, tabs, and carriage returns (not
	// newlines).
	Whitespace
	// Newline is a single line terminator.
	Newline
	// Symbol is a single punctuation character, e.g. '(' ',' '`' '"'.
	Symbol
	// Comment is a line (//) or block (/* */) comment, including its
	// delimiters.
	Comment
	// EOF marks the end of input and is never emitted by the iterator
	// (Next returns ok=false instead); it exists so callers can print a
	// sensible kind name for the implicit end state.
	EOF
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "Text"
	case Whitespace:
		return "Whitespace"
	case Newline:
		return "Newline"
	case Symbol:
		return "Symbol"
	case Comment:
		return "Comment"
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one category token: its kind, the punctuation rune it carries
// when Kind == Symbol, and the half-open byte range [Begin, End) it spans
// within the content it was scanned from.
type Token struct {
	Kind   Kind
	Symbol rune
	Begin  int
	End    int
}

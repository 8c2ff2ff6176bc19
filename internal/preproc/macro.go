package preproc

import "github.com/stefanlippuner/moore/internal/source"

// macroArg is one formal parameter of a parameterised macro.
type macroArg struct {
	name string
	span source.Span
}

// macroDef is a `define table entry: a name, an optional formal-argument
// list, and the raw token body to splice in on expansion. Mirrors the
// original's svlog::preproc::Macro, minus the span bookkeeping for
// diagnostics the Go Span already carries.
type macroDef struct {
	name     string
	nameSpan source.Span
	args     []macroArg
	body     []TokenAndSpan
}

package preproc

import (
	"github.com/stefanlippuner/moore/internal/cat"
	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/source"
)

// handleDirective dispatches on the directive keyword following a
// backtick. It returns a non-nil *diag.Report exactly when the directive
// could not be processed and the stream must stop; all of the directive's
// own token consumption happens here, leaving p.cur on a token that the
// bump Next performs afterwards discards (the directive's last token, or
// the newline ending the directive's line) once this returns nil.
func (p *Preprocessor) handleDirective(name string, dirSpan source.Span) *diag.Report {
	switch name {
	case "include":
		return p.handleInclude(dirSpan)
	case "define":
		return p.handleDefine(dirSpan)
	case "undef":
		return p.handleUndef(dirSpan)
	case "undefineall":
		return p.handleUndefineall(dirSpan)
	case "ifdef":
		return p.handleIfdef(dirSpan, true)
	case "ifndef":
		return p.handleIfdef(dirSpan, false)
	case "elsif":
		return p.handleElsif(dirSpan)
	case "else":
		return p.handleElse(dirSpan)
	case "endif":
		return p.handleEndif(dirSpan)
	default:
		return p.handleMacroInvocation(name, dirSpan)
	}
}

func (p *Preprocessor) handleInclude(dirSpan source.Span) *diag.Report {
	if p.isInactive() {
		return nil
	}
	p.bump()
	p.skipOneWhitespace()

	var closing rune
	switch {
	case p.curValid && p.cur.isSymbol('"'):
		closing = '"'
	case p.curValid && p.cur.isSymbol('<'):
		closing = '>'
	default:
		return diag.Fatalf("preproc", diag.PPMalformedDirective,
			"expected filename inside double quotes or angle brackets after `include").
			Span(dirSpan).Build()
	}
	openSpan := p.cur.Span
	p.bump()

	filename := ""
	var closeSpan source.Span
	for {
		if !p.curValid {
			return diag.Fatalf("preproc", diag.PPMalformedDirective,
				"expected filename to be terminated before end of input").Span(dirSpan).Build()
		}
		if p.cur.isSymbol(closing) {
			closeSpan = p.cur.Span
			break
		}
		if p.cur.Kind == cat.Newline {
			return diag.Fatalf("preproc", diag.PPMalformedDirective,
				"expected include filename's closing delimiter before end of line").
				Span(p.cur.Span).Build()
		}
		filename += p.cur.Span.Extract()
		p.bump()
	}
	nameSpan := source.Union(openSpan, closeSpan)

	src, ok := p.openInclude(filename, dirSpan.Src.Path())
	if !ok {
		return diag.Fatalf("preproc", diag.PPIncludeFailed,
			"cannot open included file %q", filename).Span(nameSpan).Build()
	}
	// Push the new stream but do not bump here: the single bump Next
	// performs after handleDirective returns pulls the included file's
	// first token, the same way it drops this directive line's own
	// trailing newline for `define and friends.
	p.pushStream(src)
	return nil
}

func (p *Preprocessor) handleDefine(dirSpan source.Span) *diag.Report {
	if p.isInactive() {
		return nil
	}
	p.bump()
	p.skipOneWhitespace()

	if !p.curValid || p.cur.Kind != cat.Text {
		return diag.Fatalf("preproc", diag.PPMalformedDirective,
			"expected macro name after `define").Span(dirSpan).Build()
	}
	name := p.cur.Span.Extract()
	nameSpan := p.cur.Span
	p.bump()

	def := &macroDef{name: name, nameSpan: nameSpan}

	// No whitespace skip here: an immediately-following '(' means a
	// parameter list, a space before it means the '(' is the first token
	// of the body.
	if p.curValid && p.cur.isSymbol('(') {
		p.bump()
	argLoop:
		for {
			p.skipOneWhitespace()
			if p.curValid && p.cur.isSymbol(')') {
				break
			}
			if !p.curValid || p.cur.Kind != cat.Text {
				return diag.Fatalf("preproc", diag.PPMalformedDirective,
					"expected macro argument name").Span(dirSpan).Build()
			}
			def.args = append(def.args, macroArg{name: p.cur.Span.Extract(), span: p.cur.Span})
			p.bump()
			p.skipOneWhitespace()
			switch {
			case p.curValid && p.cur.isSymbol(','):
				p.bump()
				continue argLoop
			case p.curValid && p.cur.isSymbol(')'):
				break argLoop
			case p.curValid:
				return diag.Fatalf("preproc", diag.PPMalformedDirective,
					"expected ',' or ')' after macro argument name").Span(p.cur.Span).Build()
			default:
				return diag.Fatalf("preproc", diag.PPMalformedDirective,
					"expected closing parenthesis after macro arguments").Span(dirSpan).Build()
			}
		}
		p.bump() // consume ')'
	}
	p.skipOneWhitespace()

	for p.curValid && p.cur.Kind != cat.Newline {
		if p.cur.isSymbol('\\') {
			p.bump()
			if p.curValid && p.cur.Kind == cat.Newline {
				p.bump()
			}
			continue
		}
		def.body = append(def.body, p.cur)
		p.bump()
	}

	p.macros[name] = def
	return nil
}

func (p *Preprocessor) handleUndef(dirSpan source.Span) *diag.Report {
	if p.isInactive() {
		return nil
	}
	p.bump()
	p.skipOneWhitespace()
	if !p.curValid || p.cur.Kind != cat.Text {
		return diag.Fatalf("preproc", diag.PPMalformedDirective,
			"expected macro name after `undef").Span(dirSpan).Build()
	}
	delete(p.macros, p.cur.Span.Extract())
	p.bump()
	return nil
}

func (p *Preprocessor) handleUndefineall(dirSpan source.Span) *diag.Report {
	if p.isInactive() {
		return nil
	}
	p.macros = make(map[string]*macroDef)
	p.bump()
	return nil
}

func (p *Preprocessor) handleIfdef(dirSpan source.Span, wantDefined bool) *diag.Report {
	keyword := "ifdef"
	if !wantDefined {
		keyword = "ifndef"
	}
	p.bump()
	p.skipOneWhitespace()
	if !p.curValid || p.cur.Kind != cat.Text {
		return diag.Fatalf("preproc", diag.PPMalformedDirective,
			"expected macro name after `%s", keyword).Span(dirSpan).Build()
	}
	_, exists := p.macros[p.cur.Span.Extract()]
	p.bump()

	if exists == wantDefined {
		p.condStack = append(p.condStack, condEnabled)
	} else {
		p.condStack = append(p.condStack, condDisabled)
	}
	return nil
}

func (p *Preprocessor) handleElsif(dirSpan source.Span) *diag.Report {
	top, ok := p.popCond()
	if !ok {
		return diag.Fatalf("preproc", diag.PPUnbalancedConditional,
			"found `elsif without a matching `ifdef or `ifndef").Span(dirSpan).Build()
	}
	p.bump()
	p.skipOneWhitespace()
	if !p.curValid || p.cur.Kind != cat.Text {
		return diag.Fatalf("preproc", diag.PPMalformedDirective,
			"expected macro name after `elsif").Span(dirSpan).Build()
	}
	_, exists := p.macros[p.cur.Span.Extract()]
	p.bump()

	switch top {
	case condEnabled, condDone:
		p.condStack = append(p.condStack, condDone)
	case condDisabled:
		if exists {
			p.condStack = append(p.condStack, condEnabled)
		} else {
			p.condStack = append(p.condStack, condDisabled)
		}
	}
	return nil
}

func (p *Preprocessor) handleElse(dirSpan source.Span) *diag.Report {
	top, ok := p.popCond()
	if !ok {
		return diag.Fatalf("preproc", diag.PPUnbalancedConditional,
			"found `else without a matching `ifdef or `ifndef").Span(dirSpan).Build()
	}
	if top == condDisabled {
		p.condStack = append(p.condStack, condEnabled)
	} else {
		p.condStack = append(p.condStack, condDone)
	}
	p.bump()
	return nil
}

func (p *Preprocessor) handleEndif(dirSpan source.Span) *diag.Report {
	if _, ok := p.popCond(); !ok {
		return diag.Fatalf("preproc", diag.PPUnbalancedConditional,
			"found `endif without a matching `ifdef or `ifndef").Span(dirSpan).Build()
	}
	p.bump()
	return nil
}

func (p *Preprocessor) popCond() (defcond, bool) {
	n := len(p.condStack)
	if n == 0 {
		return 0, false
	}
	top := p.condStack[n-1]
	p.condStack = p.condStack[:n-1]
	return top, true
}

// handleMacroInvocation expands a use of a previously `defined macro,
// substituting actual arguments for formals and splicing the resulting
// token sequence in front of the stream via the pending-injection stack.
func (p *Preprocessor) handleMacroInvocation(name string, dirSpan source.Span) *diag.Report {
	if p.isInactive() {
		return nil
	}
	def, ok := p.macros[name]
	if !ok {
		return diag.Fatalf("preproc", diag.PPUnknownDirective,
			"unknown compiler directive `%s", name).Span(dirSpan).Build()
	}

	params := make(map[string][]TokenAndSpan)
	if len(def.args) > 0 {
		p.bump()
		p.skipOneWhitespace()
		if !p.curValid || !p.cur.isSymbol('(') {
			return diag.Fatalf("preproc", diag.PPMalformedDirective,
				"expected macro parameters in parentheses after `%s", name).Span(dirSpan).Build()
		}
		p.bump()

		argIdx := 0
	paramLoop:
		for {
			if argIdx >= len(def.args) {
				return diag.Fatalf("preproc", diag.PPMalformedDirective,
					"superfluous macro parameters").Span(dirSpan).Build()
			}
			argName := def.args[argIdx].name
			argIdx++
			var tokens []TokenAndSpan
			nesting := 0
			for {
				if !p.curValid {
					return diag.Fatalf("preproc", diag.PPMalformedDirective,
						"expected closing parenthesis after macro parameters").Span(dirSpan).Build()
				}
				switch {
				case p.cur.isSymbol(',') && nesting == 0:
					params[argName] = tokens
					p.bump()
					continue paramLoop
				case p.cur.isSymbol(')') && nesting == 0:
					// Leave the closing ')' as the current token: the bump
					// Next performs after this handler discards it.
					params[argName] = tokens
					break paramLoop
				case p.cur.isSymbol('('):
					nesting++
					tokens = append(tokens, p.cur)
					p.bump()
				case p.cur.isSymbol(')'):
					nesting--
					tokens = append(tokens, p.cur)
					p.bump()
				default:
					tokens = append(tokens, p.cur)
					p.bump()
				}
			}
		}
	}

	var expansion []TokenAndSpan
	if len(def.args) == 0 {
		expansion = def.body
	} else {
		expansion = make([]TokenAndSpan, 0, len(def.body))
		for _, tok := range def.body {
			if tok.Kind == cat.Text {
				if actual, ok := params[tok.Span.Extract()]; ok {
					expansion = append(expansion, actual...)
					continue
				}
			}
			expansion = append(expansion, tok)
		}
	}

	for i := len(expansion) - 1; i >= 0; i-- {
		p.pending = append(p.pending, expansion[i])
	}
	return nil
}

package parser

import (
	"github.com/stefanlippuner/moore/internal/ast"
	"github.com/stefanlippuner/moore/internal/cat"
	"github.com/stefanlippuner/moore/internal/source"
)

// Parser turns a token stream into a raw ast.File.
type Parser struct {
	lx *lexer
}

// New creates a Parser reading from src.
func New(src TokenSource) *Parser {
	return &Parser{lx: newLexer(src)}
}

// ParseFile parses a whole compilation unit: zero or more module
// declarations until the input is exhausted.
func (p *Parser) ParseFile() (*ast.File, error) {
	f := &ast.File{}
	for {
		if _, ok := p.lx.peek(); !ok {
			return f, nil
		}
		mod, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		f.Modules = append(f.Modules, mod)
	}
}

func (p *Parser) expectText(word string) (source.Span, error) {
	if !p.lx.isText(word) {
		return source.Span{}, p.lx.fail("`" + word + "`")
	}
	return p.lx.bump().Span, nil
}

func (p *Parser) expectSymbol(r rune) (source.Span, error) {
	if !p.lx.isSymbol(r) {
		return source.Span{}, p.lx.fail(string(r))
	}
	return p.lx.bump().Span, nil
}

func (p *Parser) parseIdent() (source.Spanned[string], error) {
	tok, ok := p.lx.peek()
	if !ok || tok.Kind != cat.Text {
		return source.Spanned[string]{}, p.lx.fail("an identifier")
	}
	p.lx.bump()
	return source.Spanned[string]{Value: tok.Span.Extract(), Span: tok.Span}, nil
}

// parseModule parses `module name [#( params )] ( ports ) ; items*
// endmodule`.
func (p *Parser) parseModule() (*ast.Module, error) {
	begin, err := p.expectText("module")
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	m := &ast.Module{Name: name}

	if p.lx.isSymbol('#') {
		p.lx.bump()
		if _, err := p.expectSymbol('('); err != nil {
			return nil, err
		}
		for !p.lx.isSymbol(')') {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			m.Params = append(m.Params, param)
			if p.lx.isSymbol(',') {
				p.lx.bump()
				continue
			}
			break
		}
		if _, err := p.expectSymbol(')'); err != nil {
			return nil, err
		}
	}

	if _, err := p.expectSymbol('('); err != nil {
		return nil, err
	}
	for !p.lx.isSymbol(')') {
		port, err := p.parsePort()
		if err != nil {
			return nil, err
		}
		m.Ports = append(m.Ports, port)
		if p.lx.isSymbol(',') {
			p.lx.bump()
			continue
		}
		break
	}
	if _, err := p.expectSymbol(')'); err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(';'); err != nil {
		return nil, err
	}

	for !p.lx.isText("endmodule") {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, item)
	}
	end, err := p.expectText("endmodule")
	if err != nil {
		return nil, err
	}
	m.Extent = source.Union(begin, end)
	return m, nil
}

// parseParam parses one `[localparam|parameter] [type] name [= expr]`
// entry of a parameter port list.
func (p *Parser) parseParam() (*ast.Param, error) {
	begin := p.lx.span()
	local := false
	switch {
	case p.lx.isText("localparam"):
		p.lx.bump()
		local = true
	case p.lx.isText("parameter"):
		p.lx.bump()
	}

	isType := false
	if p.lx.isText("type") {
		p.lx.bump()
		isType = true
	}

	var ty *ast.Type
	if !isType {
		if t, ok := p.tryParseType(); ok {
			ty = t
		}
	}

	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	param := &ast.Param{Name: name, IsType: isType, Local: local, Ty: ty}
	if p.lx.isSymbol('=') {
		p.lx.bump()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		param.Default = expr
	}
	param.Span = source.Union(begin, name.Span)
	return param, nil
}

// parsePort parses one `dir [type] name [= expr]` entry of a port list.
func (p *Parser) parsePort() (*ast.Port, error) {
	begin := p.lx.span()
	dir := "input"
	switch {
	case p.lx.isText("input"), p.lx.isText("output"), p.lx.isText("inout"), p.lx.isText("ref"):
		dir = p.lx.text()
		p.lx.bump()
	}

	ty, _ := p.tryParseType()

	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	port := &ast.Port{Name: name, Dir: dir, Ty: ty}
	if p.lx.isSymbol('=') {
		p.lx.bump()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		port.Default = expr
	}
	port.Span = source.Union(begin, name.Span)
	return port, nil
}

var builtinTypeNames = map[string]bool{
	"void": true, "bit": true, "logic": true, "byte": true,
	"shortint": true, "int": true, "longint": true,
}

// tryParseType consumes a leading type token if one is present. Since a
// bare identifier can start either a type or a declaration's own name,
// the caller is responsible for requiring a following identifier; a
// builtin keyword is unambiguous, so only those are consumed here.
func (p *Parser) tryParseType() (*ast.Type, bool) {
	if !p.lx.isTextKind() {
		return nil, false
	}
	word := p.lx.text()
	if !builtinTypeNames[word] {
		return nil, false
	}
	span := p.lx.bump().Span
	return &ast.Type{Span: span, Builtin: word}, true
}

// parseItem parses one module-body item: an instantiation, a variable
// declaration, or a procedural block.
func (p *Parser) parseItem() (ast.Item, error) {
	switch {
	case p.lx.isText("initial"), p.lx.isText("always"), p.lx.isText("always_comb"),
		p.lx.isText("always_latch"), p.lx.isText("always_ff"), p.lx.isText("final"):
		return p.parseProc()
	}

	if ty, ok := p.tryParseType(); ok {
		return p.parseVarDeclTail(ty)
	}

	// Bare identifier: either `Target name(...);` (instantiation) or
	// `name name2 [= expr];` (a declaration using a named/unrecognized
	// type). Disambiguate by looking at what follows the first
	// identifier.
	first, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	if p.lx.isSymbol('#') || p.lx.isTextKind() {
		return p.parseInstTail(first)
	}
	return p.parseVarDeclTail(&ast.Type{Span: first.Span, Named: first})
}

func (p *Parser) parseInstTail(target source.Spanned[string]) (*ast.Inst, error) {
	inst := &ast.Inst{TargetName: target, TargetSpan: target.Span}
	if p.lx.isSymbol('#') {
		p.lx.bump()
		if _, err := p.expectSymbol('('); err != nil {
			return nil, err
		}
		pos, named, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		inst.PosParams, inst.NamedParams = pos, named
		if _, err := p.expectSymbol(')'); err != nil {
			return nil, err
		}
	}

	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	inst.Name = name

	if _, err := p.expectSymbol('('); err != nil {
		return nil, err
	}
	pos, named, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	inst.PosPorts, inst.NamedPorts = pos, named
	end, err := p.expectSymbol(')')
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(';'); err != nil {
		return nil, err
	}
	inst.Span = source.Union(target.Span, end)
	return inst, nil
}

// parseArgList parses a comma-separated list of either plain expressions
// (positional) or `.name(expr)` bindings (named). Each entry may take
// either form, so one list can mix them; positional entries are returned
// in order in the first slice and named ones in the second.
func (p *Parser) parseArgList() ([]ast.Expr, []ast.NamedArg, error) {
	var pos []ast.Expr
	var named []ast.NamedArg
	for !p.lx.isSymbol(')') {
		if p.lx.isSymbol('.') {
			dotSpan := p.lx.bump().Span
			name, err := p.parseIdent()
			if err != nil {
				return nil, nil, err
			}
			if _, err := p.expectSymbol('('); err != nil {
				return nil, nil, err
			}
			expr, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			end, err := p.expectSymbol(')')
			if err != nil {
				return nil, nil, err
			}
			named = append(named, ast.NamedArg{Span: source.Union(dotSpan, end), Name: name, Expr: expr})
		} else {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			pos = append(pos, expr)
		}
		if p.lx.isSymbol(',') {
			p.lx.bump()
			continue
		}
		break
	}
	return pos, named, nil
}

func (p *Parser) parseVarDeclTail(ty *ast.Type) (*ast.VarDecl, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Name: name, Ty: ty}
	if p.lx.isSymbol('=') {
		p.lx.bump()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decl.Init = expr
	}
	end, err := p.expectSymbol(';')
	if err != nil {
		return nil, err
	}
	decl.Span = source.Union(ty.Span, end)
	return decl, nil
}

func (p *Parser) parseProc() (*ast.Proc, error) {
	kindTok, ok := p.lx.peek()
	if !ok {
		return nil, p.lx.fail("a procedural keyword")
	}
	kind := kindTok.Span.Extract()
	begin := p.lx.bump().Span

	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.Proc{Span: source.Union(begin, stmt.Span), Kind: kind, Stmt: stmt}, nil
}

// parseStmt parses the statement subset the HIR understands: a bare
// `;` null statement, or a single (optionally labelled) assignment.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	begin := p.lx.span()
	var label *source.Spanned[string]

	if p.lx.isTextKind() && p.lx.isSymbolAt(1, ':') {
		// `ident :` two tokens ahead unambiguously starts a statement
		// label (the grammar never lets an expression begin with a bare
		// `ident :`), so no backtracking is needed to tell it apart from
		// the assignment case.
		ident, err := p.parseIdent()
		if err != nil {
			return ast.Stmt{}, err
		}
		p.lx.bump() // ':'
		label = &ident
	}

	if p.lx.isSymbol(';') {
		end := p.lx.bump().Span
		return ast.Stmt{Span: source.Union(begin, end), Label: label}, nil
	}

	lhs, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	nonblock := false
	switch {
	case p.lx.isSymbol('=') && !p.peekIsLe():
		p.lx.bump()
	case p.peekIsLe():
		p.consumeLe()
		nonblock = true
	default:
		return ast.Stmt{}, p.lx.fail("`=` or `<=`")
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	end, err := p.expectSymbol(';')
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Span: source.Union(begin, end), Label: label, Lhs: lhs, Rhs: rhs, Nonblock: nonblock}, nil
}

// peekIsLe and consumeLe recognize the two-character `<=` non-blocking
// assignment operator, which the category lexer emits as two adjacent
// Symbol tokens since it knows nothing about multi-character punctuation.
func (p *Parser) peekIsLe() bool {
	return p.lx.isSymbol('<') && p.lx.isSymbolAt(1, '=')
}

func (p *Parser) consumeLe() {
	p.lx.bump()
	if p.lx.isSymbol('=') {
		p.lx.bump()
	}
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	tok, ok := p.lx.peek()
	if !ok {
		return nil, p.lx.fail("an expression")
	}
	if tok.Kind != cat.Text {
		return nil, p.lx.fail("an expression")
	}
	text := tok.Span.Extract()
	p.lx.bump()
	if text[0] >= '0' && text[0] <= '9' {
		return &ast.IntLit{Span: tok.Span, Text: text}, nil
	}
	return &ast.Ident{Span: tok.Span, Name: text}, nil
}

// Package ast defines the minimal raw surface syntax this front end
// parses directly: module headers, parameter and port lists,
// instantiations, variable declarations, procedural blocks, and the
// small statement/expression subset the HIR data model names (spec.md
// §3.2). The surface-syntax parser is explicitly an external collaborator
// of the specified core (spec.md §1); this package and package parser
// exist only to give the core something real to elaborate end to end,
// built in the teacher's own raw-AST style (internal/ast in the pack this
// was adapted from) rather than invented from scratch.
package ast

import "github.com/stefanlippuner/moore/internal/source"

// File is a parsed compilation unit: a flat list of top-level module
// declarations, mirroring SystemVerilog's lack of any enclosing namespace
// above module scope.
type File struct {
	Modules []*Module
}

// Module is a raw `module ... endmodule` declaration.
type Module struct {
	Name   source.Spanned[string]
	Extent source.Span
	Params []*Param
	Ports  []*Port
	Items  []Item
}

// Param is a raw parameter declaration, before it is known whether it
// binds a type or a value (that distinction is resolved during lowering
// from the `type` keyword's presence).
type Param struct {
	Span    source.Span
	Name    source.Spanned[string]
	IsType  bool
	Local   bool
	Ty      *Type // nil when IsType or when untyped
	Default Expr  // nil if none
}

// Port is a raw port declaration.
type Port struct {
	Span    source.Span
	Name    source.Spanned[string]
	Dir     string // "input", "output", "inout", "ref"
	Ty      *Type
	Default Expr
}

// Item is anything that can appear in a module body: an instantiation, a
// variable declaration, or a procedural block.
type Item interface{ itemNode() }

// Inst is a raw instantiation: `target #(posParams|namedParams) name
// (posPorts|namedPorts);`.
type Inst struct {
	Span        source.Span
	TargetName  source.Spanned[string]
	TargetSpan  source.Span
	PosParams   []Expr
	NamedParams []NamedArg
	Name        source.Spanned[string]
	PosPorts    []Expr
	NamedPorts  []NamedArg
}

func (*Inst) itemNode() {}

// NamedArg is one `.name(expr)` binding, used for both parameter and port
// argument lists.
type NamedArg struct {
	Span source.Span
	Name source.Spanned[string]
	Expr Expr
}

// VarDecl is a raw variable or net declaration.
type VarDecl struct {
	Span source.Span
	Name source.Spanned[string]
	Ty   *Type
	Init Expr
}

func (*VarDecl) itemNode() {}

// Proc is a raw procedural block.
type Proc struct {
	Span source.Span
	Kind string // "initial", "always", "always_comb", "always_latch", "always_ff", "final"
	Stmt Stmt
}

func (*Proc) itemNode() {}

// Stmt is the raw statement subset the HIR understands: empty statements
// and single assignments, optionally labelled.
type Stmt struct {
	Span  source.Span
	Label *source.Spanned[string]
	// Assign fields; Lhs is nil for a null statement.
	Lhs      Expr
	Rhs      Expr
	Nonblock bool
}

// Type is a raw type reference: either a builtin keyword or a bare name.
type Type struct {
	Span    source.Span
	Builtin string // one of void,bit,logic,byte,shortint,int,longint, or "" if Named
	Named   source.Spanned[string]
}

// Expr is the raw expression subset: integer literals and identifiers.
type Expr interface{ exprNode() }

// IntLit is an integer literal expression.
type IntLit struct {
	Span source.Span
	Text string
}

func (*IntLit) exprNode() {}

// Ident is a bare identifier expression.
type Ident struct {
	Span source.Span
	Name string
}

func (*Ident) exprNode() {}

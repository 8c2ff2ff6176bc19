// Package hir implements the high-level intermediate representation: the
// arena-owned, typed graph of design-hierarchy entities that sits between
// the raw surface AST and instance elaboration. The node shapes here are a
// direct port of the reference front-end's hir::nodes module, adapted from
// Rust's borrowed-slice arena entities to Go's garbage-collected pointers
// and interfaces.
package hir

import (
	"fmt"
	"math/big"

	"github.com/stefanlippuner/moore/internal/source"
)

// NodeId densely and uniquely identifies one HIR entity within a
// compilation. Ids are assigned once by the Store, in allocation order,
// and are never reused (spec.md §3.2 invariant 2).
type NodeId uint32

// Node is the uniform tagged-variant reference every HIR entity
// implements. Callers dispatch on the concrete type via a type switch
// (Go's answer to Rust's `match` over an enum of borrowed references).
type Node interface {
	ID() NodeId
	Span() source.Span
	// HumanSpan is the "finger-pointing" span, typically the
	// declaration's name; it defaults to Span() for node kinds that have
	// no more specific location worth pointing at.
	HumanSpan() source.Span
	Desc() string
}

// PortDir is the direction of a module port.
type PortDir int

const (
	DirInput PortDir = iota
	DirOutput
	DirInout
	DirRef
)

func (d PortDir) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	case DirRef:
		return "ref"
	default:
		return "unknown"
	}
}

// ProcKind is the kind of procedural block a Proc node represents.
type ProcKind int

const (
	ProcInitial ProcKind = iota
	ProcAlways
	ProcAlwaysComb
	ProcAlwaysLatch
	ProcAlwaysFF
	ProcFinal
)

func (k ProcKind) String() string {
	switch k {
	case ProcInitial:
		return "initial"
	case ProcAlways:
		return "always"
	case ProcAlwaysComb:
		return "always_comb"
	case ProcAlwaysLatch:
		return "always_latch"
	case ProcAlwaysFF:
		return "always_ff"
	case ProcFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Module is a design-hierarchy entity: a named collection of ports,
// parameters, instantiations, declarations, and procedures. The four
// NodeId lists are ordered by source appearance; that order is
// semantically significant for initial/always scheduling but irrelevant
// to node identity.
type Module struct {
	Id      NodeId
	Name    source.Spanned[Name]
	Extent  source.Span
	Ports   []NodeId
	Params  []NodeId
	Insts   []NodeId
	Decls   []NodeId
	Procs   []NodeId
}

func (m *Module) ID() NodeId              { return m.Id }
func (m *Module) Span() source.Span       { return m.Extent }
func (m *Module) HumanSpan() source.Span  { return m.Name.Span }
func (m *Module) Desc() string            { return "module" }
func (m *Module) DescFull(in *Interner) string {
	return fmt.Sprintf("module `%s`", in.Text(m.Name.Value))
}

// PosParam is a positional parameter or port binding: the span of the
// connecting expression and the NodeId of the bound Expr.
type PosParam struct {
	Span source.Span
	Expr NodeId
}

// NamedParam is a named parameter or port binding.
type NamedParam struct {
	Span source.Span
	Name source.Spanned[Name]
	Expr NodeId
}

// InstTarget represents the `foo #(...)` clause of an instantiation.
// Multiple Inst nodes may share one InstTarget.
type InstTarget struct {
	Id          NodeId
	Name        source.Spanned[Name]
	Extent      source.Span
	PosParams   []PosParam
	NamedParams []NamedParam
}

func (t *InstTarget) ID() NodeId             { return t.Id }
func (t *InstTarget) Span() source.Span      { return t.Extent }
func (t *InstTarget) HumanSpan() source.Span { return t.Name.Span }
func (t *InstTarget) Desc() string           { return "instantiation" }

// Inst represents the `a()` part of an instantiation `foo #(...) a();`.
type Inst struct {
	Id         NodeId
	Name       source.Spanned[Name]
	Extent     source.Span
	Target     NodeId
	PosPorts   []PosParam
	NamedPorts []NamedParam
}

func (i *Inst) ID() NodeId             { return i.Id }
func (i *Inst) Span() source.Span      { return i.Extent }
func (i *Inst) HumanSpan() source.Span { return i.Name.Span }
func (i *Inst) Desc() string           { return "instance" }

// Port is a module port declaration.
type Port struct {
	Id      NodeId
	Name    source.Spanned[Name]
	Extent  source.Span
	Dir     PortDir
	Ty      NodeId
	Default *NodeId
}

func (p *Port) ID() NodeId             { return p.Id }
func (p *Port) Span() source.Span      { return p.Extent }
func (p *Port) HumanSpan() source.Span { return p.Name.Span }
func (p *Port) Desc() string           { return "port" }

// TypeParam is a module `parameter type` declaration.
type TypeParam struct {
	Id      NodeId
	Name    source.Spanned[Name]
	Extent  source.Span
	Local   bool
	Default *NodeId
}

func (p *TypeParam) ID() NodeId             { return p.Id }
func (p *TypeParam) Span() source.Span      { return p.Extent }
func (p *TypeParam) HumanSpan() source.Span { return p.Name.Span }
func (p *TypeParam) Desc() string           { return "type parameter" }

// ValueParam is a module `parameter`/`localparam` value declaration.
type ValueParam struct {
	Id      NodeId
	Name    source.Spanned[Name]
	Extent  source.Span
	Local   bool
	Ty      NodeId
	Default *NodeId
}

func (p *ValueParam) ID() NodeId             { return p.Id }
func (p *ValueParam) Span() source.Span      { return p.Extent }
func (p *ValueParam) HumanSpan() source.Span { return p.Name.Span }
func (p *ValueParam) Desc() string           { return "parameter" }

// VarDecl is a variable or net declaration.
type VarDecl struct {
	Id     NodeId
	Name   source.Spanned[Name]
	Extent source.Span
	Ty     NodeId
	Init   *NodeId
}

func (v *VarDecl) ID() NodeId             { return v.Id }
func (v *VarDecl) Span() source.Span      { return v.Extent }
func (v *VarDecl) HumanSpan() source.Span { return v.Name.Span }
func (v *VarDecl) Desc() string           { return "variable declaration" }

// Proc is a procedural block (initial, always, always_comb, ...).
type Proc struct {
	Id     NodeId
	Extent source.Span
	Kind   ProcKind
	Stmt   NodeId
}

func (p *Proc) ID() NodeId             { return p.Id }
func (p *Proc) Span() source.Span      { return p.Extent }
func (p *Proc) HumanSpan() source.Span { return p.Extent }
func (p *Proc) Desc() string           { return fmt.Sprintf("`%s` procedure", p.Kind) }

// AssignKind is the form an assignment statement takes.
type AssignKind int

const (
	// AssignBlock is a blocking assignment ('=').
	AssignBlock AssignKind = iota
	// AssignNonblock is a non-blocking assignment ('<='). Added per the
	// open question in spec.md §9: the original HIR only modeled
	// blocking assignments even though the surface grammar parses
	// non-blocking ones.
	AssignNonblock
)

func (k AssignKind) String() string {
	if k == AssignNonblock {
		return "<="
	}
	return "="
}

// StmtKind is the form a statement takes.
type StmtKind int

const (
	StmtNull StmtKind = iota
	StmtAssign
)

// Stmt is a statement. Only Null and Assign are modeled, per spec.md §3.2.
type Stmt struct {
	Id     NodeId
	Label  *source.Spanned[Name]
	Extent source.Span
	Kind   StmtKind
	// Assign fields, valid when Kind == StmtAssign.
	Lhs        NodeId
	Rhs        NodeId
	AssignKind AssignKind
}

func (s *Stmt) ID() NodeId        { return s.Id }
func (s *Stmt) Span() source.Span { return s.Extent }
func (s *Stmt) HumanSpan() source.Span {
	if s.Label != nil {
		return s.Label.Span
	}
	return s.Extent
}
func (s *Stmt) Desc() string {
	switch s.Kind {
	case StmtNull:
		return "null statement"
	case StmtAssign:
		return "assign statement"
	default:
		return "statement"
	}
}

// ExprKind is the form an expression takes.
type ExprKind int

const (
	ExprIntConst ExprKind = iota
	ExprIdent
)

// Expr is an expression. Only integer constants and identifiers are
// modeled, per spec.md §3.2 and the non-goal of general constant folding.
type Expr struct {
	Id     NodeId
	Extent source.Span
	Kind   ExprKind
	// IntConst fields, valid when Kind == ExprIntConst.
	IntVal *big.Int
	// Ident fields, valid when Kind == ExprIdent.
	Ident source.Spanned[Name]
}

func (e *Expr) ID() NodeId             { return e.Id }
func (e *Expr) Span() source.Span      { return e.Extent }
func (e *Expr) HumanSpan() source.Span { return e.Extent }
func (e *Expr) Desc() string           { return "expression" }

// BuiltinType enumerates the handful of SystemVerilog types this front end
// understands natively; anything else is a Named type resolved later by a
// (currently out-of-scope) type-checking pass.
type BuiltinType int

const (
	TyVoid BuiltinType = iota
	TyBit
	TyLogic
	TyByte
	TyShortInt
	TyInt
	TyLongInt
)

func (b BuiltinType) String() string {
	switch b {
	case TyVoid:
		return "void"
	case TyBit:
		return "bit"
	case TyLogic:
		return "logic"
	case TyByte:
		return "byte"
	case TyShortInt:
		return "short_int"
	case TyInt:
		return "int"
	case TyLongInt:
		return "long_int"
	default:
		return "unknown"
	}
}

// TypeKind is the form a Type node takes.
type TypeKind int

const (
	TypeBuiltin TypeKind = iota
	TypeNamed
)

// Type is a type reference: either one of the builtin scalar types or a
// name resolved elsewhere (module/interface typedefs, out of scope here).
type Type struct {
	Id      NodeId
	Extent  source.Span
	Kind    TypeKind
	Builtin BuiltinType
	Named   source.Spanned[Name]
}

func (t *Type) ID() NodeId             { return t.Id }
func (t *Type) Span() source.Span      { return t.Extent }
func (t *Type) HumanSpan() source.Span { return t.Extent }
func (t *Type) Desc() string {
	if t.Kind == TypeBuiltin {
		return t.Builtin.String() + " type"
	}
	return "type"
}

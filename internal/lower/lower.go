// Package lower implements the HIR builder: the pass that turns a raw
// ast.File into hir.Store entries, assigning every declaration its
// NodeId and resolving integer-literal text into big.Int values. Like
// package parser, this is an ambient addition — spec.md §1 names the HIR
// builder an external collaborator of the specified core — built so the
// query and elaborate packages have a real compilation to run against
// end to end.
package lower

import (
	"math/big"

	"github.com/stefanlippuner/moore/internal/ast"
	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/hir"
	"github.com/stefanlippuner/moore/internal/source"
)

// Builder lowers one ast.File into a shared hir.Store, interning names
// through a shared hir.Interner and reporting malformed literals through
// a shared diag.Sink.
type Builder struct {
	Store *hir.Store
	Names *hir.Interner
	Sink  *diag.Sink

	defaultTy *hir.NodeId
}

// New creates a Builder over the given store, interner, and sink. All
// three are typically the same instances a query.Context wraps, so HIR
// produced here is immediately queryable.
func New(store *hir.Store, names *hir.Interner, sink *diag.Sink) *Builder {
	return &Builder{Store: store, Names: names, Sink: sink}
}

// implicitType returns a shared `logic` Type node for ports and
// declarations that name no explicit type, mirroring SystemVerilog's
// implicit-net default rather than leaving a dangling zero NodeId.
func (b *Builder) implicitType(at source.Span) hir.NodeId {
	if b.defaultTy == nil {
		id := b.Store.Add(func(id hir.NodeId) hir.Node {
			return &hir.Type{Id: id, Extent: at, Kind: hir.TypeBuiltin, Builtin: hir.TyLogic}
		})
		b.defaultTy = &id
	}
	return *b.defaultTy
}

// Lower walks every module in f and adds it (and everything it contains)
// to the Store, returning the NodeIds of the top-level modules in source
// order.
func (b *Builder) Lower(f *ast.File) []hir.NodeId {
	ids := make([]hir.NodeId, 0, len(f.Modules))
	for _, m := range f.Modules {
		ids = append(ids, b.lowerModule(m))
	}
	return ids
}

func (b *Builder) spannedName(s source.Spanned[string]) source.Spanned[hir.Name] {
	return source.Spanned[hir.Name]{Value: b.Names.Intern(s.Value), Span: s.Span}
}

func (b *Builder) lowerModule(m *ast.Module) hir.NodeId {
	return b.Store.AddModule(func(id hir.NodeId) *hir.Module {
		hm := &hir.Module{
			Id:     id,
			Name:   b.spannedName(m.Name),
			Extent: m.Extent,
		}
		for _, p := range m.Params {
			hm.Params = append(hm.Params, b.lowerParam(p))
		}
		for _, p := range m.Ports {
			hm.Ports = append(hm.Ports, b.lowerPort(p))
		}
		for _, item := range m.Items {
			switch it := item.(type) {
			case *ast.Inst:
				hm.Insts = append(hm.Insts, b.lowerInst(it))
			case *ast.VarDecl:
				hm.Decls = append(hm.Decls, b.lowerVarDecl(it))
			case *ast.Proc:
				hm.Procs = append(hm.Procs, b.lowerProc(it))
			}
		}
		return hm
	})
}

func (b *Builder) lowerParam(p *ast.Param) hir.NodeId {
	if p.IsType {
		return b.Store.Add(func(id hir.NodeId) hir.Node {
			tp := &hir.TypeParam{Id: id, Name: b.spannedName(p.Name), Extent: p.Span, Local: p.Local}
			if p.Default != nil {
				defID := b.lowerTypeOrExpr(p.Default)
				tp.Default = &defID
			}
			return tp
		})
	}
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		vp := &hir.ValueParam{Id: id, Name: b.spannedName(p.Name), Extent: p.Span}
		vp.Local = p.Local
		if p.Ty != nil {
			vp.Ty = b.lowerType(p.Ty)
		} else {
			vp.Ty = b.implicitType(p.Span)
		}
		if p.Default != nil {
			defID := b.lowerExpr(p.Default)
			vp.Default = &defID
		}
		return vp
	})
}

func (b *Builder) lowerPort(p *ast.Port) hir.NodeId {
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		hp := &hir.Port{Id: id, Name: b.spannedName(p.Name), Extent: p.Span, Dir: lowerDir(p.Dir)}
		if p.Ty != nil {
			hp.Ty = b.lowerType(p.Ty)
		} else {
			hp.Ty = b.implicitType(p.Span)
		}
		if p.Default != nil {
			defID := b.lowerExpr(p.Default)
			hp.Default = &defID
		}
		return hp
	})
}

func lowerDir(d string) hir.PortDir {
	switch d {
	case "output":
		return hir.DirOutput
	case "inout":
		return hir.DirInout
	case "ref":
		return hir.DirRef
	default:
		return hir.DirInput
	}
}

func (b *Builder) lowerInst(n *ast.Inst) hir.NodeId {
	target := b.Store.Add(func(id hir.NodeId) hir.Node {
		t := &hir.InstTarget{Id: id, Name: b.spannedName(n.TargetName), Extent: n.TargetSpan}
		for _, e := range n.PosParams {
			t.PosParams = append(t.PosParams, hir.PosParam{Span: exprSpan(e), Expr: b.lowerExpr(e)})
		}
		for _, na := range n.NamedParams {
			t.NamedParams = append(t.NamedParams, hir.NamedParam{Span: na.Span, Name: b.spannedName(na.Name), Expr: b.lowerExpr(na.Expr)})
		}
		return t
	})
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		inst := &hir.Inst{Id: id, Name: b.spannedName(n.Name), Extent: n.Span, Target: target}
		for _, e := range n.PosPorts {
			inst.PosPorts = append(inst.PosPorts, hir.PosParam{Span: exprSpan(e), Expr: b.lowerExpr(e)})
		}
		for _, na := range n.NamedPorts {
			inst.NamedPorts = append(inst.NamedPorts, hir.NamedParam{Span: na.Span, Name: b.spannedName(na.Name), Expr: b.lowerExpr(na.Expr)})
		}
		return inst
	})
}

func (b *Builder) lowerVarDecl(n *ast.VarDecl) hir.NodeId {
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		vd := &hir.VarDecl{Id: id, Name: b.spannedName(n.Name), Extent: n.Span, Ty: b.lowerType(n.Ty)}
		if n.Init != nil {
			initID := b.lowerExpr(n.Init)
			vd.Init = &initID
		}
		return vd
	})
}

var procKindByKeyword = map[string]hir.ProcKind{
	"initial":      hir.ProcInitial,
	"always":       hir.ProcAlways,
	"always_comb":  hir.ProcAlwaysComb,
	"always_latch": hir.ProcAlwaysLatch,
	"always_ff":    hir.ProcAlwaysFF,
	"final":        hir.ProcFinal,
}

func (b *Builder) lowerProc(n *ast.Proc) hir.NodeId {
	stmtID := b.lowerStmt(n.Stmt)
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Proc{Id: id, Extent: n.Span, Kind: procKindByKeyword[n.Kind], Stmt: stmtID}
	})
}

func (b *Builder) lowerStmt(n ast.Stmt) hir.NodeId {
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		s := &hir.Stmt{Id: id, Extent: n.Span}
		if n.Label != nil {
			lbl := b.spannedName(*n.Label)
			s.Label = &lbl
		}
		if n.Lhs == nil {
			s.Kind = hir.StmtNull
			return s
		}
		s.Kind = hir.StmtAssign
		s.Lhs = b.lowerExpr(n.Lhs)
		s.Rhs = b.lowerExpr(n.Rhs)
		if n.Nonblock {
			s.AssignKind = hir.AssignNonblock
		} else {
			s.AssignKind = hir.AssignBlock
		}
		return s
	})
}

func exprSpan(e ast.Expr) source.Span {
	switch v := e.(type) {
	case *ast.IntLit:
		return v.Span
	case *ast.Ident:
		return v.Span
	default:
		return source.Span{}
	}
}

func (b *Builder) lowerExpr(e ast.Expr) hir.NodeId {
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		switch v := e.(type) {
		case *ast.IntLit:
			val, ok := new(big.Int).SetString(v.Text, 0)
			if !ok {
				rep := diag.Errorf("lower", diag.LowMalformedLiteral, "malformed integer literal `%s`", v.Text).
					Span(v.Span).Build()
				b.Sink.Emit(rep)
				val = big.NewInt(0)
			}
			return &hir.Expr{Id: id, Extent: v.Span, Kind: hir.ExprIntConst, IntVal: val}
		case *ast.Ident:
			return &hir.Expr{Id: id, Extent: v.Span, Kind: hir.ExprIdent, Ident: source.Spanned[hir.Name]{Value: b.Names.Intern(v.Name), Span: v.Span}}
		default:
			panic("lower: unknown ast.Expr kind")
		}
	})
}

// lowerTypeOrExpr lowers a type parameter's default, which the raw AST
// represents as an ast.Expr slot shared with value defaults (the parser
// does not distinguish type-valued expressions from value ones — see
// DESIGN.md). Only an Ident can sensibly denote a type name here; any
// other shape is lowered as a placeholder Named type called `<expr>` so
// lowering never panics on a parseable program.
func (b *Builder) lowerTypeOrExpr(e ast.Expr) hir.NodeId {
	switch v := e.(type) {
	case *ast.Ident:
		return b.Store.Add(func(id hir.NodeId) hir.Node {
			return &hir.Type{Id: id, Extent: v.Span, Kind: hir.TypeNamed, Named: source.Spanned[hir.Name]{Value: b.Names.Intern(v.Name), Span: v.Span}}
		})
	default:
		sp := exprSpan(e)
		return b.Store.Add(func(id hir.NodeId) hir.Node {
			return &hir.Type{Id: id, Extent: sp, Kind: hir.TypeNamed, Named: source.Spanned[hir.Name]{Value: b.Names.Intern("<expr>"), Span: sp}}
		})
	}
}

var builtinTypeByKeyword = map[string]hir.BuiltinType{
	"void":     hir.TyVoid,
	"bit":      hir.TyBit,
	"logic":    hir.TyLogic,
	"byte":     hir.TyByte,
	"shortint": hir.TyShortInt,
	"int":      hir.TyInt,
	"longint":  hir.TyLongInt,
}

func (b *Builder) lowerType(t *ast.Type) hir.NodeId {
	return b.Store.Add(func(id hir.NodeId) hir.Node {
		if t.Builtin != "" {
			return &hir.Type{Id: id, Extent: t.Span, Kind: hir.TypeBuiltin, Builtin: builtinTypeByKeyword[t.Builtin]}
		}
		return &hir.Type{Id: id, Extent: t.Span, Kind: hir.TypeNamed, Named: b.spannedName(t.Named)}
	})
}

package elaborate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/hir"
	"github.com/stefanlippuner/moore/internal/query"
	"github.com/stefanlippuner/moore/internal/source"
)

// harness builds a tiny design: a leaf module `leaf` with one value
// parameter WIDTH and one port, and lets tests instantiate it under
// different bindings.
type harness struct {
	cx    *query.Context
	store *hir.Store
	names *hir.Interner
	sink  *diag.Sink
	span  source.Span
	leaf  hir.NodeId
	width hir.NodeId
	clk   hir.NodeId
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mgr := source.NewManager()
	src := mgr.Add("leaf.sv", "module leaf #(parameter WIDTH = 1) (input clk); endmodule")
	sp := source.NewSpan(src, 0, 6)

	store := hir.NewStore()
	names := hir.NewInterner()
	sink := diag.NewSink()

	tyID := store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Type{Id: id, Extent: sp, Kind: hir.TypeBuiltin, Builtin: hir.TyInt}
	})
	defaultExpr := store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Expr{Id: id, Extent: sp, Kind: hir.ExprIntConst, IntVal: big.NewInt(1)}
	})
	widthID := store.Add(func(id hir.NodeId) hir.Node {
		return &hir.ValueParam{Id: id, Name: source.Spanned[hir.Name]{Value: names.Intern("WIDTH"), Span: sp}, Extent: sp, Ty: tyID, Default: &defaultExpr}
	})
	var clkID hir.NodeId
	leafID := store.AddModule(func(id hir.NodeId) *hir.Module {
		clkID = store.Add(func(pid hir.NodeId) hir.Node {
			return &hir.Port{Id: pid, Name: source.Spanned[hir.Name]{Value: names.Intern("clk"), Span: sp}, Extent: sp, Dir: hir.DirInput, Ty: tyID}
		})
		return &hir.Module{Id: id, Name: source.Spanned[hir.Name]{Value: names.Intern("leaf"), Span: sp}, Extent: sp, Ports: []hir.NodeId{clkID}, Params: []hir.NodeId{widthID}}
	})

	cx := query.NewContext(mgr, store, names, sink)
	return &harness{cx: cx, store: store, names: names, sink: sink, span: sp, leaf: leafID, width: widthID, clk: clkID}
}

func (h *harness) intLit(v int64) hir.NodeId {
	return h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Expr{Id: id, Extent: h.span, Kind: hir.ExprIntConst, IntVal: big.NewInt(v)}
	})
}

func (h *harness) target(pos ...hir.NodeId) hir.NodeId {
	var posParams []hir.PosParam
	for _, p := range pos {
		posParams = append(posParams, hir.PosParam{Span: h.span, Expr: p})
	}
	return h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.InstTarget{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("leaf"), Span: h.span}, Extent: h.span, PosParams: posParams}
	})
}

func TestSharedInstanceTargetMemoizesOnce(t *testing.T) {
	h := newHarness(t)
	target := h.target(h.intLit(4))

	elab := New(h.cx)
	d1, err := elab.InstTargetDetails(target, hir.DefaultParamEnv)
	require.NoError(t, err)
	d2, err := elab.InstTargetDetails(target, hir.DefaultParamEnv)
	require.NoError(t, err)
	require.Same(t, d1, d2, "two calls with the same (target, env) key return the cached result")
}

func TestInstanceIsolation(t *testing.T) {
	h := newHarness(t)

	// Two distinct instances of leaf sharing the same binding: identical
	// inner environments.
	targetA := h.target(h.intLit(4))
	instA1 := h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Inst{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("u0"), Span: h.span}, Extent: h.span, Target: targetA}
	})
	instA2 := h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Inst{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("u1"), Span: h.span}, Extent: h.span, Target: targetA}
	})

	elab := New(h.cx)
	dA1, err := elab.InstDetails(instA1, hir.DefaultParamEnv)
	require.NoError(t, err)
	dA2, err := elab.InstDetails(instA2, hir.DefaultParamEnv)
	require.NoError(t, err)
	require.Equal(t, dA1.Target.InnerEnv, dA2.Target.InnerEnv, "same binding must produce the same inner_env")

	// A third instance with a distinct binding diverges.
	targetB := h.target(h.intLit(8))
	instB := h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Inst{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("u2"), Span: h.span}, Extent: h.span, Target: targetB}
	})
	dB, err := elab.InstDetails(instB, hir.DefaultParamEnv)
	require.NoError(t, err)
	require.NotEqual(t, dA1.Target.InnerEnv, dB.Target.InnerEnv, "distinct bindings must diverge")
}

func TestUnknownModuleIsDiagnosedOnce(t *testing.T) {
	h := newHarness(t)
	target := h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.InstTarget{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("nonexistent"), Span: h.span}, Extent: h.span}
	})
	inst := h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Inst{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("u0"), Span: h.span}, Extent: h.span, Target: target}
	})

	elab := New(h.cx)
	_, err := elab.InstDetails(inst, hir.DefaultParamEnv)
	require.ErrorIs(t, err, query.ErrDiagnosed)
	require.Len(t, h.sink.Reports(), 1)
	require.Equal(t, diag.ELBUnknownModule, h.sink.Reports()[0].Code)

	// Second call must short-circuit without emitting a second diagnostic.
	_, err = elab.InstDetails(inst, hir.DefaultParamEnv)
	require.ErrorIs(t, err, query.ErrDiagnosed)
	require.Len(t, h.sink.Reports(), 1)
}

func TestVerbosityVisitorRecursesUnderInnerEnv(t *testing.T) {
	h := newHarness(t)
	targetA := h.target(h.intLit(4))
	targetB := h.target(h.intLit(8))
	instA := h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Inst{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("u0"), Span: h.span}, Extent: h.span, Target: targetA}
	})
	instB := h.store.Add(func(id hir.NodeId) hir.Node {
		return &hir.Inst{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("u1"), Span: h.span}, Extent: h.span, Target: targetB}
	})
	top := h.store.AddModule(func(id hir.NodeId) *hir.Module {
		return &hir.Module{Id: id, Name: source.Spanned[hir.Name]{Value: h.names.Intern("top"), Span: h.span}, Extent: h.span, Insts: []hir.NodeId{instA, instB}}
	})

	elab := New(h.cx)
	v := NewVerbosityVisitor(elab)
	v.VisitNode(hir.DefaultParamEnv, top)

	// One note per instance, both carrying `inst_details` for leaf.
	notes := h.sink.Reports()
	require.Len(t, notes, 2)
	for _, n := range notes {
		require.Equal(t, diag.Note, n.Severity)
	}
}

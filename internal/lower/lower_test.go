package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/hir"
	"github.com/stefanlippuner/moore/internal/parser"
	"github.com/stefanlippuner/moore/internal/preproc"
	"github.com/stefanlippuner/moore/internal/source"
)

func build(t *testing.T, text string) (*hir.Store, *hir.Interner, []hir.NodeId, *diag.Sink) {
	t.Helper()
	mgr := source.NewManager()
	root := mgr.Add("test.sv", text)
	sink := diag.NewSink()
	pp := preproc.New(mgr, root, nil, sink)
	f, err := parser.New(pp).ParseFile()
	require.NoError(t, err)

	store := hir.NewStore()
	names := hir.NewInterner()
	b := New(store, names, sink)
	return store, names, b.Lower(f), sink
}

func TestLowersModuleHeaderEndToEnd(t *testing.T) {
	store, names, ids, sink := build(t, `
module counter #(parameter WIDTH = 8) (input clk, output logic rdy);
endmodule
`)
	require.Empty(t, sink.Reports())
	require.Len(t, ids, 1)

	mod := hir.Lookup[*hir.Module](store, ids[0])
	require.Equal(t, "counter", names.Text(mod.Name.Value))
	require.Len(t, mod.Params, 1)
	require.Len(t, mod.Ports, 2)

	width := hir.Lookup[*hir.ValueParam](store, mod.Params[0])
	require.Equal(t, "WIDTH", names.Text(width.Name.Value))
	require.NotNil(t, width.Default)
	def := hir.Lookup[*hir.Expr](store, *width.Default)
	require.Equal(t, int64(8), def.IntVal.Int64())

	rdy := hir.Lookup[*hir.Port](store, mod.Ports[1])
	require.Equal(t, hir.DirOutput, rdy.Dir)
	ty := hir.Lookup[*hir.Type](store, rdy.Ty)
	require.Equal(t, hir.TyLogic, ty.Builtin)

	found, ok := store.FindModule(mod.Name.Value)
	require.True(t, ok)
	require.Equal(t, ids[0], found)
}

func TestLowersInstantiationAndAssignment(t *testing.T) {
	store, names, ids, sink := build(t, `
module leaf #(parameter WIDTH = 1) (input clk);
endmodule

module top (input clk);
  logic w;
  leaf #(.WIDTH(4)) u0 (clk);
  always_comb w = clk;
endmodule
`)
	require.Empty(t, sink.Reports())
	require.Len(t, ids, 2)

	top := hir.Lookup[*hir.Module](store, ids[1])
	require.Len(t, top.Decls, 1)
	require.Len(t, top.Insts, 1)
	require.Len(t, top.Procs, 1)

	inst := hir.Lookup[*hir.Inst](store, top.Insts[0])
	require.Equal(t, "u0", names.Text(inst.Name.Value))
	target := hir.Lookup[*hir.InstTarget](store, inst.Target)
	require.Equal(t, "leaf", names.Text(target.Name.Value))
	require.Len(t, target.NamedParams, 1)
	require.Equal(t, "WIDTH", names.Text(target.NamedParams[0].Name.Value))

	proc := hir.Lookup[*hir.Proc](store, top.Procs[0])
	require.Equal(t, hir.ProcAlwaysComb, proc.Kind)
	stmt := hir.Lookup[*hir.Stmt](store, proc.Stmt)
	require.Equal(t, hir.StmtAssign, stmt.Kind)
	require.Equal(t, hir.AssignBlock, stmt.AssignKind)
}

func TestImplicitPortTypeDefaultsToLogic(t *testing.T) {
	store, _, ids, _ := build(t, "module m (input clk); endmodule")
	mod := hir.Lookup[*hir.Module](store, ids[0])
	port := hir.Lookup[*hir.Port](store, mod.Ports[0])
	ty := hir.Lookup[*hir.Type](store, port.Ty)
	require.Equal(t, hir.TypeBuiltin, ty.Kind)
	require.Equal(t, hir.TyLogic, ty.Builtin)
}

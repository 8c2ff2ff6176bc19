package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefanlippuner/moore/internal/ast"
	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/preproc"
	"github.com/stefanlippuner/moore/internal/source"
)

func parse(t *testing.T, text string) (*ast.File, *diag.Sink) {
	t.Helper()
	mgr := source.NewManager()
	root := mgr.Add("test.sv", text)
	sink := diag.NewSink()
	pp := preproc.New(mgr, root, nil, sink)
	p := New(pp)
	f, err := p.ParseFile()
	require.NoError(t, err)
	return f, sink
}

func TestParsesModuleWithParamsAndPorts(t *testing.T) {
	f, _ := parse(t, `
module counter #(parameter WIDTH = 8) (input clk, output logic rdy);
endmodule
`)
	require.Len(t, f.Modules, 1)
	m := f.Modules[0]
	require.Equal(t, "counter", m.Name.Value)
	require.Len(t, m.Params, 1)
	require.Equal(t, "WIDTH", m.Params[0].Name.Value)
	lit, ok := m.Params[0].Default.(*ast.IntLit)
	require.True(t, ok)
	require.Equal(t, "8", lit.Text)

	require.Len(t, m.Ports, 2)
	require.Equal(t, "clk", m.Ports[0].Name.Value)
	require.Equal(t, "input", m.Ports[0].Dir)
	require.Equal(t, "rdy", m.Ports[1].Name.Value)
	require.Equal(t, "output", m.Ports[1].Dir)
	require.Equal(t, "logic", m.Ports[1].Ty.Builtin)
}

func TestParsesInstantiationWithPositionalAndNamedArgs(t *testing.T) {
	f, _ := parse(t, `
module top (input clk);
  leaf #(.WIDTH(4)) u0 (clk, .rdy(w));
endmodule
`)
	m := f.Modules[0]
	require.Len(t, m.Items, 1)
	inst, ok := m.Items[0].(*ast.Inst)
	require.True(t, ok)
	require.Equal(t, "leaf", inst.TargetName.Value)
	require.Equal(t, "u0", inst.Name.Value)
	require.Len(t, inst.NamedParams, 1)
	require.Equal(t, "WIDTH", inst.NamedParams[0].Name.Value)
	require.Len(t, inst.PosPorts, 1)
	require.Len(t, inst.NamedPorts, 1)
}

func TestParsesVarDeclAndAssignProcs(t *testing.T) {
	f, _ := parse(t, `
module top (input clk);
  logic w;
  always_comb w = clk;
  initial foo <= bar;
endmodule
`)
	m := f.Modules[0]
	require.Len(t, m.Items, 3)

	decl, ok := m.Items[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "w", decl.Name.Value)

	proc1, ok := m.Items[1].(*ast.Proc)
	require.True(t, ok)
	require.Equal(t, "always_comb", proc1.Kind)
	require.False(t, proc1.Stmt.Nonblock)

	proc2, ok := m.Items[2].(*ast.Proc)
	require.True(t, ok)
	require.Equal(t, "initial", proc2.Kind)
	require.True(t, proc2.Stmt.Nonblock)
}

func TestParsesLabelledStatement(t *testing.T) {
	f, _ := parse(t, `
module top (input clk);
  initial blk: a = b;
endmodule
`)
	proc := f.Modules[0].Items[0].(*ast.Proc)
	require.NotNil(t, proc.Stmt.Label)
	require.Equal(t, "blk", proc.Stmt.Label.Value)
}

func TestParsesNullStatement(t *testing.T) {
	f, _ := parse(t, `
module top (input clk);
  initial ;
endmodule
`)
	proc := f.Modules[0].Items[0].(*ast.Proc)
	require.Nil(t, proc.Stmt.Lhs)
}

func TestSyntaxErrorOnMissingEndmodule(t *testing.T) {
	mgr := source.NewManager()
	root := mgr.Add("test.sv", "module top (input clk);")
	sink := diag.NewSink()
	pp := preproc.New(mgr, root, nil, sink)
	p := New(pp)
	_, err := p.ParseFile()
	require.Error(t, err)
}

func TestMacroExpandedModuleParsesIdentically(t *testing.T) {
	f, _ := parse(t, "`define WIDTH 8\nmodule counter #(parameter W = `WIDTH) (input clk); endmodule\n")
	require.Len(t, f.Modules, 1)
	lit := f.Modules[0].Params[0].Default.(*ast.IntLit)
	require.Equal(t, "8", lit.Text)
}

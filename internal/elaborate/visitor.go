package elaborate

import (
	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/hir"
)

// VerbosityVisitor is a diagnostic-emitting visitor that, on each Inst,
// requests inst_details under the current environment, emits a note
// describing the resolved binding, and recurses into the target module
// under the instance's inner environment (spec.md §4.5). It is grounded
// on original_source/src/svlog/inst_details.rs's InstVerbosityVisitor,
// adapted to Go's BaseVisitor "self" embedding since Go has no virtual
// dispatch to override visit_inst through.
type VerbosityVisitor struct {
	hir.BaseVisitor
	Elab *Elaborator
}

// NewVerbosityVisitor creates a visitor over elab's HIR store. It holds no
// environment of its own; the starting environment is the one passed to
// VisitNode.
func NewVerbosityVisitor(elab *Elaborator) *VerbosityVisitor {
	v := &VerbosityVisitor{BaseVisitor: hir.BaseVisitor{Store: elab.Cx.Store}, Elab: elab}
	v.Self = v
	return v
}

// VisitInst overrides the default (non-descending) behavior: it resolves
// the instance's details, emits a note, and — on success — walks into the
// target module under the freshly computed inner environment. A failed
// lookup has already been diagnosed by the query layer, so this simply
// stops without emitting anything further (spec.md §4.4 fail-local
// model).
func (v *VerbosityVisitor) VisitInst(env hir.ParamEnv, n *hir.Inst) {
	v.BaseVisitor.VisitInst(env, n)

	details, err := v.Elab.InstDetails(n.Id, env)
	if err != nil {
		return
	}

	note := diag.Notef("elaborate", "", "instantiation details for `%s`: module `%s`, %d parameter(s), %d port(s)",
		v.Elab.Cx.Names.Text(n.Name.Value),
		v.Elab.Cx.Names.Text(details.Target.Module.Name.Value),
		len(details.Target.Params.Bindings),
		len(details.Ports.Bindings),
	).Span(n.Name.Span).Build()
	v.Elab.Cx.Sink.Emit(note)

	inner := &VerbosityVisitor{BaseVisitor: hir.BaseVisitor{Store: v.Store}, Elab: v.Elab}
	inner.Self = inner
	inner.VisitNode(details.Target.InnerEnv, details.Target.Module.Id)
}

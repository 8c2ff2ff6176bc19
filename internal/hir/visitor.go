package hir

// ParamEnv is a dense integer handle identifying an interned parameter
// environment (spec.md §3.3). The handle lives here, beside the node
// kinds it annotates during traversal; the hash-consed table that maps
// bindings to handles belongs to the query Context (package query) so
// that importing hir never pulls in the elaborator.
type ParamEnv uint32

// DefaultParamEnv is the always-present empty environment.
const DefaultParamEnv ParamEnv = 0

// Visitor is the traversal capability spec.md §4.2 describes: for each
// node kind, a hook that may recurse into the node's children under a
// current ParamEnv. The subtree beneath an Inst is meant to be visited
// under that instance's inner environment, which requires a query only
// the elaborator can answer — see BaseVisitor.VisitInst.
type Visitor interface {
	VisitModule(env ParamEnv, n *Module)
	VisitPort(env ParamEnv, n *Port)
	VisitInstTarget(env ParamEnv, n *InstTarget)
	VisitInst(env ParamEnv, n *Inst)
	VisitTypeParam(env ParamEnv, n *TypeParam)
	VisitValueParam(env ParamEnv, n *ValueParam)
	VisitVarDecl(env ParamEnv, n *VarDecl)
	VisitProc(env ParamEnv, n *Proc)
	VisitStmt(env ParamEnv, n *Stmt)
	VisitExpr(env ParamEnv, n *Expr)
	VisitType(env ParamEnv, n *Type)
}

// BaseVisitor implements Visitor with the obvious structural recursion
// and nothing else: it does not descend past an Inst into its target
// module, since that requires a query. Go has no virtual dispatch, so
// embedders that want their overrides to apply to nested calls (e.g. a
// visitor that overrides VisitInst and expects VisitModule's loop over
// child instances to call the override) must set Self to themselves —
// the same "self" trick the wider Go ecosystem uses in place of
// inheritance.
type BaseVisitor struct {
	Store *Store
	Self  Visitor
}

func (b *BaseVisitor) self() Visitor {
	if b.Self != nil {
		return b.Self
	}
	return b
}

// VisitNode looks up id in the arena and dispatches to the matching
// Visit* hook on Self.
func (b *BaseVisitor) VisitNode(env ParamEnv, id NodeId) {
	self := b.self()
	switch n := b.Store.HirOf(id).(type) {
	case *Module:
		self.VisitModule(env, n)
	case *Port:
		self.VisitPort(env, n)
	case *InstTarget:
		self.VisitInstTarget(env, n)
	case *Inst:
		self.VisitInst(env, n)
	case *TypeParam:
		self.VisitTypeParam(env, n)
	case *ValueParam:
		self.VisitValueParam(env, n)
	case *VarDecl:
		self.VisitVarDecl(env, n)
	case *Proc:
		self.VisitProc(env, n)
	case *Stmt:
		self.VisitStmt(env, n)
	case *Expr:
		self.VisitExpr(env, n)
	case *Type:
		self.VisitType(env, n)
	default:
		bugUnexpectedKind(id, "a known HIR node kind", n)
	}
}

func (b *BaseVisitor) VisitModule(env ParamEnv, n *Module) {
	for _, id := range n.Params {
		b.VisitNode(env, id)
	}
	for _, id := range n.Ports {
		b.VisitNode(env, id)
	}
	for _, id := range n.Decls {
		b.VisitNode(env, id)
	}
	for _, id := range n.Insts {
		b.VisitNode(env, id)
	}
	for _, id := range n.Procs {
		b.VisitNode(env, id)
	}
}

func (b *BaseVisitor) VisitPort(env ParamEnv, n *Port) {
	b.VisitNode(env, n.Ty)
	if n.Default != nil {
		b.VisitNode(env, *n.Default)
	}
}

func (b *BaseVisitor) VisitInstTarget(env ParamEnv, n *InstTarget) {
	for _, p := range n.PosParams {
		b.VisitNode(env, p.Expr)
	}
	for _, p := range n.NamedParams {
		b.VisitNode(env, p.Expr)
	}
}

// VisitInst visits the instance's own port-connection expressions but
// does not descend into the target module: doing that correctly requires
// the inner ParamEnv, computed only by the elaborator's
// InstTargetDetails (package elaborate). Package
// elaborate's VerbosityVisitor overrides this hook to do exactly that.
func (b *BaseVisitor) VisitInst(env ParamEnv, n *Inst) {
	for _, p := range n.PosPorts {
		b.VisitNode(env, p.Expr)
	}
	for _, p := range n.NamedPorts {
		b.VisitNode(env, p.Expr)
	}
}

func (b *BaseVisitor) VisitTypeParam(env ParamEnv, n *TypeParam) {
	if n.Default != nil {
		b.VisitNode(env, *n.Default)
	}
}

func (b *BaseVisitor) VisitValueParam(env ParamEnv, n *ValueParam) {
	b.VisitNode(env, n.Ty)
	if n.Default != nil {
		b.VisitNode(env, *n.Default)
	}
}

func (b *BaseVisitor) VisitVarDecl(env ParamEnv, n *VarDecl) {
	b.VisitNode(env, n.Ty)
	if n.Init != nil {
		b.VisitNode(env, *n.Init)
	}
}

func (b *BaseVisitor) VisitProc(env ParamEnv, n *Proc) {
	b.VisitNode(env, n.Stmt)
}

func (b *BaseVisitor) VisitStmt(env ParamEnv, n *Stmt) {
	if n.Kind == StmtAssign {
		b.VisitNode(env, n.Lhs)
		b.VisitNode(env, n.Rhs)
	}
}

func (b *BaseVisitor) VisitExpr(env ParamEnv, n *Expr) {}

func (b *BaseVisitor) VisitType(env ParamEnv, n *Type) {}

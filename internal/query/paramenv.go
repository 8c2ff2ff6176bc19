package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/hir"
	"github.com/stefanlippuner/moore/internal/source"
)

// ParamEnvSource describes how a new parameter environment is generated.
// The only producer the core needs is a module instantiation binding
// positional and named arguments against a module's declared parameter
// list (spec.md §4.4 step 4); other sources (e.g. a top-level environment
// built from command-line overrides) are conceivable but out of scope.
type ParamEnvSource struct {
	// Module is the instantiated module, whose Params list gives
	// declaration order for positional binding.
	Module hir.NodeId
	// Inst is the InstTarget node requesting this environment, used only
	// for diagnostic context.
	Inst hir.NodeId
	// Env is the environment the instantiation itself was elaborated
	// under — the new environment's logical parent.
	Env   hir.ParamEnv
	Pos   []hir.PosParam
	Named []hir.NamedParam
}

// ParamBinding is one resolved parameter: either a bound type or a bound
// (unevaluated) constant expression. Full constant folding is a non-goal
// (spec.md §1), so the "evaluated constant expression" spec.md §3.3
// describes is represented here by the NodeId of the bound Expr rather
// than a folded value; a later phase free to add a const-evaluator can
// hang it off ValueID without touching this shape.
type ParamBinding struct {
	IsType  bool
	TypeID  hir.NodeId
	ValueID hir.NodeId
}

// ParamEnvData is the canonical record behind one ParamEnv handle: its
// parent environment plus one binding per parameter declaration id
// (spec.md §3.3).
type ParamEnvData struct {
	Parent   hir.ParamEnv
	Bindings map[hir.NodeId]ParamBinding
}

// envKey is the structural hash-consing key for a ParamEnvData: a string
// built from the sorted (declaration id, binding) pairs, so Go's ordinary
// comparable-map-key machinery gives us hash-consing for free without a
// hand-rolled Hash/Eq pair the way a content-addressed store normally
// would. Two calls with structurally identical bindings always produce
// the same key and therefore the same ParamEnv (spec.md §8 "env
// canonicalisation").
type envKey string

func buildEnvKey(parent hir.ParamEnv, bindings map[hir.NodeId]ParamBinding) envKey {
	ids := make([]hir.NodeId, 0, len(bindings))
	for id := range bindings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", parent)
	for _, id := range ids {
		b := bindings[id]
		if b.IsType {
			fmt.Fprintf(&sb, "|%d:T%d", id, b.TypeID)
		} else {
			fmt.Fprintf(&sb, "|%d:V%d", id, b.ValueID)
		}
	}
	return envKey(sb.String())
}

// ParamEnv is the param_env(source) query: it binds src's positional and
// named arguments against the module's declared parameters, falls back to
// declared defaults for anything left unbound, and interns the resulting
// bindings into a ParamEnv handle — reusing an existing handle if an
// observationally identical environment has already been interned.
func (c *Context) ParamEnv(src ParamEnvSource) (hir.ParamEnv, error) {
	bindings, err := c.bindParams(src)
	if err != nil {
		return hir.DefaultParamEnv, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := buildEnvKey(src.Env, bindings)
	if env, ok := c.envKeys[key]; ok {
		return env, nil
	}
	env := hir.ParamEnv(len(c.envData))
	c.envData = append(c.envData, &ParamEnvData{Parent: src.Env, Bindings: bindings})
	c.envKeys[key] = env
	return env, nil
}

// ParamEnvData is the param_env_data(env) query: a plain indexed lookup
// into the interned table.
func (c *Context) ParamEnvData(env hir.ParamEnv) *ParamEnvData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.envData[env]
}

func (c *Context) bindParams(src ParamEnvSource) (map[hir.NodeId]ParamBinding, error) {
	mod := hir.Lookup[*hir.Module](c.Store, src.Module)
	bindings := make(map[hir.NodeId]ParamBinding, len(mod.Params))

	if len(src.Pos) > len(mod.Params) {
		rep := diag.Errorf("elaborate", diag.ELBSuperfluousArgument,
			"too many positional parameters for %s", mod.Desc()).
			Span(src.Pos[len(mod.Params)].Span).Build()
		c.Sink.Emit(rep)
		return nil, ErrDiagnosed
	}
	for i, pp := range src.Pos {
		declID := mod.Params[i]
		b, err := c.bindOneParam(pp.Expr)
		if err != nil {
			return nil, err
		}
		bindings[declID] = b
	}

	byName := make(map[hir.Name]hir.NodeId, len(mod.Params))
	for _, declID := range mod.Params {
		byName[paramName(c.Store, declID).Value] = declID
	}
	for _, np := range src.Named {
		declID, ok := byName[np.Name.Value]
		if !ok {
			rep := diag.Errorf("elaborate", diag.ELBUnknownNamedBinding,
				"unknown parameter `%s`", c.Names.Text(np.Name.Value)).
				Span(np.Name.Span).Build()
			c.Sink.Emit(rep)
			return nil, ErrDiagnosed
		}
		b, err := c.bindOneParam(np.Expr)
		if err != nil {
			return nil, err
		}
		bindings[declID] = b
	}

	for _, declID := range mod.Params {
		if _, ok := bindings[declID]; ok {
			continue
		}
		b, err := c.defaultParamBinding(declID)
		if err != nil {
			return nil, err
		}
		bindings[declID] = b
	}
	return bindings, nil
}

func (c *Context) bindOneParam(argID hir.NodeId) (ParamBinding, error) {
	switch c.Store.HirOf(argID).(type) {
	case *hir.Type:
		return ParamBinding{IsType: true, TypeID: argID}, nil
	case *hir.Expr:
		return ParamBinding{IsType: false, ValueID: argID}, nil
	default:
		panic(fmt.Sprintf("query: parameter argument %d is neither a type nor an expression", argID))
	}
}

func (c *Context) defaultParamBinding(declID hir.NodeId) (ParamBinding, error) {
	switch n := c.Store.HirOf(declID).(type) {
	case *hir.TypeParam:
		if n.Default == nil {
			c.emitUnbound(n.Name)
			return ParamBinding{}, ErrDiagnosed
		}
		return ParamBinding{IsType: true, TypeID: *n.Default}, nil
	case *hir.ValueParam:
		if n.Default == nil {
			c.emitUnbound(n.Name)
			return ParamBinding{}, ErrDiagnosed
		}
		return ParamBinding{IsType: false, ValueID: *n.Default}, nil
	default:
		panic(fmt.Sprintf("query: declaration %d is not a parameter", declID))
	}
}

// emitUnbound reports a parameter that was neither bound positionally or
// by name nor given a default value (spec.md §4.4 step 4).
func (c *Context) emitUnbound(name source.Spanned[hir.Name]) {
	rep := diag.Errorf("elaborate", diag.ELBUnboundParameter,
		"parameter `%s` has no default and was not bound", c.Names.Text(name.Value)).
		Span(name.Span).Build()
	c.Sink.Emit(rep)
}

func paramName(store *hir.Store, id hir.NodeId) source.Spanned[hir.Name] {
	switch n := store.HirOf(id).(type) {
	case *hir.TypeParam:
		return n.Name
	case *hir.ValueParam:
		return n.Name
	default:
		panic(fmt.Sprintf("query: declaration %d is not a parameter", id))
	}
}

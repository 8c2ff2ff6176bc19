package query

import (
	"fmt"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/hir"
	"github.com/stefanlippuner/moore/internal/source"
)

// PortMappingSource describes one instance's external port connections
// against its target module's declared port list. Semantics mirror
// ParamEnvSource's positional-then-named binding pass (spec.md §4.4 step
// 3: "semantics mirror the parameter pass").
type PortMappingSource struct {
	Module hir.NodeId
	Inst   hir.NodeId
	Env    hir.ParamEnv
	Pos    []hir.PosParam
	Named  []hir.NamedParam
}

// PortBinding is one resolved external connection: the declared port and
// the expression wired to it.
type PortBinding struct {
	PortID hir.NodeId
	ConnID hir.NodeId
}

// PortMapping records, for one instance, how its external connections
// bind to the declared ports of its target module, in declaration order
// (spec.md §3.4). A port that is neither connected nor given a default
// has no entry in Bindings. Unlike ParamEnv it is not hash-consed: port connections
// reference live expressions specific to one instance, so there is no
// useful notion of two mappings being "the same" the way two parameter
// bindings can be.
type PortMapping struct {
	Module   hir.NodeId
	Env      hir.ParamEnv
	Bindings []PortBinding
}

// PortMapping is the port_mapping(source) query, memoised per (Inst,
// Env): each instance's port list is bound to its target module's
// declared ports exactly once per environment.
func (c *Context) PortMapping(src PortMappingSource) (*PortMapping, error) {
	key := NodeEnvKey{ID: src.Inst, Env: src.Env}

	c.mu.Lock()
	if c.portFail[key] {
		c.mu.Unlock()
		return nil, ErrDiagnosed
	}
	if pm, ok := c.portCache[key]; ok {
		c.mu.Unlock()
		return pm, nil
	}
	c.mu.Unlock()

	pm, err := c.computePortMapping(src)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.portFail[key] = true
		return nil, err
	}
	c.portCache[key] = pm
	return pm, nil
}

func (c *Context) computePortMapping(src PortMappingSource) (*PortMapping, error) {
	mod := hir.Lookup[*hir.Module](c.Store, src.Module)
	bound := make(map[hir.NodeId]hir.NodeId, len(mod.Ports))

	if len(src.Pos) > len(mod.Ports) {
		rep := diag.Errorf("elaborate", diag.ELBSuperfluousArgument,
			"too many positional port connections for %s", mod.Desc()).
			Span(src.Pos[len(mod.Ports)].Span).Build()
		c.Sink.Emit(rep)
		return nil, ErrDiagnosed
	}
	for i, pp := range src.Pos {
		bound[mod.Ports[i]] = pp.Expr
	}

	byName := make(map[hir.Name]hir.NodeId, len(mod.Ports))
	for _, portID := range mod.Ports {
		byName[portName(c.Store, portID).Value] = portID
	}
	for _, np := range src.Named {
		portID, ok := byName[np.Name.Value]
		if !ok {
			rep := diag.Errorf("elaborate", diag.ELBUnknownNamedBinding,
				"unknown port `%s`", c.Names.Text(np.Name.Value)).
				Span(np.Name.Span).Build()
			c.Sink.Emit(rep)
			return nil, ErrDiagnosed
		}
		bound[portID] = np.Expr
	}

	bindings := make([]PortBinding, 0, len(mod.Ports))
	for _, portID := range mod.Ports {
		connID, ok := bound[portID]
		if !ok {
			port := hir.Lookup[*hir.Port](c.Store, portID)
			if port.Default == nil {
				// An unconnected port without a default is left open.
				continue
			}
			connID = *port.Default
		}
		bindings = append(bindings, PortBinding{PortID: portID, ConnID: connID})
	}

	return &PortMapping{Module: src.Module, Env: src.Env, Bindings: bindings}, nil
}

func portName(store *hir.Store, id hir.NodeId) source.Spanned[hir.Name] {
	port, ok := store.HirOf(id).(*hir.Port)
	if !ok {
		panic(fmt.Sprintf("query: declaration %d is not a port", id))
	}
	return port.Name
}

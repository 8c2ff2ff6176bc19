// Package query bundles the arena, name table, source manager, and
// diagnostic sink that every semantic computation over the HIR needs, and
// implements the pure, memoised queries the front end builds on: hir_of,
// find_module, param_env, param_env_data, and port_mapping. Keeping these
// together in one context value (rather than reaching for package-level
// globals) mirrors the design note in spec.md §9 and the teacher's own
// module/loader.go, which bundles its cache behind a single *Loader rather
// than a global map.
package query

import (
	"errors"
	"sync"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/hir"
	"github.com/stefanlippuner/moore/internal/source"
)

// ErrDiagnosed is the sentinel failure every query returns once it (or one
// of its dependencies) has already emitted a diagnostic for the root
// cause. Callers must not emit a second diagnostic when they see this
// error; they simply propagate it, giving the fail-local elaboration model
// spec.md §4.4/§7 describes: one diagnostic per root cause, no cascades.
var ErrDiagnosed = errors.New("query: dependency already diagnosed")

// NodeEnvKey is the (NodeId, ParamEnv) pair every elaboration query is
// memoised by.
type NodeEnvKey struct {
	ID  hir.NodeId
	Env hir.ParamEnv
}

// Context is the single value threaded through every query in a
// compilation: the HIR arena, the name interner, the source manager that
// keeps spans resolvable, the diagnostic sink, and the hash-consed
// parameter-environment table. It holds no package-level mutable state of
// its own.
type Context struct {
	Sources *source.Manager
	Store   *hir.Store
	Names   *hir.Interner
	Sink    *diag.Sink

	mu      sync.Mutex
	envKeys map[envKey]hir.ParamEnv
	envData []*ParamEnvData

	portCache map[NodeEnvKey]*PortMapping
	portFail  map[NodeEnvKey]bool
}

// NewContext creates a query context with the default (empty) parameter
// environment already interned at handle 0, matching
// hir.DefaultParamEnv.
func NewContext(sources *source.Manager, store *hir.Store, names *hir.Interner, sink *diag.Sink) *Context {
	c := &Context{
		Sources:   sources,
		Store:     store,
		Names:     names,
		Sink:      sink,
		envKeys:   make(map[envKey]hir.ParamEnv),
		portCache: make(map[NodeEnvKey]*PortMapping),
		portFail:  make(map[NodeEnvKey]bool),
	}
	empty := &ParamEnvData{Parent: hir.DefaultParamEnv, Bindings: map[hir.NodeId]ParamBinding{}}
	c.envData = append(c.envData, empty)
	c.envKeys[buildEnvKey(hir.DefaultParamEnv, nil)] = hir.DefaultParamEnv
	return c
}

// HirOf is the hir_of(id) query: a thin, panicking arena lookup. A
// dangling or wrong-kind id is an internal invariant violation, not a
// user error (spec.md §3.2 invariant 1), so it is not expressed through
// the ErrDiagnosed channel.
func (c *Context) HirOf(id hir.NodeId) hir.Node {
	return c.Store.HirOf(id)
}

// FindModule is the find_module(name) query.
func (c *Context) FindModule(name hir.Name) (hir.NodeId, bool) {
	return c.Store.FindModule(name)
}

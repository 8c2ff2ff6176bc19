package hir

import "fmt"

// Store is the arena that owns every HIR node for one compilation. It
// hands out dense NodeIds on allocation and never frees or reuses them until
// the whole Store is garbage collected with the compilation (spec.md
// §3.2 invariant 5, §5 memory lifetime).
type Store struct {
	nodes   []Node
	modules map[Name]NodeId

	// portOwner is the secondary back-reference index from a Port's
	// NodeId to the Module that declares it, built during HIR lowering.
	// Per the design note in spec.md §9, this sits beside the arena
	// rather than inside Port itself, since the forward ownership
	// (Module -> []NodeId) is the one edge that matters for allocation
	// and traversal order.
	portOwner map[NodeId]NodeId
}

// NewStore creates an empty arena.
func NewStore() *Store {
	return &Store{
		modules:   make(map[Name]NodeId),
		portOwner: make(map[NodeId]NodeId),
	}
}

// alloc assigns the next NodeId to n, records it in the arena, and
// returns the id. AddModule and Add reserve the slot with a nil node and
// pass the id to their build callback, which sets the node's own Id field
// so that Node.ID() is self-consistent.
func (s *Store) alloc(n Node) NodeId {
	id := NodeId(len(s.nodes))
	s.nodes = append(s.nodes, n)
	return id
}

// AddModule allocates a Module node, registers it in the global module
// table so find_module can resolve instantiation targets by name, and
// returns its id.
func (s *Store) AddModule(build func(id NodeId) *Module) NodeId {
	var m *Module
	id := s.alloc(nil)
	m = build(id)
	m.Id = id
	s.nodes[id] = m
	s.modules[m.Name.Value] = id
	for _, portID := range m.Ports {
		s.portOwner[portID] = id
	}
	return id
}

// Add allocates any non-Module node kind.
func (s *Store) Add(build func(id NodeId) Node) NodeId {
	id := s.alloc(nil)
	n := build(id)
	s.nodes[id] = n
	return id
}

// FindModule resolves a top-level module by name, the query table's
// find_module(name) entry.
func (s *Store) FindModule(name Name) (NodeId, bool) {
	id, ok := s.modules[name]
	return id, ok
}

// ModuleOwning returns the Module that declares the port at portID, the
// reverse relation spec.md §9 describes as a secondary index rather than
// a back-link on Port itself.
func (s *Store) ModuleOwning(portID NodeId) (NodeId, bool) {
	id, ok := s.portOwner[portID]
	return id, ok
}

// bugUnexpectedKind panics with a structured message carrying the
// offending node's id and actual kind. Wrong-variant lookups indicate an
// internal compiler bug (spec.md §3.2 invariant 1, §7), not a user error,
// so this panics, the Go translation of the original's bug_span!
// hard-abort; the driver does not recover the panic.
func bugUnexpectedKind(id NodeId, want string, got Node) {
	panic(fmt.Sprintf("hir: internal invariant violation: node %d expected to be %s, found %T", id, want, got))
}

// HirOf returns the raw tagged-variant reference for id. This is the
// query table's hir_of(id) entry; most callers should use the typed
// Lookup helper instead so a kind mismatch surfaces at the call site.
func (s *Store) HirOf(id NodeId) Node {
	if int(id) < 0 || int(id) >= len(s.nodes) {
		panic(fmt.Sprintf("hir: internal invariant violation: dangling node id %d", id))
	}
	return s.nodes[id]
}

// Lookup performs a typed arena lookup: it fetches the node at id and
// asserts it has the expected concrete kind T, panicking (an internal
// invariant violation, spec.md §3.2 invariant 1) if not.
func Lookup[T Node](s *Store, id NodeId) T {
	n := s.HirOf(id)
	t, ok := n.(T)
	if !ok {
		var zero T
		bugUnexpectedKind(id, fmt.Sprintf("%T", zero), n)
	}
	return t
}

// Len returns the number of nodes allocated so far.
func (s *Store) Len() int {
	return len(s.nodes)
}

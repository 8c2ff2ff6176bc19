package hir

import "sync"

// Name is an interned identifier. Equality and hashing are by intern id,
// not by string content, so comparing two Names is O(1) regardless of the
// length of the identifier they denote. A Name is only meaningful relative
// to the Interner that produced it.
type Name struct {
	id int
}

// Interner maps identifier text to stable Name values. Per spec.md §9's
// design note, one Interner is owned by the query Context and threaded
// through every computation rather than kept as global mutable state.
type Interner struct {
	mu     sync.RWMutex
	byText map[string]Name
	byName []string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{byText: make(map[string]Name)}
}

// Intern returns the Name for text, creating a new one the first time text
// is seen.
func (in *Interner) Intern(text string) Name {
	in.mu.RLock()
	if n, ok := in.byText[text]; ok {
		in.mu.RUnlock()
		return n
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if n, ok := in.byText[text]; ok {
		return n
	}
	n := Name{id: len(in.byName)}
	in.byName = append(in.byName, text)
	in.byText[text] = n
	return n
}

// Text returns the original identifier text for n.
func (in *Interner) Text(n Name) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if n.id < 0 || n.id >= len(in.byName) {
		return "<invalid name>"
	}
	return in.byName[n.id]
}

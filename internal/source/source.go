// Package source owns source file contents and the byte-range spans that
// locate text within them. It plays the role of the "source manager"
// external collaborator described in the front-end specification: the
// preprocessor, the raw-AST parser, and the HIR all carry Span values that
// point back into a Source owned here, without copying or borrowing the
// underlying bytes themselves.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/stefanlippuner/moore/internal/cat"
)

// Content is the immutable byte content of one source file; Iter scans
// its category-token stream on demand. It is reference-counted informally by
// whoever holds a *Content: the Manager keeps the canonical copy alive for
// the lifetime of the compilation, and callers that need tokens beyond
// that lifetime should keep their own reference.
type Content struct {
	Path  string
	Bytes []byte
}

// Iter returns a fresh category-token iterator over this content.
func (c *Content) Iter() *cat.Cat {
	return cat.New(c.Bytes)
}

// Source identifies one file (or injected synthetic buffer) known to a
// Manager. Sources are small values safe to copy and compare.
type Source struct {
	id      int
	path    string
	manager *Manager
}

// Path returns the path this source was opened or added under.
func (s Source) Path() string { return s.path }

// Content returns the pinned byte content of this source.
func (s Source) Content() *Content {
	return s.manager.content(s.id)
}

// Span is a half-open byte range within a Source. Spans are values: they
// neither own nor borrow the source bytes, only name a range within them.
type Span struct {
	Src   Source
	Begin int
	End   int
}

// NewSpan builds a span over [begin, end) in src.
func NewSpan(src Source, begin, end int) Span {
	return Span{Src: src, Begin: begin, End: end}
}

// Union returns the smallest span covering both a and b. Both spans must
// refer to the same source.
func Union(a, b Span) Span {
	if a.Src != b.Src {
		panic("source: cannot union spans from different sources")
	}
	begin, end := a.Begin, a.End
	if b.Begin < begin {
		begin = b.Begin
	}
	if b.End > end {
		end = b.End
	}
	return Span{Src: a.Src, Begin: begin, End: end}
}

// Extract returns the text named by the span.
func (s Span) Extract() string {
	content := s.Src.Content()
	if s.Begin < 0 || s.End > len(content.Bytes) || s.Begin > s.End {
		panic(fmt.Sprintf("source: span [%d:%d) out of bounds for %q (len %d)", s.Begin, s.End, s.Src.path, len(content.Bytes)))
	}
	return string(content.Bytes[s.Begin:s.End])
}

// Spanned pairs a value with the span it was parsed or lowered from.
type Spanned[T any] struct {
	Value T
	Span  Span
}

// Manager owns every Source touched during a compilation. It mirrors the
// teacher's module loader cache (internal/module/loader.go in the pack this
// was adapted from): a mutex-guarded map keyed by canonical path, grown
// on demand, never evicted for the life of the compilation.
type Manager struct {
	mu       sync.RWMutex
	byPath   map[string]int
	contents []*Content
}

// NewManager creates an empty source manager.
func NewManager() *Manager {
	return &Manager{byPath: make(map[string]int)}
}

// Open resolves path on disk and returns a Source for it, or ok=false if
// the file cannot be read. Repeated opens of the same canonical path
// return the same Source without rereading the file, and a path under
// which content was injected with Add resolves to that content.
func (m *Manager) Open(path string) (Source, bool) {
	clean, err := filepath.Abs(path)
	if err != nil {
		clean = path
	}

	m.mu.RLock()
	if id, ok := m.byPath[clean]; ok {
		m.mu.RUnlock()
		return Source{id: id, path: clean, manager: m}, true
	}
	if id, ok := m.byPath[path]; ok {
		m.mu.RUnlock()
		return Source{id: id, path: path, manager: m}, true
	}
	m.mu.RUnlock()

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Source{}, false
	}
	return m.intern(clean, bytes), true
}

// Add injects synthetic content under name, as used by tests that build a
// compilation out of in-memory strings rather than files on disk.
func (m *Manager) Add(name string, content string) Source {
	return m.intern(name, []byte(content))
}

func (m *Manager) intern(path string, raw []byte) Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPath[path]; ok {
		return Source{id: id, path: path, manager: m}
	}
	normalized := cat.Normalize(raw)
	id := len(m.contents)
	m.contents = append(m.contents, &Content{Path: path, Bytes: normalized})
	m.byPath[path] = id
	return Source{id: id, path: path, manager: m}
}

func (m *Manager) content(id int) *Content {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contents[id]
}

package diag

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/stefanlippuner/moore/internal/source"
)

// Severity classifies how a Report should affect the pipeline: Fatal stops
// the producing iterator/query outright, Error marks a query's result as
// ErrDiagnosed but lets independent work continue, Warning and Note are
// always non-blocking.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Label attaches a short, position-anchored explanation to a span, the way
// a squiggly-underline annotation would in a terminal reporter.
type Label struct {
	Span    source.Span
	Message string
}

// Report is the canonical structured diagnostic. Every consumer of the
// core (preprocessor, HIR builder, elaborator) constructs these rather
// than returning bare errors, so a CLI or IDE client can render spans,
// filter by phase, or serialize to JSON uniformly.
type Report struct {
	Severity Severity
	Code     string
	Phase    string
	Message  string
	Primary  *source.Span
	Labels   []Label
	Notes    []string
}

// Error implements the error interface so a Report can be returned or
// wrapped anywhere Go code expects an error.
func (r *Report) Error() string {
	if r == nil {
		return "<nil diagnostic>"
	}
	return fmt.Sprintf("%s[%s]: %s", r.Severity, r.Code, r.Message)
}

// jsonReport is the deterministic wire shape for a Report: spans are
// flattened to file:line-independent byte ranges since source.Span is not
// itself serializable (it carries a live Source handle).
type jsonReport struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Phase    string   `json:"phase"`
	Message  string   `json:"message"`
	Span     *jsonSpan `json:"span,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

type jsonSpan struct {
	File  string `json:"file"`
	Begin int    `json:"begin"`
	End   int    `json:"end"`
}

// ToJSON renders the report as deterministic JSON (struct field order is
// fixed, so no map-key sorting is needed the way the teacher's schema
// package required for its map[string]any payloads).
func (r *Report) ToJSON(indent bool) (string, error) {
	jr := jsonReport{
		Severity: r.Severity.String(),
		Code:     r.Code,
		Phase:    r.Phase,
		Message:  r.Message,
		Notes:    r.Notes,
	}
	if r.Primary != nil {
		jr.Span = &jsonSpan{File: r.Primary.Src.Path(), Begin: r.Primary.Begin, End: r.Primary.End}
	}
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(jr, "", "  ")
	} else {
		data, err = json.Marshal(jr)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Builder constructs a Report fluently, mirroring the DiagBuilder2 idiom
// the original front-end used (original_source/src/svlog/preproc.rs calls
// DiagBuilder2::fatal(...).span(...) throughout).
type Builder struct {
	r Report
}

func newBuilder(sev Severity, code, phase, msg string) *Builder {
	return &Builder{r: Report{Severity: sev, Code: code, Phase: phase, Message: msg}}
}

func Fatalf(phase, code, format string, args ...any) *Builder {
	return newBuilder(Fatal, code, phase, fmt.Sprintf(format, args...))
}

func Errorf(phase, code, format string, args ...any) *Builder {
	return newBuilder(Error, code, phase, fmt.Sprintf(format, args...))
}

func Notef(phase, code, format string, args ...any) *Builder {
	return newBuilder(Note, code, phase, fmt.Sprintf(format, args...))
}

// Span sets the primary span of the diagnostic.
func (b *Builder) Span(sp source.Span) *Builder {
	b.r.Primary = &sp
	return b
}

// Label attaches a secondary labelled span.
func (b *Builder) Label(sp source.Span, message string) *Builder {
	b.r.Labels = append(b.r.Labels, Label{Span: sp, Message: message})
	return b
}

// Note attaches a free-form note.
func (b *Builder) Note(note string) *Builder {
	b.r.Notes = append(b.r.Notes, note)
	return b
}

// Build finalizes the report.
func (b *Builder) Build() *Report {
	r := b.r
	return &r
}

// Sink collects reports in encounter order, the ordering guarantee spec.md
// §5 requires. It is safe for concurrent use, though the core itself is
// single-threaded per compilation.
type Sink struct {
	mu      sync.Mutex
	reports []*Report
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Emit records a report.
func (s *Sink) Emit(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
}

// Reports returns every report emitted so far, in encounter order.
func (s *Sink) Reports() []*Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// HasFatal reports whether any Fatal-severity diagnostic has been emitted.
func (s *Sink) HasFatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.Severity == Fatal {
			return true
		}
	}
	return false
}

// CountBySeverity groups the emitted reports by severity, useful for a
// CLI's end-of-run summary line.
func (s *Sink) CountBySeverity() map[Severity]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[Severity]int)
	for _, r := range s.reports {
		counts[r.Severity]++
	}
	return counts
}

// SortedSeverities returns the severities present in counts, from Fatal
// down to Note, so a summary line renders in a stable, human order.
func SortedSeverities(counts map[Severity]int) []Severity {
	sevs := make([]Severity, 0, len(counts))
	for s := range counts {
		sevs = append(sevs, s)
	}
	sort.Slice(sevs, func(i, j int) bool { return sevs[i] > sevs[j] })
	return sevs
}

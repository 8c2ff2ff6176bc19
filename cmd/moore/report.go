package main

import (
	"fmt"
	"os"

	"github.com/stefanlippuner/moore/internal/diag"
)

// printReports renders every report in sink to stderr, colored by
// severity, the way the teacher's cmd/ailang colors its green/red/yellow
// status lines. It returns true if any Fatal-severity report was printed.
func printReports(sink *diag.Sink) bool {
	for _, r := range sink.Reports() {
		label := severityLabel(r.Severity)
		loc := ""
		if r.Primary != nil {
			loc = fmt.Sprintf("%s: ", r.Primary.Src.Path())
		}
		fmt.Fprintf(os.Stderr, "%s%s [%s]: %s\n", loc, label, r.Code, r.Message)
		for _, l := range r.Labels {
			fmt.Fprintf(os.Stderr, "    %s: %s\n", l.Span.Src.Path(), l.Message)
		}
		for _, n := range r.Notes {
			fmt.Fprintf(os.Stderr, "    note: %s\n", n)
		}
	}
	return sink.HasFatal()
}

func severityLabel(sev diag.Severity) string {
	switch sev {
	case diag.Fatal, diag.Error:
		return red(sev.String())
	case diag.Warning:
		return yellow(sev.String())
	default:
		return cyan(sev.String())
	}
}

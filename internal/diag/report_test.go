package diag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefanlippuner/moore/internal/source"
)

func TestBuilderBuildsReport(t *testing.T) {
	mgr := source.NewManager()
	src := mgr.Add("test.sv", "`foo bar")
	sp := source.NewSpan(src, 0, 4)

	r := Fatalf("preproc", PPUnknownDirective, "unknown compiler directive '`%s'", "foo").
		Span(sp).
		Note("directives are case sensitive").
		Build()

	require.Equal(t, Fatal, r.Severity)
	require.Equal(t, PPUnknownDirective, r.Code)
	require.Equal(t, "preproc", r.Phase)
	require.Contains(t, r.Message, "foo")
	require.NotNil(t, r.Primary)
	require.Equal(t, []string{"directives are case sensitive"}, r.Notes)
}

func TestSinkOrderingAndFatal(t *testing.T) {
	sink := NewSink()
	require.False(t, sink.HasFatal())

	sink.Emit(Notef("elaborate", ELBUnknownModule, "first").Build())
	sink.Emit(Fatalf("preproc", PPIncludeFailed, "second").Build())

	reports := sink.Reports()
	require.Len(t, reports, 2)
	require.Equal(t, "first", reports[0].Message)
	require.Equal(t, "second", reports[1].Message)
	require.True(t, sink.HasFatal())
}

func TestReportToJSON(t *testing.T) {
	mgr := source.NewManager()
	src := mgr.Add("test.sv", "hello")
	sp := source.NewSpan(src, 0, 5)
	r := Errorf("elaborate", ELBUnknownModule, "unknown module or interface `foo`").Span(sp).Build()

	js, err := r.ToJSON(false)
	require.NoError(t, err)
	require.Contains(t, js, `"code":"ELB001"`)
	require.Contains(t, js, `"phase":"elaborate"`)
}

package preproc

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefanlippuner/moore/internal/diag"
	"github.com/stefanlippuner/moore/internal/source"
)

// drain runs the preprocessor to completion and reconstructs the text it
// produced by concatenating every token's extracted source text, mirroring
// the original's `assert_eq!(preproc_str(...), "...")` test idiom.
func drain(t *testing.T, p *Preprocessor) string {
	t.Helper()
	var sb strings.Builder
	for {
		tok, ok, err := p.Next()
		if err != nil {
			t.Fatalf("unexpected preprocessor error: %v", err)
		}
		if !ok {
			break
		}
		sb.WriteString(tok.Span.Extract())
	}
	return sb.String()
}

func newRoot(t *testing.T, mgr *source.Manager, content string) (source.Source, *diag.Sink) {
	t.Helper()
	return mgr.Add("root.sv", content), diag.NewSink()
}

func TestDefineAndExpand(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`define FOO bar\n`FOO\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "bar\n", got)
	require.Empty(t, sink.Reports())
}

func TestConditionalDefine(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`ifdef FOO\nyes\n`else\nno\n`endif\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "no\n", got)
	require.Empty(t, sink.Reports())
}

func TestConditionalDefineTrueBranch(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`define FOO\n`ifdef FOO\nyes\n`else\nno\n`endif\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "yes\n", got)
	require.Empty(t, sink.Reports())
}

func TestMacroArgs(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`define ADD(a,b) a+b\n`ADD(1,2)\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "1+2\n", got)
	require.Empty(t, sink.Reports())
}

// A macro defined with a space before its parenthesized body (rather than
// an immediately-adjacent '(') takes no arguments; the parenthesis is just
// the first character of its body text, reproducing verbatim.
func TestMacroNoargsParentheses(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`define FOO (4+$clog2(2))\n`FOO\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "(4+$clog2(2))\n", got)
	require.Empty(t, sink.Reports())
}

func TestUndef(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`define FOO bar\n`undef FOO\n`ifdef FOO\nyes\n`else\nno\n`endif\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "no\n", got)
	require.Empty(t, sink.Reports())
}

func TestUndefineall(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`define FOO 1\n`define BAR 2\n`undefineall\n`ifdef FOO\nyes\n`else\nno\n`endif\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "no\n", got)
	require.Empty(t, sink.Reports())
}

func TestNestedConditionalTracksDepthWhileDisabled(t *testing.T) {
	mgr := source.NewManager()
	// The outer `ifdef is false, so the inner `ifdef/`endif pair must still
	// be tracked (not matched against the outer `endif) even though its
	// body is never emitted.
	root, sink := newRoot(t, mgr, "`ifdef NOPE\n`ifdef ALSO_NOPE\ninner\n`endif\nouter\n`endif\nkept\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "kept\n", got)
	require.Empty(t, sink.Reports())
}

func TestUnmatchedEndifIsFatal(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`endif\n")
	p := New(mgr, root, nil, sink)
	_, ok, err := p.Next()
	require.False(t, ok)
	require.Error(t, err)
	require.Len(t, sink.Reports(), 1)
	require.Equal(t, diag.PPUnbalancedConditional, sink.Reports()[0].Code)
}

func TestUnknownDirectiveIsFatal(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`frobnicate\n")
	p := New(mgr, root, nil, sink)
	_, ok, err := p.Next()
	require.False(t, ok)
	require.Error(t, err)
	require.Equal(t, diag.PPUnknownDirective, sink.Reports()[0].Code)
}

func TestUnknownDirectiveInsideDisabledRegionIsSilent(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`ifdef NOPE\n`frobnicate\n`endif\nkept\n")
	p := New(mgr, root, nil, sink)
	got := drain(t, p)
	require.Equal(t, "kept\n", got)
	require.Empty(t, sink.Reports())
}

func TestIncludeSplicesFile(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(tmp+"/child.svh", []byte("child\n"), 0o644))

	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`include \"child.svh\"\nparent\n")
	// root has no real path on disk, so point the include search path at
	// tmp directly rather than relying on dirname(root.Path()).
	p := New(mgr, root, []string{tmp}, sink)
	got := drain(t, p)
	// The newline ending the `include line is kept after the spliced text.
	require.Equal(t, "child\n\nparent\n", got)
	require.Empty(t, sink.Reports())
}

func TestIncludeMissingFileIsFatal(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`include \"nope.svh\"\n")
	p := New(mgr, root, nil, sink)
	_, ok, err := p.Next()
	require.False(t, ok)
	require.Error(t, err)
	require.Equal(t, diag.PPIncludeFailed, sink.Reports()[0].Code)
}

func TestStrayBacktickConcatenationIsFatal(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "a``b\n")
	p := New(mgr, root, nil, sink)
	tok, ok, err := p.Next()
	require.True(t, ok)
	require.Nil(t, err)
	require.Equal(t, "a", tok.Span.Extract())

	_, ok, err = p.Next()
	require.False(t, ok)
	require.Error(t, err)
	require.Equal(t, diag.PPStrayBacktick, sink.Reports()[0].Code)
}

func TestSuperfluousMacroParameters(t *testing.T) {
	mgr := source.NewManager()
	root, sink := newRoot(t, mgr, "`define ONE(a) a\n`ONE(1,2)\n")
	p := New(mgr, root, nil, sink)
	_, ok, err := drainUntilError(p)
	require.False(t, ok)
	require.Error(t, err)
	require.Equal(t, diag.PPMalformedDirective, sink.Reports()[0].Code)
}

func drainUntilError(p *Preprocessor) (TokenAndSpan, bool, error) {
	for {
		tok, ok, err := p.Next()
		if err != nil || !ok {
			return tok, ok, err
		}
	}
}

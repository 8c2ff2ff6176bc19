// Package testutil provides golden-file comparison for the preprocessor's
// resolved-text output. Trimmed down from the teacher's testutil/golden.go,
// which compared arbitrary JSON payloads with embedded Go/OS/arch metadata;
// this front end only ever needs to compare one shape of output (the plain
// resolved source text a preprocessing pass prints), so the JSON envelope
// and its metadata stamping are dropped.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldens controls whether AssertGoldenText overwrites the golden
// file instead of comparing against it. Set via environment variable:
// UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the path to the golden file for the named scenario
// within feature's testdata directory.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden")
}

// AssertGoldenText compares actual against the golden file for
// feature/name, or writes it when UpdateGoldens is set.
func AssertGoldenText(t *testing.T, feature, name, actual string) {
	t.Helper()
	path := GoldenPath(feature, name)

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create", path)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}
	if diff := cmp.Diff(string(expected), actual); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}

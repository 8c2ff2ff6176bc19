package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "moore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeProject(t, dir, `
top: counter
include_paths:
  - vendor
sources:
  - rtl/counter.sv
`)
	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "counter", p.Top)
	require.Equal(t, []string{filepath.Join(dir, "vendor")}, p.IncludePaths)
	require.Equal(t, []string{filepath.Join(dir, "rtl/counter.sv")}, p.Sources)
}

func TestLoadRejectsEmptySources(t *testing.T) {
	dir := t.TempDir()
	path := writeProject(t, dir, "top: counter\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

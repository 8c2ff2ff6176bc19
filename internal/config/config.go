// Package config loads the project configuration file, moore.yaml: the
// include-path search list and the design's top module, analogous to the
// teacher's AILANG_PATH stdlib search-path resolution in
// internal/module/resolver.go, but declared in a checked-in file rather
// than an environment variable.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project is the parsed shape of moore.yaml.
type Project struct {
	// Top is the name of the design's top module. The moore command does
	// not read this file; its elaborate subcommand takes the top module
	// only from --top.
	Top string `yaml:"top"`
	// IncludePaths lists directories searched (after the including
	// file's own directory) for `include targets.
	IncludePaths []string `yaml:"include_paths"`
	// Sources lists the root files to preprocess and parse, in order.
	Sources []string `yaml:"sources"`
}

// Load reads and parses the project file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if len(p.Sources) == 0 {
		return nil, fmt.Errorf("config: %s declares no sources", path)
	}

	dir := filepath.Dir(path)
	for i, ip := range p.IncludePaths {
		if !filepath.IsAbs(ip) {
			p.IncludePaths[i] = filepath.Join(dir, ip)
		}
	}
	for i, s := range p.Sources {
		if !filepath.IsAbs(s) {
			p.Sources[i] = filepath.Join(dir, s)
		}
	}
	return &p, nil
}

// Package project loads the optional loom.toml manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file searched for when walking up from a target.
const ManifestName = "loom.toml"

// Emit selects what the lower command prints.
type Emit string

const (
	EmitSurface Emit = "surface"
	EmitGraph   Emit = "graph"
	EmitDump    Emit = "dump"
	EmitDeps    Emit = "deps"
)

// ParseEmit validates an emit mode.
func ParseEmit(s string) (Emit, error) {
	switch e := Emit(strings.ToLower(strings.TrimSpace(s))); e {
	case EmitSurface, EmitGraph, EmitDump, EmitDeps:
		return e, nil
	default:
		return "", fmt.Errorf("invalid emit mode %q (expected surface|graph|dump|deps)", s)
	}
}

// Config mirrors the manifest layout.
type Config struct {
	Compile     CompileConfig     `toml:"compile"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

type CompileConfig struct {
	Namespace  string `toml:"namespace"`
	LineOffset uint32 `toml:"line_offset"`
	Emit       Emit   `toml:"emit"`
	Jobs       int    `toml:"jobs"`
}

type DiagnosticsConfig struct {
	Color string `toml:"color"`
	Max   int    `toml:"max"`
}

// Defaults returns the configuration used without a manifest.
func Defaults() Config {
	return Config{
		Compile:     CompileConfig{LineOffset: 1, Emit: EmitSurface},
		Diagnostics: DiagnosticsConfig{Color: "auto", Max: 100},
	}
}

// Manifest is a loaded loom.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Find walks up from startDir looking for loom.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if st, err := os.Stat(dir); err == nil && !st.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses the manifest governing startDir. Without a manifest
// it returns (nil, false, nil).
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes path over Defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("compile", "emit") {
		emit, err := ParseEmit(string(cfg.Compile.Emit))
		if err != nil {
			return Config{}, fmt.Errorf("%s: [compile].emit: %w", path, err)
		}
		cfg.Compile.Emit = emit
	}
	if cfg.Compile.LineOffset == 0 {
		return Config{}, fmt.Errorf("%s: [compile].line_offset must be at least 1", path)
	}
	if cfg.Compile.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [compile].jobs must not be negative", path)
	}
	switch cfg.Diagnostics.Color {
	case "auto", "on", "off":
	default:
		return Config{}, fmt.Errorf("%s: [diagnostics].color must be auto|on|off", path)
	}
	return cfg, nil
}

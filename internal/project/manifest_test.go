package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadWalksUpAndAppliesDefaults(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[compile]
namespace = "pkg"
emit = "graph"
`)
	nested := filepath.Join(root, "pkg", "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(nested, "mod.py")
	if err := os.WriteFile(src, []byte("def f():\n    return 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(src)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
	cfg := m.Config
	if cfg.Compile.Namespace != "pkg" || cfg.Compile.Emit != EmitGraph {
		t.Fatalf("compile section = %+v", cfg.Compile)
	}
	if cfg.Compile.LineOffset != 1 || cfg.Diagnostics.Max != 100 || cfg.Diagnostics.Color != "auto" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok && m != nil {
		t.Fatalf("manifest returned without being found")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"unknown key", "[compile]\nfoo = 1\n", "unknown keys: compile.foo"},
		{"bad emit", "[compile]\nemit = \"ir\"\n", "[compile].emit"},
		{"zero offset", "[compile]\nline_offset = 0\n", "line_offset"},
		{"bad color", "[diagnostics]\ncolor = \"sometimes\"\n", "[diagnostics].color"},
		{"syntax", "[compile\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.body)
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParseEmit(t *testing.T) {
	if e, err := ParseEmit(" Dump "); err != nil || e != EmitDump {
		t.Fatalf("ParseEmit = %q, %v", e, err)
	}
	if _, err := ParseEmit("asm"); err == nil {
		t.Fatalf("expected error")
	}
}

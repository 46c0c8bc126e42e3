package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[compile]
jobs = 3
emit = "msgpack"
namespaces = ["quant"]

[ops]
libraries = ["ops/quant.toml"]
cache = "/tmp/ops.mp"

[diagnostics]
format = "short"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Compile.Jobs != 3 || cfg.Compile.Emit != "msgpack" || cfg.Diagnostics.Format != "short" {
		t.Fatalf("cfg = %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.Diagnostics.Max != 100 || cfg.Trace.Level != "off" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	libs := cfg.Libraries()
	if len(libs) != 1 || libs[0] != filepath.Join(dir, "ops", "quant.toml") {
		t.Fatalf("libraries = %v", libs)
	}
	if cfg.Resolve(cfg.Ops.Cache) != "/tmp/ops.mp" {
		t.Fatalf("absolute path rewritten")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[compile]\nthreads = 2\n", "unknown keys: compile.threads"},
		{"bad emit", "[compile]\nemit = \"llvm\"\n", "[compile].emit"},
		{"negative jobs", "[compile]\njobs = -1\n", "[compile].jobs"},
		{"zero max", "[diagnostics]\nmax = 0\n", "[diagnostics].max"},
		{"syntax", "[compile\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[compile]\njobs = 7\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Compile.Jobs != 7 || cfg.Root != root {
		t.Fatalf("cfg = %+v", cfg)
	}
}

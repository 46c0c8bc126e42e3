package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jitscript/internal/diag"
	"jitscript/internal/observ"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

const bundle = `
file: net.py
source: "def forward(self, x):\n    return nn.gelu(torch.relu(x))\n"
modules:
  - name: Net
    fields:
      - {name: weight, type: Tensor}
    methods:
      - name: forward
        params:
          - {name: x, type: Tensor}
        returns: Tensor
        body:
          - return: {call: nn.gelu, args: [{call: torch.relu, args: [x]}], at: [33, 55]}
      - name: twice
        params:
          - {name: x, type: Tensor}
        returns: Tensor
        body:
          - assign: [y]
            value: {call: self.forward, args: [x]}
          - return: {call: self.forward, args: [y]}
`

const library = `
[aliases]
nn = "aten"

[[operator]]
schema = "aten::gelu(Tensor self) -> Tensor"
doc = "Gaussian error linear unit"
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCompileWithLibrary(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "net.yaml", bundle)
	lib := writeFile(t, dir, "nn.toml", library)

	timer := observ.NewTimer()
	res, err := Compile(context.Background(), src, Options{
		Libraries:  []string{lib},
		Namespaces: []string{"nn"},
		Jobs:       2,
		Timer:      timer,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if res.Stats.Methods != 2 || res.Stats.Failed != 0 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if !strings.Contains(timer.Summary(), "decode") {
		t.Fatalf("timer misses phases:\n%s", timer.Summary())
	}

	var buf bytes.Buffer
	if err := Export(&buf, res.Program, EmitIR); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "aten::gelu") || !strings.Contains(out, "prim::CallMethod") {
		t.Fatalf("IR dump:\n%s", out)
	}
}

func TestExportArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "net.yaml", bundle)
	lib := writeFile(t, dir, "nn.toml", library)
	res, err := Compile(context.Background(), src, Options{Libraries: []string{lib}, Namespaces: []string{"nn"}})
	if err != nil || res.Bag.Len() != 0 {
		t.Fatalf("Compile: %v %v", err, res.Bag.Items())
	}
	var buf bytes.Buffer
	if err := Export(&buf, res.Program, EmitMsgpack); err != nil {
		t.Fatalf("Export: %v", err)
	}
	in := types.NewInterner()
	graphs, err := ReadArchive(buf.Bytes(), in)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(graphs) != 2 || graphs[0].Name != "Net.forward" {
		t.Fatalf("graphs = %d", len(graphs))
	}
	if _, ok := in.ClassByName("Net"); !ok {
		t.Fatalf("class not redeclared")
	}
	if graphs[0].String() != res.Program.Graphs()[0].String() {
		t.Fatalf("round trip changed the graph:\n%s\nvs\n%s", graphs[0], res.Program.Graphs()[0])
	}
}

func TestCompileReportsInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		bundle string
		lib    string
		want   diag.Code
	}{
		{
			name:   "unknown bundle key",
			bundle: "modules:\n  - name: Net\n    colour: red\n",
			want:   diag.InputBadBundle,
		},
		{
			name:   "broken library",
			bundle: bundle,
			lib:    "[[operator]\nschema = 1\n",
			want:   diag.InputBadLibrary,
		},
		{
			name:   "unknown namespace",
			bundle: bundle,
			want:   diag.EmitUndefinedName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := Options{}
			if tt.lib != "" {
				opts.Libraries = []string{writeFile(t, dir, "bad.toml", tt.lib)}
			}
			res, err := Compile(context.Background(), writeFile(t, dir, "b.yaml", tt.bundle), opts)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			items := res.Bag.Items()
			if len(items) == 0 || items[0].Code != tt.want {
				t.Fatalf("diagnostics = %v, want %v", items, tt.want)
			}
		})
	}
}

func TestRegistryCache(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "nn.toml", library)
	cache := filepath.Join(dir, "cache", "ops.mp")
	built, err := WriteCache(context.Background(), cache, []string{lib})
	if err != nil {
		t.Fatalf("WriteCache: %v", err)
	}
	reg, cached, err := BuildRegistry(context.Background(), types.NewInterner(), RegistryOptions{Cache: cache})
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	if !cached || reg.Len() != built.Len() {
		t.Fatalf("cached=%v len=%d want %d", cached, reg.Len(), built.Len())
	}
	if !reg.Has(symbols.MustQual("nn::gelu")) {
		t.Fatalf("alias lost in snapshot")
	}

	// a missing cache falls back to building from sources
	_, cached, err = BuildRegistry(context.Background(), types.NewInterner(), RegistryOptions{Cache: filepath.Join(dir, "none.mp")})
	if err != nil || cached {
		t.Fatalf("fallback: cached=%v err=%v", cached, err)
	}
}

func TestParseEmitMode(t *testing.T) {
	if m, err := ParseEmitMode("msgpack"); err != nil || m != EmitMsgpack {
		t.Fatalf("msgpack: %v %v", m, err)
	}
	if _, err := ParseEmitMode("llvm"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCompileWarnsOnEmptyNamespace(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "net.yaml", bundle)
	res, err := Compile(context.Background(), src, Options{Namespaces: []string{"nn"}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	items := res.Bag.Items()
	last := items[len(items)-1]
	if last.Code != diag.InputUnknownNamespace || last.Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %v, want trailing namespace warning", items)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("nn.gelu without a library must still fail")
	}
}

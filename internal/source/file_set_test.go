package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("model.py", []byte("x = int(y)\nz = torch.relu(x)\n"))

	start, end := fs.Resolve(Span{File: id, Start: 15, End: 25})
	if start != (LineCol{Line: 2, Col: 5}) {
		t.Fatalf("unexpected start %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 15}) {
		t.Fatalf("unexpected end %+v", end)
	}
	if got := fs.Get(id).Line(2); got != "z = torch.relu(x)" {
		t.Fatalf("unexpected line text %q", got)
	}
	if got := fs.Get(id).Line(9); got != "" {
		t.Fatalf("line past end must be empty, got %q", got)
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.py")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content not normalized: %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got, ok := fs.Lookup(path); !ok || got != id {
		t.Fatalf("lookup by path failed")
	}
}

func TestSpanAtClamps(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.yaml", []byte("modules:\n  - name: Net\n"))
	f := fs.Get(id)
	tests := []struct {
		line, col int
		want      uint32
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 5, 13},
		{9, 1, 23},
	}
	for _, tt := range tests {
		sp := f.SpanAt(tt.line, tt.col)
		if sp.Start != tt.want || !sp.Empty() || sp.File != id {
			t.Fatalf("SpanAt(%d, %d) = %v, want start %d", tt.line, tt.col, sp, tt.want)
		}
	}
	if sp := f.SpanOf(20, 10); sp.Start != 20 || sp.End != 23 {
		t.Fatalf("SpanOf should clamp, got %v", sp)
	}
}

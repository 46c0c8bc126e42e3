package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"callee and last arg", Span{File: 1, Start: 10, End: 20}, Span{File: 1, Start: 30, End: 40}, Span{File: 1, Start: 10, End: 40}},
		{"nested arg", Span{File: 1, Start: 10, End: 40}, Span{File: 1, Start: 15, End: 20}, Span{File: 1, Start: 10, End: 40}},
		{"placeholder takes other", Span{File: 1}, Span{File: 1, Start: 7, End: 9}, Span{File: 1, Start: 7, End: 9}},
		{"different files keep receiver", Span{File: 1, Start: 10, End: 20}, Span{File: 2, Start: 0, End: 100}, Span{File: 1, Start: 10, End: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Fatalf("Cover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNoSpanHasNoFile(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("net.yaml", []byte("modules: []\n"))
	if fs.Get(NoSpan.File) != nil {
		t.Fatalf("NoSpan must not resolve to a file")
	}
	if NoSpan.String() != "-" {
		t.Fatalf("NoSpan.String() = %q", NoSpan.String())
	}
}

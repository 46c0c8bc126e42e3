package source

import "testing"

func TestInternerStableIDs(t *testing.T) {
	in := NewInterner()
	a := in.Intern("aten::relu")
	b := in.Intern("prim::Int")
	if a == b {
		t.Fatalf("distinct strings share id %d", a)
	}
	if again := in.Intern("aten::relu"); again != a {
		t.Fatalf("re-interning changed id: %d != %d", again, a)
	}
	if got, ok := in.Lookup(b); !ok || got != "prim::Int" {
		t.Fatalf("lookup mismatch: %q", got)
	}
	if in.Len() != 3 {
		t.Fatalf("expected 3 entries including empty, got %d", in.Len())
	}
}

func TestInternerEmptyString(t *testing.T) {
	in := NewInterner()
	if id := in.Intern(""); id != NoStringID {
		t.Fatalf("empty string must map to NoStringID, got %d", id)
	}
	if _, ok := in.Find("missing"); ok {
		t.Fatalf("Find must not intern")
	}
	if _, ok := in.Lookup(42); ok {
		t.Fatalf("unknown id must not resolve")
	}
}

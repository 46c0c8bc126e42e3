package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Tensor == NoTypeID || b.Int == NoTypeID || b.None == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if in.KindOf(b.Tensor) != KindTensor {
		t.Fatalf("expected Tensor kind, got %v", in.KindOf(b.Tensor))
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if in.Optional(b.Int) != in.Optional(b.Int) {
		t.Fatalf("optional types should be deduplicated")
	}
	if in.Tuple([]TypeID{b.Int, b.Tensor}) != in.Tuple([]TypeID{b.Int, b.Tensor}) {
		t.Fatalf("tuple types should be deduplicated")
	}
	if in.Tuple([]TypeID{b.Int, b.Tensor}) == in.Tuple([]TypeID{b.Tensor, b.Int}) {
		t.Fatalf("element order must affect tuple identity")
	}
}

func TestOptionalCollapses(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	opt := in.Optional(b.Tensor)
	if in.Optional(opt) != opt {
		t.Fatalf("Optional[Optional[T]] must collapse")
	}
	if in.Optional(b.None) != b.None {
		t.Fatalf("Optional[None] must collapse to None")
	}
}

func TestClassFieldsAndMethods(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cls, err := in.RegisterClass("Net", []Field{{Name: "weight", Type: b.Tensor}})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := in.RegisterClass("Net", nil); err == nil {
		t.Fatalf("duplicate class must fail")
	}
	if !in.AddMethod(cls, "forward") || in.AddMethod(cls, "forward") {
		t.Fatalf("AddMethod must accept once")
	}
	if ft, ok := in.FieldType(cls, "weight"); !ok || ft != b.Tensor {
		t.Fatalf("field lookup failed")
	}
	if !in.HasMethod(cls, "forward") || in.HasMethod(cls, "weight") {
		t.Fatalf("method lookup wrong")
	}
	if in.Format(cls) != "Net" {
		t.Fatalf("unexpected class name %q", in.Format(cls))
	}
}

func TestIsSubtype(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	optInt := in.Optional(b.Int)
	tests := []struct {
		name     string
		sub, sup TypeID
		want     bool
	}{
		{"reflexive", b.Int, b.Int, true},
		{"any", b.Tensor, b.Any, true},
		{"int not float", b.Int, b.Float, false},
		{"none into optional", b.None, optInt, true},
		{"value into optional", b.Int, optInt, true},
		{"optional not into value", optInt, b.Int, false},
		{"tuple covariant", in.Tuple([]TypeID{b.Int, b.None}), in.Tuple([]TypeID{b.Int, optInt}), true},
		{"tuple arity", in.Tuple([]TypeID{b.Int}), in.Tuple([]TypeID{b.Int, b.Int}), false},
		{"list invariant", in.List(b.Int), in.List(optInt), false},
		{"future covariant", in.Future(b.Int), in.Future(optInt), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := in.IsSubtype(tt.sub, tt.sup); got != tt.want {
				t.Fatalf("IsSubtype(%s, %s) = %v", in.Format(tt.sub), in.Format(tt.sup), got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	in := NewInterner()
	if _, err := in.RegisterClass("Encoder", nil); err != nil {
		t.Fatal(err)
	}
	tests := []struct{ src, want string }{
		{"Tensor", "Tensor"},
		{"int?", "Optional[int]"},
		{"Optional[ Tensor ]", "Optional[Tensor]"},
		{"Tuple[int, Tuple[Tensor, float]]", "Tuple[int, Tuple[Tensor, float]]"},
		{"List[str]", "List[str]"},
		{"Future[Encoder]", "Future[Encoder]"},
		{"Tuple[]", "Tuple[]"},
	}
	for _, tt := range tests {
		id, err := in.Parse(tt.src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.src, err)
		}
		if got := in.Format(id); got != tt.want {
			t.Fatalf("Parse(%q) formatted as %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	in := NewInterner()
	for _, src := range []string{"", "Blob", "List[int, int]", "Tuple[int", "int]"} {
		if _, err := in.Parse(src); err == nil {
			t.Fatalf("Parse(%q) must fail", src)
		}
	}
}

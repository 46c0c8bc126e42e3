package ops

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

func newDefault(t *testing.T) (*Registry, *types.Interner) {
	t.Helper()
	in := types.NewInterner()
	r, err := NewDefaultRegistry(in)
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	r.Freeze()
	return r, in
}

func TestDefaultLibrarySignaturesRoundTrip(t *testing.T) {
	in := types.NewInterner()
	for _, sig := range defaultLibrary {
		s, err := ParseSchema(in, sig)
		if err != nil {
			t.Fatalf("ParseSchema(%q): %v", sig, err)
		}
		if got := s.Signature(in); got != sig {
			t.Fatalf("Signature round trip:\n got %q\nwant %q", got, sig)
		}
	}
}

func TestParseSchemaErrors(t *testing.T) {
	in := types.NewInterner()
	cases := []string{
		"relu(Tensor self) -> Tensor",
		"aten::relu(Tensor self) Tensor",
		"aten::relu(Tensor self -> Tensor",
		"aten::relu(Tensor) -> Tensor",
		"aten::relu(Widget self) -> Tensor",
		"aten::relu(int x=) -> Tensor",
	}
	for _, sig := range cases {
		if _, err := ParseSchema(in, sig); err == nil {
			t.Fatalf("ParseSchema(%q): expected error", sig)
		}
	}
}

func TestAliasLookup(t *testing.T) {
	r, _ := newDefault(t)
	torch := symbols.MustQual("torch::relu")
	if !r.Has(torch) {
		t.Fatalf("torch::relu should resolve through the alias")
	}
	if got := r.Canonical(torch).String(); got != "aten::relu" {
		t.Fatalf("Canonical = %q", got)
	}
	if !r.HasNamespace("torch") || !r.HasNamespace("prim") || r.HasNamespace("nope") {
		t.Fatalf("HasNamespace mismatch")
	}
}

func TestMatchSelectsOverload(t *testing.T) {
	r, in := newDefault(t)
	b := in.Builtins()
	tests := []struct {
		name     string
		sym      string
		pos      []Actual
		kw       []Actual
		overload string
		slots    []SlotSource
	}{
		{"tensor", "aten::add", []Actual{{Type: b.Tensor}, {Type: b.Tensor}}, nil, "", []SlotSource{FromPositional, FromPositional, FromDefault}},
		{"int", "aten::add", []Actual{{Type: b.Int}, {Type: b.Int}}, nil, "int", []SlotSource{FromPositional, FromPositional}},
		{"kwarg", "aten::add", []Actual{{Type: b.Tensor}, {Type: b.Tensor}}, []Actual{{Name: "alpha", Type: b.Float}}, "", []SlotSource{FromPositional, FromPositional, FromKeyword}},
		{"dim", "aten::max", []Actual{{Type: b.Tensor}, {Type: b.Int}}, nil, "dim", []SlotSource{FromPositional, FromPositional, FromDefault}},
		{"none-optional", "aten::linear", []Actual{{Type: b.Tensor}, {Type: b.Tensor}, {Type: b.None}}, nil, "", []SlotSource{FromPositional, FromPositional, FromPositional}},
		{"alias", "torch::relu", []Actual{{Type: b.Tensor}}, nil, "", []SlotSource{FromPositional}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bind, err := r.Match(symbols.MustQual(tt.sym), tt.pos, tt.kw)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if bind.Schema.Overload != tt.overload {
				t.Fatalf("overload = %q, want %q", bind.Schema.Overload, tt.overload)
			}
			if len(bind.Slots) != len(tt.slots) {
				t.Fatalf("slots = %d, want %d", len(bind.Slots), len(tt.slots))
			}
			for i, s := range bind.Slots {
				if s.Source != tt.slots[i] {
					t.Fatalf("slot %d source = %d, want %d", i, s.Source, tt.slots[i])
				}
			}
		})
	}
}

func TestMatchFailureListsCandidates(t *testing.T) {
	r, in := newDefault(t)
	b := in.Builtins()
	sym := symbols.MustQual("torch::relu")
	_, err := r.Match(sym, []Actual{{Type: b.Int}}, nil)
	var nm *NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("expected *NoMatchError, got %v", err)
	}
	if nm.Symbol != sym {
		t.Fatalf("error symbol = %s, want the spelling used at the call", nm.Symbol)
	}
	if len(nm.Candidates) != 1 || nm.Candidates[0] != "aten::relu(Tensor self) -> Tensor" {
		t.Fatalf("candidates = %v", nm.Candidates)
	}
	if !strings.Contains(err.Error(), "torch::relu") {
		t.Fatalf("message should name the symbol: %q", err.Error())
	}

	_, err = r.Match(symbols.MustQual("aten::relu"), []Actual{{Type: b.Tensor}}, []Actual{{Name: "inplace", Type: b.Bool}})
	if !errors.As(err, &nm) || !strings.Contains(nm.Reasons[0], "unknown keyword") {
		t.Fatalf("unknown keyword should be rejected: %v", err)
	}

	_, err = r.Match(symbols.MustQual("aten::add"), []Actual{{Type: b.Tensor}, {Type: b.Tensor}, {Type: b.Float}}, nil)
	if err == nil {
		t.Fatalf("alpha is keyword-only and must not bind positionally")
	}
}

func TestVariadicResultTypes(t *testing.T) {
	r, in := newDefault(t)
	chunk := r.Lookup(symbols.MustQual("aten::chunk"))[0]
	if !chunk.VarRet {
		t.Fatalf("aten::chunk should be variadic")
	}
	for n, want := range map[int]int{0: 1, 1: 1, 3: 3} {
		got := chunk.ResultTypes(n)
		if len(got) != want {
			t.Fatalf("ResultTypes(%d) = %d outputs, want %d", n, len(got), want)
		}
		for _, id := range got {
			if id != in.Builtins().Tensor {
				t.Fatalf("unexpected type %s", in.Format(id))
			}
		}
	}
	relu := r.Lookup(symbols.MustQual("aten::relu"))[0]
	if len(relu.ResultTypes(4)) != 1 {
		t.Fatalf("fixed-arity ops ignore the binder count")
	}
}

func TestRegisterRules(t *testing.T) {
	in := types.NewInterner()
	r := NewRegistry(in)
	if err := r.RegisterSignature("x::f(int a) -> int"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.RegisterSignature("x::f(float a) -> int"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := r.Alias("x", "y"); !errors.Is(err, ErrAliasConflict) {
		t.Fatalf("expected ErrAliasConflict, got %v", err)
	}
	r.Freeze()
	if err := r.RegisterSignature("x::g(int a) -> int"); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}

func TestDecodeLibrary(t *testing.T) {
	src := `
[aliases]
nn = "aten"

[[operator]]
schema = "aten::gelu(Tensor self) -> Tensor"
doc = "gelu"
`
	lib, err := DecodeLibrary(strings.NewReader(src), "lib.toml")
	if err != nil {
		t.Fatalf("DecodeLibrary: %v", err)
	}
	r, _ := newDefaultUnfrozen(t)
	if err := r.Apply(lib); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ss := r.Lookup(symbols.MustQual("nn::gelu"))
	if len(ss) != 1 || ss[0].Doc != "gelu" {
		t.Fatalf("nn::gelu lookup = %v", ss)
	}

	if _, err := DecodeLibrary(strings.NewReader("[[operator]]\nsignature = \"x\"\n"), "bad.toml"); err == nil {
		t.Fatalf("unknown keys must be rejected")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	r, _ := newDefault(t)
	var buf bytes.Buffer
	if err := r.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	got, err := ReadSnapshot(&buf, types.NewInterner())
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.Len() != r.Len() {
		t.Fatalf("Len = %d, want %d", got.Len(), r.Len())
	}
	want, have := r.All(), got.All()
	for i := range want {
		if want[i].Signature(r.Types()) != have[i].Signature(got.Types()) {
			t.Fatalf("overload %d differs", i)
		}
	}
	if !got.Has(symbols.MustQual("torch::chunk")) {
		t.Fatalf("aliases lost in snapshot")
	}
}

func newDefaultUnfrozen(t *testing.T) (*Registry, *types.Interner) {
	t.Helper()
	in := types.NewInterner()
	r, err := NewDefaultRegistry(in)
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	return r, in
}

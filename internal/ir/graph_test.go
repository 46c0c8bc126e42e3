package ir

import (
	"strings"
	"testing"

	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

func TestInsertAndDump(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	g := NewGraph("forward", in)
	x := g.AddInput("x", b.Tensor)
	relu := g.Insert(symbols.MustQual("aten::relu"), source.Span{}, []*Value{x}, []types.TypeID{b.Tensor})
	g.SetOutputs(relu.Output())

	want := "graph forward(%x.1 : Tensor):\n" +
		"  %2 : Tensor = aten::relu(%x.1)\n" +
		"  return (%2)\n"
	if got := g.String(); got != want {
		t.Fatalf("unexpected dump:\n%s\nwant:\n%s", got, want)
	}
	if relu.Owner() != g.Body() || relu.Output().Node() != relu {
		t.Fatalf("ownership links are broken")
	}
}

func TestMustBeNone(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	g := NewGraph("f", in)
	optNone := g.InsertNone(source.Span{}, in.Optional(b.Int))
	if !optNone.MustBeNone(in) {
		t.Fatalf("prim::None output must be None even when typed optional")
	}
	opt := g.AddInput("maybe", in.Optional(b.Int))
	if opt.MustBeNone(in) {
		t.Fatalf("optional input is not statically None")
	}
	c := g.InsertConstant(source.Span{}, b.Int, "3")
	if c.MustBeNone(in) {
		t.Fatalf("int constant is not None")
	}
	if v, _ := c.Node().Attr("value"); v != "3" {
		t.Fatalf("constant attribute lost: %q", v)
	}
}

func TestForkBlockInsertion(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	g := NewGraph("f", in)
	x := g.AddInput("x", b.Tensor)
	fork := g.InsertWithBlock(symbols.PrimFork, source.Span{}, []*Value{x}, []types.TypeID{in.Future(b.Tensor)})
	captured := fork.Block.AddInput(g, "x", b.Tensor)

	prev := g.SetInsertBlock(fork.Block)
	inner := g.Insert(symbols.MustQual("aten::relu"), source.Span{}, []*Value{captured}, []types.TypeID{b.Tensor})
	fork.Block.Outputs = []*Value{inner.Output()}
	g.SetInsertBlock(prev)

	if len(g.Body().Nodes) != 1 || g.NodeCount() != 2 {
		t.Fatalf("expected 1 top-level node and 2 total, got %d/%d", len(g.Body().Nodes), g.NodeCount())
	}
	if fork.Block.Owner() != fork {
		t.Fatalf("block owner not set")
	}
	if !strings.Contains(g.String(), "block(%x.3 : Tensor)") {
		t.Fatalf("fork block not dumped:\n%s", g)
	}
}

func TestEncodeDecode(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	g := NewGraph("pair", in)
	x := g.AddInput("x", b.Tensor)
	n := g.Insert(symbols.MustQual("aten::max"), source.Span{File: 0, Start: 4, End: 9}, []*Value{x}, []types.TypeID{b.Tensor, b.Tensor})
	tup := g.Insert(symbols.PrimTupleConstruct, source.Span{}, n.Outputs, []types.TypeID{in.Tuple([]types.TypeID{b.Tensor, b.Tensor})})
	g.SetOutputs(tup.Output())

	data, err := Encode(g)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(data, types.NewInterner())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.String() != g.String() {
		t.Fatalf("decoded graph differs:\n%s\nvs\n%s", back, g)
	}
	if sp := back.Body().Nodes[0].Span; sp.Start != 4 || sp.End != 9 {
		t.Fatalf("span lost: %v", sp)
	}
}

func TestDecodeRejectsUnknownClass(t *testing.T) {
	in := types.NewInterner()
	cls, err := in.RegisterClass("Net", nil)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGraph("forward", in)
	g.SetOutputs(g.AddInput("self", cls))
	data, err := Encode(g)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data, types.NewInterner()); err == nil {
		t.Fatalf("decoding a class-typed value without the class must fail")
	}
}

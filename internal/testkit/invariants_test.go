package testkit

import (
	"strings"
	"testing"

	"jitscript/internal/ir"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

func TestCheckGraphAcceptsWellFormed(t *testing.T) {
	in := types.NewInterner()
	tensor := in.Builtins().Tensor
	g := ir.NewGraph("f", in)
	x := g.AddInput("x", tensor)
	fork := g.InsertWithBlock(symbols.PrimFork, source.NoSpan, []*ir.Value{x}, nil)
	prev := g.SetInsertBlock(fork.Block)
	cx := fork.Block.AddInput(g, "x", tensor)
	y := g.Insert(symbols.MustQual("aten::relu"), source.NoSpan, []*ir.Value{cx}, []types.TypeID{tensor}).Output()
	fork.Block.Outputs = []*ir.Value{y}
	g.SetInsertBlock(prev)
	fut := g.AddOutput(fork, in.Future(tensor))
	g.SetOutputs(fut)

	if err := CheckGraph(g); err != nil {
		t.Fatalf("CheckGraph: %v", err)
	}
}

func TestCheckGraphRejectsLeakedBlockValue(t *testing.T) {
	in := types.NewInterner()
	tensor := in.Builtins().Tensor
	g := ir.NewGraph("f", in)
	x := g.AddInput("x", tensor)
	fork := g.InsertWithBlock(symbols.PrimFork, source.NoSpan, []*ir.Value{x}, nil)
	prev := g.SetInsertBlock(fork.Block)
	y := g.Insert(symbols.MustQual("aten::relu"), source.NoSpan, []*ir.Value{x}, []types.TypeID{tensor}).Output()
	g.SetInsertBlock(prev)
	// y lives inside the fork body and is not visible here
	g.SetOutputs(y)

	err := CheckGraph(g)
	if err == nil || !strings.Contains(err.Error(), "undefined") {
		t.Fatalf("err = %v", err)
	}
}

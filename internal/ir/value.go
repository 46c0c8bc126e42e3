package ir

import (
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// ValueID is unique within one Graph.
type ValueID uint32

// Value is an SSA value: a graph or block input, or a node output.
// Its identity is stable for the lifetime of the graph.
type Value struct {
	id     ValueID
	typ    types.TypeID
	node   *Node // nil for block inputs
	offset int
	name   string
}

func (v *Value) ID() ValueID { return v.id }

func (v *Value) Type() types.TypeID { return v.typ }

// Node returns the producing node, or nil for block inputs.
func (v *Value) Node() *Node { return v.node }

// Offset is the position among the producing node's outputs.
func (v *Value) Offset() int { return v.offset }

func (v *Value) DebugName() string { return v.name }

func (v *Value) SetDebugName(name string) { v.name = name }

// MustBeNone reports whether v is statically the None sentinel: it is produced
// by prim::None or its type is exactly None.
func (v *Value) MustBeNone(in *types.Interner) bool {
	if v == nil {
		return false
	}
	if v.node != nil && v.node.Kind == symbols.PrimNone {
		return true
	}
	return in.KindOf(v.typ) == types.KindNone
}

package ir

import (
	"fmt"

	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// Node is one operator application.
type Node struct {
	Kind    symbols.Symbol
	Span    source.Span
	Inputs  []*Value
	Outputs []*Value
	Attrs   map[string]string
	// Block holds the body of structured nodes such as prim::fork.
	Block *Block
	owner *Block
}

// Attr returns a string attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Output returns the single output of n; it panics for other arities.
func (n *Node) Output() *Value {
	if len(n.Outputs) != 1 {
		panic(fmt.Sprintf("ir: %s has %d outputs", n.Kind, len(n.Outputs)))
	}
	return n.Outputs[0]
}

// Owner returns the block n is appended to.
func (n *Node) Owner() *Block { return n.owner }

// Block is a straight-line list of nodes with inputs and outputs.
type Block struct {
	Inputs  []*Value
	Nodes   []*Node
	Outputs []*Value
	owner   *Node // nil for the top-level block
}

// Owner returns the structured node owning b, or nil for the graph body.
func (b *Block) Owner() *Node { return b.owner }

// Graph is the IR of one compiled function or method.
type Graph struct {
	Name   string
	types  *types.Interner
	top    *Block
	insert *Block
	nextID ValueID
}

// NewGraph creates an empty graph whose values are typed by in.
func NewGraph(name string, in *types.Interner) *Graph {
	top := &Block{}
	return &Graph{Name: name, types: in, top: top, insert: top, nextID: 1}
}

func (g *Graph) Types() *types.Interner { return g.types }

// Body returns the top-level block.
func (g *Graph) Body() *Block { return g.top }

// Inputs returns the graph parameters.
func (g *Graph) Inputs() []*Value { return g.top.Inputs }

// Outputs returns the graph results.
func (g *Graph) Outputs() []*Value { return g.top.Outputs }

// SetOutputs records the graph results.
func (g *Graph) SetOutputs(vals ...*Value) { g.top.Outputs = vals }

// InsertBlock returns the block new nodes are appended to.
func (g *Graph) InsertBlock() *Block { return g.insert }

// SetInsertBlock redirects insertion and returns the previous block.
func (g *Graph) SetInsertBlock(b *Block) *Block {
	prev := g.insert
	if b == nil {
		b = g.top
	}
	g.insert = b
	return prev
}

func (g *Graph) newValue(typ types.TypeID, node *Node, offset int) *Value {
	v := &Value{id: g.nextID, typ: typ, node: node, offset: offset}
	if g.nextID == ^ValueID(0) {
		panic("ir: value id overflow")
	}
	g.nextID++
	return v
}

// AddInput appends a graph parameter.
func (g *Graph) AddInput(name string, typ types.TypeID) *Value {
	return g.top.addInput(g, name, typ)
}

// AddInput appends a block parameter, e.g. a value captured by a fork body.
func (b *Block) AddInput(g *Graph, name string, typ types.TypeID) *Value {
	return b.addInput(g, name, typ)
}

func (b *Block) addInput(g *Graph, name string, typ types.TypeID) *Value {
	v := g.newValue(typ, nil, len(b.Inputs))
	v.name = name
	b.Inputs = append(b.Inputs, v)
	return v
}

// Insert appends a node of kind to the insertion block.
func (g *Graph) Insert(kind symbols.Symbol, span source.Span, inputs []*Value, outTypes []types.TypeID) *Node {
	n := &Node{
		Kind:   kind,
		Span:   span,
		Inputs: append([]*Value(nil), inputs...),
		owner:  g.insert,
	}
	n.Outputs = make([]*Value, len(outTypes))
	for i, t := range outTypes {
		n.Outputs[i] = g.newValue(t, n, i)
	}
	g.insert.Nodes = append(g.insert.Nodes, n)
	return n
}

// InsertWithBlock appends a structured node with an empty nested block.
func (g *Graph) InsertWithBlock(kind symbols.Symbol, span source.Span, inputs []*Value, outTypes []types.TypeID) *Node {
	n := g.Insert(kind, span, inputs, outTypes)
	n.Block = &Block{owner: n}
	return n
}

// AddOutput appends an output to n. Structured nodes learn their result type
// only after the nested block is emitted.
func (g *Graph) AddOutput(n *Node, typ types.TypeID) *Value {
	v := g.newValue(typ, n, len(n.Outputs))
	n.Outputs = append(n.Outputs, v)
	return v
}

// SetAttr sets a string attribute on n.
func (n *Node) SetAttr(name, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string, 1)
	}
	n.Attrs[name] = value
	return n
}

// InsertConstant emits prim::Constant[value=literal] of type typ.
func (g *Graph) InsertConstant(span source.Span, typ types.TypeID, literal string) *Value {
	return g.Insert(symbols.PrimConstant, span, nil, []types.TypeID{typ}).SetAttr("value", literal).Output()
}

// InsertNone emits the None sentinel. typ may be None or an optional type.
func (g *Graph) InsertNone(span source.Span, typ types.TypeID) *Value {
	if typ == types.NoTypeID {
		typ = g.types.Builtins().None
	}
	return g.Insert(symbols.PrimNone, span, nil, []types.TypeID{typ}).Output()
}

// NodeCount counts nodes recursively, including nested blocks.
func (g *Graph) NodeCount() int {
	return countNodes(g.top)
}

func countNodes(b *Block) int {
	n := len(b.Nodes)
	for _, node := range b.Nodes {
		if node.Block != nil {
			n += countNodes(node.Block)
		}
	}
	return n
}

// ValueCount returns the number of values allocated so far.
func (g *Graph) ValueCount() int {
	return int(g.nextID - 1)
}

package ir

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// wireSchema is bumped whenever the encoded layout changes.
const wireSchema uint16 = 1

// Types travel as their formatted annotation so that the consumer does not
// need this process's interner; class names must be declared on decode.
type wireValue struct {
	ID   uint32 `msgpack:"id"`
	Type string `msgpack:"type"`
	Name string `msgpack:"name,omitempty"`
}

type wireNode struct {
	Kind    string            `msgpack:"kind"`
	Span    [3]uint32         `msgpack:"span"`
	Inputs  []uint32          `msgpack:"in"`
	Outputs []wireValue       `msgpack:"out"`
	Attrs   map[string]string `msgpack:"attrs,omitempty"`
	Block   *wireBlock        `msgpack:"block,omitempty"`
}

type wireBlock struct {
	Inputs  []wireValue `msgpack:"in"`
	Nodes   []wireNode  `msgpack:"nodes"`
	Outputs []uint32    `msgpack:"out"`
}

type wireGraph struct {
	Schema uint16    `msgpack:"schema"`
	Name   string    `msgpack:"name"`
	Body   wireBlock `msgpack:"body"`
}

// Encode serializes g with msgpack for the downstream optimizer.
func Encode(g *Graph) ([]byte, error) {
	wb, err := g.encodeBlock(g.top)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&wireGraph{Schema: wireSchema, Name: g.Name, Body: wb})
}

func (g *Graph) encodeValues(vals []*Value) ([]wireValue, error) {
	out := make([]wireValue, len(vals))
	for i, v := range vals {
		if v == nil {
			return nil, fmt.Errorf("encode graph %s: nil value", g.Name)
		}
		out[i] = wireValue{ID: uint32(v.id), Type: g.types.Format(v.typ), Name: v.name}
	}
	return out, nil
}

func refIDs(vals []*Value) []uint32 {
	out := make([]uint32, len(vals))
	for i, v := range vals {
		out[i] = uint32(v.id)
	}
	return out
}

func (g *Graph) encodeBlock(b *Block) (wireBlock, error) {
	ins, err := g.encodeValues(b.Inputs)
	if err != nil {
		return wireBlock{}, err
	}
	wb := wireBlock{Inputs: ins, Outputs: refIDs(b.Outputs), Nodes: make([]wireNode, 0, len(b.Nodes))}
	for _, n := range b.Nodes {
		outs, err := g.encodeValues(n.Outputs)
		if err != nil {
			return wireBlock{}, err
		}
		wn := wireNode{
			Kind:    n.Kind.String(),
			Span:    [3]uint32{uint32(n.Span.File), n.Span.Start, n.Span.End},
			Inputs:  refIDs(n.Inputs),
			Outputs: outs,
			Attrs:   n.Attrs,
		}
		if n.Block != nil {
			inner, err := g.encodeBlock(n.Block)
			if err != nil {
				return wireBlock{}, err
			}
			wn.Block = &inner
		}
		wb.Nodes = append(wb.Nodes, wn)
	}
	return wb, nil
}

// Decode rebuilds a graph encoded by Encode, typing values through in.
func Decode(data []byte, in *types.Interner) (*Graph, error) {
	var wg wireGraph
	if err := msgpack.Unmarshal(data, &wg); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if wg.Schema != wireSchema {
		return nil, fmt.Errorf("decode graph: schema %d, want %d", wg.Schema, wireSchema)
	}
	d := decoder{g: NewGraph(wg.Name, in), byID: make(map[uint32]*Value)}
	if err := d.block(d.g.top, &wg.Body); err != nil {
		return nil, err
	}
	return d.g, nil
}

type decoder struct {
	g     *Graph
	byID  map[uint32]*Value
	maxID uint32
}

func (d *decoder) typeOf(wv wireValue) (types.TypeID, error) {
	t, err := d.g.types.Parse(wv.Type)
	if err != nil {
		return types.NoTypeID, fmt.Errorf("decode graph: value %%%d: %w", wv.ID, err)
	}
	return t, nil
}

func (d *decoder) bind(v *Value, wv wireValue) {
	v.id = ValueID(wv.ID)
	v.name = wv.Name
	d.byID[wv.ID] = v
	if wv.ID > d.maxID {
		d.maxID = wv.ID
		d.g.nextID = ValueID(wv.ID) + 1
	}
}

func (d *decoder) refs(ids []uint32) ([]*Value, error) {
	out := make([]*Value, len(ids))
	for i, id := range ids {
		v, ok := d.byID[id]
		if !ok {
			return nil, fmt.Errorf("decode graph: use of undefined value %%%d", id)
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) block(b *Block, wb *wireBlock) error {
	for _, wv := range wb.Inputs {
		t, err := d.typeOf(wv)
		if err != nil {
			return err
		}
		d.bind(b.addInput(d.g, wv.Name, t), wv)
	}
	prev := d.g.SetInsertBlock(b)
	defer d.g.SetInsertBlock(prev)
	for i := range wb.Nodes {
		wn := &wb.Nodes[i]
		kind, err := symbols.FromQualString(wn.Kind)
		if err != nil {
			return fmt.Errorf("decode graph: %w", err)
		}
		inputs, err := d.refs(wn.Inputs)
		if err != nil {
			return err
		}
		outTypes := make([]types.TypeID, len(wn.Outputs))
		for j, wv := range wn.Outputs {
			if outTypes[j], err = d.typeOf(wv); err != nil {
				return err
			}
		}
		span := source.Span{File: source.FileID(wn.Span[0]), Start: wn.Span[1], End: wn.Span[2]}
		var n *Node
		if wn.Block != nil {
			n = d.g.InsertWithBlock(kind, span, inputs, outTypes)
		} else {
			n = d.g.Insert(kind, span, inputs, outTypes)
		}
		for k, v := range wn.Attrs {
			n.SetAttr(k, v)
		}
		for j, wv := range wn.Outputs {
			d.bind(n.Outputs[j], wv)
		}
		if wn.Block != nil {
			if err := d.block(n.Block, wn.Block); err != nil {
				return err
			}
		}
	}
	outs, err := d.refs(wb.Outputs)
	if err != nil {
		return err
	}
	b.Outputs = outs
	return nil
}

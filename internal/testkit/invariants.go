package testkit

import (
	"fmt"

	"jitscript/internal/ir"
)

// CheckGraph runs structural invariants on a compiled graph:
// 1) every value has a unique id and a known type
// 2) node outputs point back at their node and offset
// 3) every input and block output is defined before use, in the block or an
// enclosing one
// 4) nodes are owned by the block that lists them
func CheckGraph(g *ir.Graph) error {
	if g == nil {
		return fmt.Errorf("nil graph")
	}
	c := checker{g: g, ids: make(map[ir.ValueID]*ir.Value)}
	scope := make(map[*ir.Value]bool)
	return c.block(g.Body(), scope)
}

type checker struct {
	g   *ir.Graph
	ids map[ir.ValueID]*ir.Value
}

func (c *checker) define(v *ir.Value, scope map[*ir.Value]bool) error {
	if prev, dup := c.ids[v.ID()]; dup && prev != v {
		return fmt.Errorf("%s: value id %%%d defined twice", c.g.Name, v.ID())
	}
	if _, ok := c.g.Types().Lookup(v.Type()); !ok {
		return fmt.Errorf("%s: value %%%d has unknown type %d", c.g.Name, v.ID(), v.Type())
	}
	c.ids[v.ID()] = v
	scope[v] = true
	return nil
}

func (c *checker) block(b *ir.Block, outer map[*ir.Value]bool) error {
	// nested blocks see the enclosing scope but do not leak into it
	scope := make(map[*ir.Value]bool, len(outer)+len(b.Inputs))
	for v := range outer {
		scope[v] = true
	}
	for _, v := range b.Inputs {
		if err := c.define(v, scope); err != nil {
			return err
		}
	}
	for i, n := range b.Nodes {
		if n.Owner() != b {
			return fmt.Errorf("%s: node #%d (%s) has a foreign owner", c.g.Name, i, n.Kind)
		}
		for _, in := range n.Inputs {
			if !scope[in] {
				return fmt.Errorf("%s: %s uses %%%d before definition", c.g.Name, n.Kind, in.ID())
			}
		}
		if n.Block != nil {
			if n.Block.Owner() != n {
				return fmt.Errorf("%s: block of %s points at another node", c.g.Name, n.Kind)
			}
			if err := c.block(n.Block, scope); err != nil {
				return err
			}
		}
		for off, out := range n.Outputs {
			if out.Node() != n || out.Offset() != off {
				return fmt.Errorf("%s: output %d of %s is not linked back", c.g.Name, off, n.Kind)
			}
			if err := c.define(out, scope); err != nil {
				return err
			}
		}
	}
	for _, out := range b.Outputs {
		if !scope[out] {
			return fmt.Errorf("%s: block returns undefined %%%d", c.g.Name, out.ID())
		}
	}
	return nil
}

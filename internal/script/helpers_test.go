package script

import (
	"context"
	"testing"

	"jitscript/internal/ir"
	"jitscript/internal/ops"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

var primCallMethod = symbols.PrimCallMethod

// fakeContext is a minimal emitter: method calls become prim::CallMethod.
type fakeContext struct {
	g       *ir.Graph
	reg     *ops.Registry
	modules map[types.TypeID]*Module
	calls   int
}

func newFakeContext(t *testing.T) *fakeContext {
	t.Helper()
	in := types.NewInterner()
	reg, err := ops.NewDefaultRegistry(in)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if err := reg.RegisterSignature("prim::Int.base(str a, int base) -> int"); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.Freeze()
	return &fakeContext{
		g:       ir.NewGraph("test", in),
		reg:     reg,
		modules: make(map[types.TypeID]*Module),
	}
}

func (c *fakeContext) Graph() *ir.Graph              { return c.g }
func (c *fakeContext) Registry() *ops.Registry       { return c.reg }
func (c *fakeContext) TraceContext() context.Context { return context.Background() }

func (c *fakeContext) ModuleOf(class types.TypeID) (*Module, bool) {
	m, ok := c.modules[class]
	return m, ok
}

func (c *fakeContext) EmitCall(loc source.Span, callee *Method, inputs, attributes []NamedValue) (*ir.Value, error) {
	c.calls++
	vals, err := ToValues(c, inputs)
	if err != nil {
		return nil, err
	}
	n := c.g.Insert(primCallMethod, loc, vals, callee.Schema.Returns)
	n.SetAttr("name", callee.Name)
	return n.Output(), nil
}

func (c *fakeContext) types() *types.Interner { return c.g.Types() }

func (c *fakeContext) input(t *testing.T, name, typ string) *ir.Value {
	t.Helper()
	id, err := c.types().Parse(typ)
	if err != nil {
		t.Fatalf("parse %q: %v", typ, err)
	}
	return c.g.AddInput(name, id)
}

// declareNet registers class Net{weight: Tensor} with method forward(Tensor x).
func (c *fakeContext) declareNet(t *testing.T) (*Module, types.TypeID) {
	t.Helper()
	in := c.types()
	b := in.Builtins()
	cls, err := in.RegisterClass("Net", []types.Field{{Name: "weight", Type: b.Tensor}})
	if err != nil {
		t.Fatalf("RegisterClass: %v", err)
	}
	in.AddMethod(cls, "forward")
	schema, err := ops.ParseSchema(in, "Net::forward(Tensor x) -> Tensor")
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	m := NewModule("Net", cls)
	if err := m.Define(&Method{Name: "forward", Schema: schema}); err != nil {
		t.Fatalf("Define: %v", err)
	}
	m.Freeze()
	c.modules[cls] = m
	return m, cls
}

func mustErrorKind(t *testing.T, err error, want ErrorKind) *Error {
	t.Helper()
	se, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error of kind %s, got %T: %v", want, err, err)
	}
	if se.Kind != want {
		t.Fatalf("error kind = %s, want %s (%v)", se.Kind, want, se)
	}
	return se
}

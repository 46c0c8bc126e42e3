package compiler

import (
	"context"

	"jitscript/internal/ast"
	"jitscript/internal/ir"
	"jitscript/internal/ops"
	"jitscript/internal/script"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// functionContext compiles one method body. It is owned by a single goroutine.
type functionContext struct {
	ctx      context.Context
	prog     *Program
	bundle   *ast.Bundle
	method   *script.Method
	g        *ir.Graph
	builtins map[string]script.Value
	locals   map[string]script.Value
}

var _ script.Context = (*functionContext)(nil)

func (fc *functionContext) Graph() *ir.Graph                { return fc.g }
func (fc *functionContext) Registry() *ops.Registry         { return fc.prog.Registry }
func (fc *functionContext) TraceContext() context.Context   { return fc.ctx }
func (fc *functionContext) types() *types.Interner          { return fc.g.Types() }

func (fc *functionContext) ModuleOf(class types.TypeID) (*script.Module, bool) {
	m, ok := fc.prog.byClass[class]
	return m, ok
}

// EmitCall lowers a method call to prim::CallMethod[name=...](self, args...),
// binding arguments against the callee's declared signature.
func (fc *functionContext) EmitCall(loc source.Span, callee *script.Method, inputs, attributes []script.NamedValue) (*ir.Value, error) {
	vals, err := script.ToValues(fc, inputs)
	if err != nil {
		return nil, err
	}
	kw, err := script.ToValues(fc, attributes)
	if err != nil {
		return nil, err
	}
	self, rest := vals[0], vals[1:]
	bind, err := ops.BindSchema(fc.types(), callee.Schema, actuals(inputs[1:], rest), actuals(attributes, kw))
	if err != nil {
		return nil, err
	}
	args := make([]*ir.Value, 0, len(bind.Slots)+1)
	args = append(args, self)
	for i, slot := range bind.Slots {
		switch slot.Source {
		case ops.FromPositional:
			args = append(args, rest[slot.Index])
		case ops.FromKeyword:
			args = append(args, kw[slot.Index])
		case ops.FromDefault:
			a := callee.Schema.Args[i]
			args = append(args, fc.g.InsertConstant(loc, a.Type, a.Default))
		}
	}
	n := fc.g.Insert(symbols.PrimCallMethod, loc, args, callee.Schema.Returns)
	n.SetAttr("name", callee.Name)
	return n.Output(), nil
}

func actuals(args []script.NamedValue, vals []*ir.Value) []ops.Actual {
	out := make([]ops.Actual, len(vals))
	for i, v := range vals {
		out[i] = ops.Actual{Name: args[i].Name, Type: v.Type()}
	}
	return out
}

func (fc *functionContext) lookup(name string) (script.Value, bool) {
	if v, ok := fc.locals[name]; ok {
		return v, true
	}
	v, ok := fc.builtins[name]
	return v, ok
}

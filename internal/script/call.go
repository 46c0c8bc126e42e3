package script

import (
	"errors"
	"fmt"

	"jitscript/internal/ir"
	"jitscript/internal/ops"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/trace"
	"jitscript/internal/types"
)

func (f *BuiltinFunction) call(loc source.Span, c Context, inputs, attributes []NamedValue, nBinders int) (Value, error) {
	if f.Self != nil {
		inputs = append([]NamedValue{*f.Self}, inputs...)
	}
	pos, err := ToValues(c, inputs)
	if err != nil {
		return nil, err
	}
	kw, err := ToValues(c, attributes)
	if err != nil {
		return nil, err
	}
	reg := c.Registry()
	bind, err := reg.Match(f.Symbol, actuals(inputs, pos), actuals(attributes, kw))
	if err != nil {
		return nil, overloadError(loc, f, err)
	}
	if ctx := c.TraceContext(); trace.Active(ctx, trace.ScopeNode) {
		trace.Point(ctx, trace.ScopeNode, "sugar.overload", bind.Schema.Signature(reg.Types()))
	}

	g := c.Graph()
	args := make([]*ir.Value, len(bind.Slots))
	for i, slot := range bind.Slots {
		switch slot.Source {
		case ops.FromPositional:
			args[i] = pos[slot.Index]
		case ops.FromKeyword:
			args[i] = kw[slot.Index]
		case ops.FromDefault:
			args[i] = insertDefault(g, loc, bind.Schema.Args[i])
		}
	}
	n := g.Insert(reg.Canonical(f.Symbol), loc, args, bind.Schema.ResultTypes(nBinders))
	if bind.Schema.Overload != "" {
		n.SetAttr("overload", bind.Schema.Overload)
	}
	if f.Version != "" {
		n.SetAttr("version", f.Version)
	}
	return wrapOutputs(g, loc, n.Outputs), nil
}

func (v *CastValue) call(loc source.Span, c Context, inputs, attributes []NamedValue, nBinders int) (Value, error) {
	if len(inputs) == 1 && len(attributes) == 0 {
		val, err := inputs[0].Value(c)
		if err != nil {
			return nil, err
		}
		if c.Graph().Types().IsSubtype(val.Type(), v.Target) {
			return NewSimpleValue(val), nil
		}
		// already evaluated; don't run a deferred argument twice
		inputs = []NamedValue{Positional(inputs[0].Loc, val)}
	}
	return v.BuiltinFunction.call(loc, c, inputs, attributes, nBinders)
}

func (v *MethodValue) call(loc source.Span, c Context, inputs, attributes []NamedValue) (Value, error) {
	m, err := v.Method()
	if err != nil {
		return nil, &Error{Kind: InternalControlMarkerMisuse, Span: loc, What: v.Kind(), Msg: "internal error: " + err.Error(), Err: err}
	}
	args := make([]NamedValue, 0, len(inputs)+1)
	args = append(args, Positional(loc, v.self))
	args = append(args, inputs...)
	out, err := c.EmitCall(loc, m, args, attributes)
	if err != nil {
		var nm *ops.NoMatchError
		if errors.As(err, &nm) {
			return nil, &Error{
				Kind:       NoMatchingOverload,
				Span:       loc,
				What:       v.Kind(),
				Symbol:     nm.Symbol,
				Candidates: nm.Candidates,
				Msg:        fmt.Sprintf("arguments for call to %s are not valid: %s", m.QualName(), firstReason(nm)),
				Err:        err,
			}
		}
		return nil, err
	}
	return NewSimpleValue(out), nil
}

func (v *PrintValue) call(loc source.Span, c Context, inputs, attributes []NamedValue) (Value, error) {
	if len(attributes) > 0 {
		return nil, &Error{
			Kind:   NoMatchingOverload,
			Span:   attributes[0].Loc,
			What:   v.Kind(),
			Symbol: symbols.PrimPrint,
			Msg:    fmt.Sprintf("print does not accept keyword arguments (got %q)", attributes[0].Name),
		}
	}
	vals, err := ToValues(c, inputs)
	if err != nil {
		return nil, err
	}
	g := c.Graph()
	g.Insert(symbols.PrimPrint, loc, vals, nil)
	return NewSimpleValue(g.InsertNone(loc, types.NoTypeID)), nil
}

func actuals(args []NamedValue, vals []*ir.Value) []ops.Actual {
	out := make([]ops.Actual, len(args))
	for i, a := range args {
		out[i] = ops.Actual{Name: a.Name, Type: vals[i].Type()}
	}
	return out
}

func insertDefault(g *ir.Graph, loc source.Span, arg ops.Argument) *ir.Value {
	if arg.Default == "None" {
		return g.InsertNone(loc, arg.Type)
	}
	return g.InsertConstant(loc, arg.Type, arg.Default)
}

func wrapOutputs(g *ir.Graph, loc source.Span, outs []*ir.Value) Value {
	switch len(outs) {
	case 0:
		return NewSimpleValue(g.InsertNone(loc, types.NoTypeID))
	case 1:
		return NewSimpleValue(outs[0])
	}
	elems := make([]Value, len(outs))
	for i, o := range outs {
		elems[i] = NewSimpleValue(o)
	}
	return &TupleValue{Elems: elems}
}

func overloadError(loc source.Span, f *BuiltinFunction, err error) error {
	var nm *ops.NoMatchError
	if !errors.As(err, &nm) {
		return err
	}
	msg := fmt.Sprintf("arguments for call to %s are not valid", f.Symbol)
	switch {
	case len(nm.Candidates) == 0:
		msg = fmt.Sprintf("unknown builtin op: %s", f.Symbol)
	case len(nm.Candidates) == 1:
		msg += ": " + firstReason(nm)
	}
	return &Error{
		Kind:       NoMatchingOverload,
		Span:       loc,
		What:       f.Kind(),
		Symbol:     f.Symbol,
		Candidates: nm.Candidates,
		Msg:        msg,
		Err:        err,
	}
}

func firstReason(nm *ops.NoMatchError) string {
	if len(nm.Reasons) == 0 {
		return "no candidates"
	}
	return nm.Reasons[0]
}

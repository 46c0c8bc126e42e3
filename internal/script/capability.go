package script

import (
	"fmt"

	"jitscript/internal/ir"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/trace"
	"jitscript/internal/types"
)

// NoSizeHint is passed to AsTuple when the consumer does not know the arity.
const NoSizeHint = -1

func traceCap(c Context, capability string, v Value) *trace.Span {
	_, span := trace.Start(c.TraceContext(), trace.ScopeNode, capability)
	return span.WithExtra("kind", v.Kind())
}

// AsValue resolves v to a first-class IR value.
func AsValue(loc source.Span, c Context, v Value) (*ir.Value, error) {
	span := traceCap(c, "sugar.as_value", v)
	defer span.End("")

	switch v := v.(type) {
	case *SimpleValue:
		return v.value, nil
	case *TupleValue:
		return packTuple(loc, c, v)
	case *BuiltinFunction, *CastValue, *BuiltinModule, *MethodValue, *PrintValue:
		return nil, errNotAValue(loc, v)
	case ForkValue, AnnotateValue, GetAttrValue, IsInstanceValue:
		return nil, errMarker(loc, v, "value")
	}
	return nil, fmt.Errorf("script: unhandled sugared value %T", v)
}

// Attr resolves v.field.
func Attr(loc source.Span, c Context, v Value, field string) (Value, error) {
	span := traceCap(c, "sugar.attr", v).WithExtra("field", field)
	defer span.End("")

	switch v := v.(type) {
	case *SimpleValue:
		return simpleAttr(loc, c, v, field)
	case *BuiltinModule:
		// name concatenation only: unknown ops fail when called
		return &BuiltinFunction{Symbol: symbols.Join(v.Name, field), Version: v.Version}, nil
	case *BuiltinFunction, *CastValue, *MethodValue, *PrintValue, *TupleValue:
		return nil, errNoAttr(loc, v, field)
	case ForkValue, AnnotateValue, GetAttrValue, IsInstanceValue:
		return nil, errMarker(loc, v, "attribute")
	}
	return nil, fmt.Errorf("script: unhandled sugared value %T", v)
}

// IsNone classifies v against the None sentinel. Only plain values can be None.
func IsNone(c Context, v Value) NoneStatus {
	sv, ok := v.(*SimpleValue)
	if !ok {
		return Never
	}
	in := c.Graph().Types()
	switch {
	case sv.value.MustBeNone(in):
		return Always
	case in.IsOptional(sv.value.Type()):
		return Maybe
	}
	return Never
}

// AsTuple expands v into its elements. sizeHint is the arity the consumer
// expects, or NoSizeHint; producers with a fixed arity ignore it.
func AsTuple(loc source.Span, c Context, v Value, sizeHint int) ([]Value, error) {
	span := traceCap(c, "sugar.as_tuple", v)
	defer span.End("")

	switch v := v.(type) {
	case *SimpleValue:
		return unpackTuple(loc, c, v)
	case *TupleValue:
		return v.Elems, nil
	case *BuiltinFunction, *CastValue, *BuiltinModule, *MethodValue, *PrintValue:
		return nil, errNotATuple(loc, v)
	case ForkValue, AnnotateValue, GetAttrValue, IsInstanceValue:
		return nil, errMarker(loc, v, "tuple")
	}
	return nil, fmt.Errorf("script: unhandled sugared value %T", v)
}

// Call resolves callee(inputs..., attributes...). nBinders is the number of
// names the result is bound to; only variadic-result operators consult it.
func Call(loc source.Span, c Context, callee Value, inputs, attributes []NamedValue, nBinders int) (Value, error) {
	span := traceCap(c, "sugar.call", callee)
	defer span.End("")

	switch v := callee.(type) {
	case *BuiltinFunction:
		return v.call(loc, c, inputs, attributes, nBinders)
	case *CastValue:
		return v.call(loc, c, inputs, attributes, nBinders)
	case *MethodValue:
		return v.call(loc, c, inputs, attributes)
	case *PrintValue:
		return v.call(loc, c, inputs, attributes)
	case *SimpleValue, *BuiltinModule, *TupleValue:
		return nil, errNotCallable(loc, v)
	case ForkValue, AnnotateValue, GetAttrValue, IsInstanceValue:
		return nil, errMarker(loc, v, "call")
	}
	return nil, fmt.Errorf("script: unhandled sugared value %T", callee)
}

func simpleAttr(loc source.Span, c Context, v *SimpleValue, field string) (Value, error) {
	in := c.Graph().Types()
	typ := v.value.Type()
	switch in.KindOf(typ) {
	case types.KindTensor:
		sym := symbols.Join("aten", field)
		if c.Registry().Has(sym) {
			self := Positional(loc, v.value)
			return NewBuiltinFunction(sym, &self), nil
		}
	case types.KindClass:
		if ft, ok := in.FieldType(typ, field); ok {
			n := c.Graph().Insert(symbols.PrimGetAttr, loc, []*ir.Value{v.value}, []types.TypeID{ft})
			n.SetAttr("name", field)
			return NewSimpleValue(n.Output()), nil
		}
		if in.HasMethod(typ, field) {
			if m, ok := c.ModuleOf(typ); ok {
				if mv, ok := NewMethodValue(m, v.value, field); ok {
					return mv, nil
				}
			}
		}
	}
	return nil, &Error{
		Kind: AttributeNotSupported,
		Span: loc,
		What: v.Kind(),
		Msg:  fmt.Sprintf("%s object has no attribute or method %q", in.Format(typ), field),
	}
}

func unpackTuple(loc source.Span, c Context, v *SimpleValue) ([]Value, error) {
	in := c.Graph().Types()
	elems, ok := in.TupleElems(v.value.Type())
	if !ok {
		return nil, &Error{
			Kind: NotATuple,
			Span: loc,
			What: v.Kind(),
			Msg:  fmt.Sprintf("%s cannot be used as a tuple: it has type %s", v.Kind(), in.Format(v.value.Type())),
		}
	}
	// a value produced by TupleConstruct unpacks to its own inputs
	if n := v.value.Node(); n != nil && n.Kind == symbols.PrimTupleConstruct {
		out := make([]Value, len(n.Inputs))
		for i, e := range n.Inputs {
			out[i] = NewSimpleValue(e)
		}
		return out, nil
	}
	n := c.Graph().Insert(symbols.PrimTupleUnpack, loc, []*ir.Value{v.value}, elems)
	out := make([]Value, len(n.Outputs))
	for i, o := range n.Outputs {
		out[i] = NewSimpleValue(o)
	}
	return out, nil
}

func packTuple(loc source.Span, c Context, v *TupleValue) (*ir.Value, error) {
	vals := make([]*ir.Value, len(v.Elems))
	elemTypes := make([]types.TypeID, len(v.Elems))
	for i, e := range v.Elems {
		val, err := AsValue(loc, c, e)
		if err != nil {
			return nil, err
		}
		vals[i], elemTypes[i] = val, val.Type()
	}
	tt := c.Graph().Types().Tuple(elemTypes)
	return c.Graph().Insert(symbols.PrimTupleConstruct, loc, vals, []types.TypeID{tt}).Output(), nil
}

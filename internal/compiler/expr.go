package compiler

import (
	"strconv"

	"jitscript/internal/ast"
	"jitscript/internal/diag"
	"jitscript/internal/ir"
	"jitscript/internal/script"
)

// emitSugared resolves an expression without forcing it to a value.
// nBinders is forwarded to calls.
func (fc *functionContext) emitSugared(id ast.ExprID, nBinders int) (script.Value, error) {
	x := fc.bundle.Exprs.Get(id)
	switch x.Kind {
	case ast.ExprName:
		n, _ := fc.bundle.Exprs.Name(id)
		v, ok := fc.lookup(n.Name)
		if !ok {
			return nil, errorf(diag.EmitUndefinedName, x.Span, "undefined value %s", n.Name)
		}
		return v, nil

	case ast.ExprAttr:
		a, _ := fc.bundle.Exprs.Attr(id)
		base, err := fc.emitSugared(a.Target, 1)
		if err != nil {
			return nil, err
		}
		return script.Attr(x.Span, fc, base, a.Field)

	case ast.ExprConst:
		v, err := fc.emitConst(id)
		if err != nil {
			return nil, err
		}
		return script.NewSimpleValue(v), nil

	case ast.ExprTuple:
		t, _ := fc.bundle.Exprs.Tuple(id)
		elems := make([]script.Value, 0, len(t.Elems))
		for _, e := range t.Elems {
			v, err := fc.emitExpr(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, script.NewSimpleValue(v))
		}
		return &script.TupleValue{Elems: elems}, nil

	case ast.ExprCall:
		return fc.emitCall(id, nBinders)
	}
	return nil, errorf(diag.UnknownCode, x.Span, "unsupported expression %s", x.Kind)
}

// emitExpr resolves an expression used as a value.
func (fc *functionContext) emitExpr(id ast.ExprID) (*ir.Value, error) {
	sv, err := fc.emitSugared(id, 1)
	if err != nil {
		return nil, err
	}
	return script.AsValue(fc.bundle.Exprs.Get(id).Span, fc, sv)
}

func (fc *functionContext) emitCall(id ast.ExprID, nBinders int) (script.Value, error) {
	x := fc.bundle.Exprs.Get(id)
	call, _ := fc.bundle.Exprs.Call(id)
	callee, err := fc.emitSugared(call.Fn, 1)
	if err != nil {
		return nil, err
	}
	if script.IsMarker(callee) {
		return fc.emitSpecial(x, callee, call)
	}
	inputs, err := fc.emitArgs(call.Args)
	if err != nil {
		return nil, err
	}
	attributes, err := fc.emitKwargs(call.Kwargs)
	if err != nil {
		return nil, err
	}
	return script.Call(x.Span, fc, callee, inputs, attributes, nBinders)
}

func (fc *functionContext) emitArgs(args []ast.ExprID) ([]script.NamedValue, error) {
	out := make([]script.NamedValue, 0, len(args))
	for _, a := range args {
		v, err := fc.emitExpr(a)
		if err != nil {
			return nil, err
		}
		out = append(out, script.Positional(fc.bundle.Exprs.Get(a).Span, v))
	}
	return out, nil
}

func (fc *functionContext) emitKwargs(kwargs []ast.KeywordArg) ([]script.NamedValue, error) {
	out := make([]script.NamedValue, 0, len(kwargs))
	for _, kw := range kwargs {
		v, err := fc.emitExpr(kw.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, script.Keyword(kw.Span, kw.Name, v))
	}
	return out, nil
}

func (fc *functionContext) emitConst(id ast.ExprID) (*ir.Value, error) {
	x := fc.bundle.Exprs.Get(id)
	c, _ := fc.bundle.Exprs.Const(id)
	b := fc.types().Builtins()
	switch c.Kind {
	case ast.ConstNone:
		return fc.g.InsertNone(x.Span, b.None), nil
	case ast.ConstBool:
		return fc.g.InsertConstant(x.Span, b.Bool, c.Text), nil
	case ast.ConstInt:
		if _, err := strconv.ParseInt(c.Text, 0, 64); err != nil {
			return nil, errorf(diag.InputBadBundle, x.Span, "invalid int literal %q", c.Text)
		}
		return fc.g.InsertConstant(x.Span, b.Int, c.Text), nil
	case ast.ConstFloat:
		if _, err := strconv.ParseFloat(c.Text, 64); err != nil {
			return nil, errorf(diag.InputBadBundle, x.Span, "invalid float literal %q", c.Text)
		}
		return fc.g.InsertConstant(x.Span, b.Float, c.Text), nil
	}
	return fc.g.InsertConstant(x.Span, b.Str, strconv.Quote(c.Text)), nil
}

package compiler

import (
	"jitscript/internal/ast"
	"jitscript/internal/diag"
	"jitscript/internal/ir"
	"jitscript/internal/script"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// emitSpecial handles calls whose callee is a control marker. Their arguments
// are not evaluated up front: each form decides what to evaluate and where.
func (fc *functionContext) emitSpecial(x *ast.Expr, marker script.Value, call *ast.ExprCallData) (script.Value, error) {
	switch marker.(type) {
	case script.ForkValue:
		return fc.emitFork(x, call)
	case script.AnnotateValue:
		return fc.emitAnnotate(x, call)
	case script.GetAttrValue:
		return fc.emitGetAttr(x, call)
	case script.IsInstanceValue:
		return fc.emitIsInstance(x, call)
	}
	return nil, errorf(diag.SugarInternalMarkerMisuse, x.Span, "internal error: unknown control marker %s", marker.Kind())
}

// fork(fn, args...) -> Future[T]. The call runs inside the prim::fork block;
// its arguments are evaluated outside and captured as block inputs.
func (fc *functionContext) emitFork(x *ast.Expr, call *ast.ExprCallData) (script.Value, error) {
	if len(call.Args) == 0 {
		return nil, errorf(diag.EmitForkTarget, x.Span, "fork expects a callable as its first argument")
	}
	inputs, err := fc.emitArgs(call.Args[1:])
	if err != nil {
		return nil, err
	}
	attributes, err := fc.emitKwargs(call.Kwargs)
	if err != nil {
		return nil, err
	}
	outer := make([]*ir.Value, 0, len(inputs)+len(attributes))
	for _, a := range append(append([]script.NamedValue(nil), inputs...), attributes...) {
		v, _ := a.Value(fc)
		outer = append(outer, v)
	}

	node := fc.g.InsertWithBlock(symbols.PrimFork, x.Span, outer, nil)
	prev := fc.g.SetInsertBlock(node.Block)
	defer fc.g.SetInsertBlock(prev)

	captured := func(args []script.NamedValue) []script.NamedValue {
		out := make([]script.NamedValue, len(args))
		for i, a := range args {
			v, _ := a.Value(fc)
			in := node.Block.AddInput(fc.g, v.DebugName(), v.Type())
			if a.HasName() {
				out[i] = script.Keyword(a.Loc, a.Name, in)
			} else {
				out[i] = script.Positional(a.Loc, in)
			}
		}
		return out
	}
	inner, innerKw := captured(inputs), captured(attributes)

	callee, err := fc.emitSugared(call.Args[0], 1)
	if err != nil {
		return nil, err
	}
	if script.IsMarker(callee) {
		return nil, errorf(diag.EmitForkTarget, x.Span, "cannot fork %s", callee.Kind())
	}
	res, err := script.Call(x.Span, fc, callee, inner, innerKw, 1)
	if err != nil {
		return nil, err
	}
	out, err := script.AsValue(x.Span, fc, res)
	if err != nil {
		return nil, err
	}
	node.Block.Outputs = []*ir.Value{out}
	fut := fc.g.AddOutput(node, fc.types().Future(out.Type()))
	return script.NewSimpleValue(fut), nil
}

// annotate(T, expr): a None literal takes the optional type T; anything else
// must already be a T.
func (fc *functionContext) emitAnnotate(x *ast.Expr, call *ast.ExprCallData) (script.Value, error) {
	if len(call.Args) != 2 || len(call.Kwargs) != 0 {
		return nil, errorf(diag.EmitAnnotationMismatch, x.Span, "annotate expects a type and a value")
	}
	target, err := fc.typeArg(call.Args[0])
	if err != nil {
		return nil, err
	}
	in := fc.types()
	if c, ok := fc.bundle.Exprs.Const(call.Args[1]); ok && c.Kind == ast.ConstNone {
		if !in.IsOptional(target) && in.KindOf(target) != types.KindNone {
			return nil, errorf(diag.EmitAnnotationMismatch, x.Span, "None cannot be annotated as %s", in.Format(target))
		}
		return script.NewSimpleValue(fc.g.InsertNone(x.Span, target)), nil
	}
	v, err := fc.emitExpr(call.Args[1])
	if err != nil {
		return nil, err
	}
	if !in.IsSubtype(v.Type(), target) {
		return nil, errorf(diag.EmitAnnotationMismatch, x.Span,
			"expected a value of type %s, found %s", in.Format(target), in.Format(v.Type()))
	}
	return script.NewSimpleValue(v), nil
}

// getattr(obj, "name") with a literal name.
func (fc *functionContext) emitGetAttr(x *ast.Expr, call *ast.ExprCallData) (script.Value, error) {
	if len(call.Args) != 2 || len(call.Kwargs) != 0 {
		return nil, errorf(diag.EmitGetAttrName, x.Span, "getattr expects an object and a name")
	}
	name, ok := fc.bundle.Exprs.Const(call.Args[1])
	if !ok || name.Kind != ast.ConstStr {
		return nil, errorf(diag.EmitGetAttrName, fc.bundle.Exprs.Get(call.Args[1]).Span, "getattr's second argument must be a string literal")
	}
	obj, err := fc.emitSugared(call.Args[0], 1)
	if err != nil {
		return nil, err
	}
	return script.Attr(x.Span, fc, obj, name.Text)
}

// isinstance(x, T) is decided statically and folds to a bool constant.
func (fc *functionContext) emitIsInstance(x *ast.Expr, call *ast.ExprCallData) (script.Value, error) {
	if len(call.Args) != 2 || len(call.Kwargs) != 0 {
		return nil, errorf(diag.EmitBadTypeExpr, x.Span, "isinstance expects a value and a type")
	}
	v, err := fc.emitExpr(call.Args[0])
	if err != nil {
		return nil, err
	}
	target, err := fc.typeArg(call.Args[1])
	if err != nil {
		return nil, err
	}
	lit := "False"
	if fc.types().IsSubtype(v.Type(), target) {
		lit = "True"
	}
	return script.NewSimpleValue(fc.g.InsertConstant(x.Span, fc.types().Builtins().Bool, lit)), nil
}

func (fc *functionContext) typeArg(id ast.ExprID) (types.TypeID, error) {
	sp := fc.bundle.Exprs.Get(id).Span
	text, ok := fc.bundle.Exprs.TypeExpr(id)
	if !ok {
		return types.NoTypeID, errorf(diag.EmitBadTypeExpr, sp, "expected a type")
	}
	t, err := fc.types().Parse(text)
	if err != nil {
		return types.NoTypeID, errorf(diag.EmitBadTypeExpr, sp, "%v", err)
	}
	return t, nil
}

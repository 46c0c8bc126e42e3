package compiler

import (
	"jitscript/internal/ast"
	"jitscript/internal/diag"
	"jitscript/internal/ir"
	"jitscript/internal/script"
	"jitscript/internal/source"
	"jitscript/internal/types"
)

// emitBody lowers statements in order. Statements after a return are dead and
// are not emitted.
func (fc *functionContext) emitBody(decl *ast.MethodDecl, ret types.TypeID) error {
	for _, id := range decl.Body {
		st := fc.bundle.Stmts.Get(id)
		var err error
		switch st.Kind {
		case ast.StmtAssign:
			err = fc.emitAssign(id, st.Span)
		case ast.StmtExpr:
			x, _ := fc.bundle.Stmts.Expr(id)
			// bare call statement: nothing binds the result
			_, err = fc.emitSugared(x.X, 0)
		case ast.StmtReturn:
			return fc.emitReturn(id, st.Span, ret)
		}
		if err != nil {
			return err
		}
	}
	in := fc.types()
	if in.KindOf(ret) == types.KindNone || in.IsOptional(ret) {
		fc.g.SetOutputs(fc.g.InsertNone(decl.Span, in.Builtins().None))
		return nil
	}
	return errorf(diag.EmitReturnMismatch, decl.Span, "%s must return a value of type %s", fc.method.QualName(), in.Format(ret))
}

func (fc *functionContext) emitAssign(id ast.StmtID, sp source.Span) error {
	a, _ := fc.bundle.Stmts.Assign(id)
	n := len(a.Targets)
	sv, err := fc.emitSugared(a.Value, n)
	if err != nil {
		return err
	}
	if n == 1 {
		v, err := script.AsValue(sp, fc, sv)
		if err != nil {
			return err
		}
		fc.bind(a.Targets[0], v)
		return nil
	}
	elems, err := script.AsTuple(sp, fc, sv, n)
	if err != nil {
		return err
	}
	if len(elems) != n {
		return errorf(diag.EmitArityMismatch, sp, "expected %d values to unpack, found %d", n, len(elems))
	}
	for i, e := range elems {
		v, err := script.AsValue(sp, fc, e)
		if err != nil {
			return err
		}
		fc.bind(a.Targets[i], v)
	}
	return nil
}

func (fc *functionContext) bind(name string, v *ir.Value) {
	if v.DebugName() == "" {
		v.SetDebugName(name)
	}
	fc.locals[name] = script.NewSimpleValue(v)
}

func (fc *functionContext) emitReturn(id ast.StmtID, sp source.Span, ret types.TypeID) error {
	r, _ := fc.bundle.Stmts.Return(id)
	in := fc.types()
	var v *ir.Value
	if r.Value.IsValid() {
		var err error
		if v, err = fc.emitExpr(r.Value); err != nil {
			return err
		}
	} else {
		v = fc.g.InsertNone(sp, in.Builtins().None)
	}
	if !in.IsSubtype(v.Type(), ret) {
		return errorf(diag.EmitReturnMismatch, sp, "%s returns %s, but %s was declared",
			fc.method.QualName(), in.Format(v.Type()), in.Format(ret))
	}
	fc.g.SetOutputs(v)
	return nil
}

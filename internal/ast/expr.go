package ast

import "jitscript/internal/source"

type ExprKind uint8

const (
	ExprName ExprKind = iota + 1
	ExprAttr
	ExprCall
	ExprConst
	ExprTuple
)

func (k ExprKind) String() string {
	switch k {
	case ExprName:
		return "name"
	case ExprAttr:
		return "attribute"
	case ExprCall:
		return "call"
	case ExprConst:
		return "constant"
	case ExprTuple:
		return "tuple"
	}
	return "invalid"
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprNameData struct {
	Name string
}

// ExprAttrData: Target.Field
type ExprAttrData struct {
	Target ExprID
	Field  string
}

type KeywordArg struct {
	Name  string
	Value ExprID
	Span  source.Span
}

type ExprCallData struct {
	Fn     ExprID
	Args   []ExprID
	Kwargs []KeywordArg
}

type ConstKind uint8

const (
	ConstNone ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstStr
)

// ExprConstData keeps the literal as written; Text of a string is unquoted.
type ExprConstData struct {
	Kind ConstKind
	Text string
}

type ExprTupleData struct {
	Elems []ExprID
}

// Exprs owns every expression of a bundle.
type Exprs struct {
	Arena  *Arena[Expr]
	Names  *Arena[ExprNameData]
	Attrs  *Arena[ExprAttrData]
	Calls  *Arena[ExprCallData]
	Consts *Arena[ExprConstData]
	Tuples *Arena[ExprTupleData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Exprs{
		Arena:  NewArena[Expr](capHint),
		Names:  NewArena[ExprNameData](capHint),
		Attrs:  NewArena[ExprAttrData](capHint / 2),
		Calls:  NewArena[ExprCallData](capHint / 2),
		Consts: NewArena[ExprConstData](capHint / 2),
		Tuples: NewArena[ExprTupleData](capHint / 8),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: payload}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) NewName(span source.Span, name string) ExprID {
	return e.new(ExprName, span, PayloadID(e.Names.Allocate(ExprNameData{Name: name})))
}

func (e *Exprs) NewAttr(span source.Span, target ExprID, field string) ExprID {
	return e.new(ExprAttr, span, PayloadID(e.Attrs.Allocate(ExprAttrData{Target: target, Field: field})))
}

func (e *Exprs) NewCall(span source.Span, fn ExprID, args []ExprID, kwargs []KeywordArg) ExprID {
	return e.new(ExprCall, span, PayloadID(e.Calls.Allocate(ExprCallData{Fn: fn, Args: args, Kwargs: kwargs})))
}

func (e *Exprs) NewConst(span source.Span, kind ConstKind, text string) ExprID {
	return e.new(ExprConst, span, PayloadID(e.Consts.Allocate(ExprConstData{Kind: kind, Text: text})))
}

func (e *Exprs) NewTuple(span source.Span, elems []ExprID) ExprID {
	return e.new(ExprTuple, span, PayloadID(e.Tuples.Allocate(ExprTupleData{Elems: elems})))
}

func (e *Exprs) Name(id ExprID) (*ExprNameData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprName {
		return nil, false
	}
	return e.Names.Get(uint32(x.Payload)), true
}

func (e *Exprs) Attr(id ExprID) (*ExprAttrData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprAttr {
		return nil, false
	}
	return e.Attrs.Get(uint32(x.Payload)), true
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(x.Payload)), true
}

func (e *Exprs) Const(id ExprID) (*ExprConstData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprConst {
		return nil, false
	}
	return e.Consts.Get(uint32(x.Payload)), true
}

func (e *Exprs) Tuple(id ExprID) (*ExprTupleData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprTuple {
		return nil, false
	}
	return e.Tuples.Get(uint32(x.Payload)), true
}

// TypeExpr returns the text of a type argument (annotate, isinstance): a bare
// name such as Tensor, int or a class, None, or a string literal holding a
// full type expression like "Optional[Tensor]".
func (e *Exprs) TypeExpr(id ExprID) (string, bool) {
	if n, ok := e.Name(id); ok {
		return n.Name, true
	}
	if c, ok := e.Const(id); ok && c.Kind == ConstStr {
		return c.Text, true
	}
	if c, ok := e.Const(id); ok && c.Kind == ConstNone {
		return "None", true
	}
	return "", false
}

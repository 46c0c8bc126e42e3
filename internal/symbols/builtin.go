package symbols

// Operators the compiler itself emits.
var (
	PrimConstant       = MustQual("prim::Constant")
	PrimNone           = MustQual("prim::None")
	PrimTupleConstruct = MustQual("prim::TupleConstruct")
	PrimTupleUnpack    = MustQual("prim::TupleUnpack")
	PrimGetAttr        = MustQual("prim::GetAttr")
	PrimCallMethod     = MustQual("prim::CallMethod")
	PrimPrint          = MustQual("prim::Print")
	PrimFork           = MustQual("prim::fork")
	PrimInt            = MustQual("prim::Int")
	PrimFloat          = MustQual("prim::Float")
	PrimBool           = MustQual("prim::Bool")
	PrimStr            = MustQual("prim::Str")
)

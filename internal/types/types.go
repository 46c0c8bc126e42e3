package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAny
	KindNone
	KindBool
	KindInt
	KindFloat
	KindStr
	KindTensor
	KindOptional
	KindTuple
	KindList
	KindFuture
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindAny:
		return "Any"
	case KindNone:
		return "None"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindTensor:
		return "Tensor"
	case KindOptional:
		return "Optional"
	case KindTuple:
		return "Tuple"
	case KindList:
		return "List"
	case KindFuture:
		return "Future"
	case KindClass:
		return "class"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor. Elem is used by Optional, List and Future;
// Payload indexes the tuple or class side table.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}

// MakeOptional describes Optional[elem].
func MakeOptional(elem TypeID) Type {
	return Type{Kind: KindOptional, Elem: elem}
}

// MakeList describes List[elem].
func MakeList(elem TypeID) Type {
	return Type{Kind: KindList, Elem: elem}
}

// MakeFuture describes the result handle of a forked task.
func MakeFuture(elem TypeID) Type {
	return Type{Kind: KindFuture, Elem: elem}
}

package diag

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Входные данные (bundle, конфиг, библиотеки операторов)
	InputInfo             Code = 1000
	InputBadBundle        Code = 1001
	InputBadLibrary       Code = 1002
	InputUnknownType      Code = 1003
	InputDuplicateClass   Code = 1004
	InputUnknownNamespace Code = 1005

	// Разрешение sugared-значений
	SugarInfo                 Code = 4000
	SugarNotAValue            Code = 4001
	SugarAttrNotSupported     Code = 4002
	SugarNotATuple            Code = 4003
	SugarNotCallable          Code = 4004
	SugarNoMatchingOverload   Code = 4005
	SugarInternalMarkerMisuse Code = 4006

	// Эмиттер
	EmitInfo               Code = 5000
	EmitUndefinedName      Code = 5001
	EmitArityMismatch      Code = 5002
	EmitAnnotationMismatch Code = 5003
	EmitGetAttrName        Code = 5004
	EmitBadTypeExpr        Code = 5005
	EmitReturnMismatch     Code = 5006
	EmitForkTarget         Code = 5007
	EmitDuplicateMethod    Code = 5008
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		InputInfo:                 "Input information",
		InputBadBundle:            "Malformed script bundle",
		InputBadLibrary:           "Malformed operator library",
		InputUnknownType:          "Unknown type name",
		InputDuplicateClass:       "Duplicate class declaration",
		InputUnknownNamespace:     "Namespace has no registered operators",
		SugarInfo:                 "Sugared value information",
		SugarNotAValue:            "Cannot be used as a value",
		SugarAttrNotSupported:     "Attribute lookup not supported",
		SugarNotATuple:            "Cannot be used as a tuple",
		SugarNotCallable:          "Cannot be called",
		SugarNoMatchingOverload:   "No matching operator overload",
		SugarInternalMarkerMisuse: "Internal compiler error: control marker reached uniform dispatch",
		EmitInfo:                  "Emitter information",
		EmitUndefinedName:         "Undefined name",
		EmitArityMismatch:         "Wrong number of values to unpack",
		EmitAnnotationMismatch:    "Annotated type does not match value",
		EmitGetAttrName:           "getattr requires a string literal name",
		EmitBadTypeExpr:           "Invalid type expression",
		EmitReturnMismatch:        "Return type mismatch",
		EmitForkTarget:            "Invalid fork target",
		EmitDuplicateMethod:       "Duplicate method definition",
	}
)

// ID returns the stable string form, e.g. "SUG4001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("INP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("SUG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("EMT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return c.ID()
}

// Codes returns every known code in numeric order, UnknownCode excluded.
func Codes() []Code {
	out := slices.Sorted(maps.Keys(codeDescription))
	return slices.DeleteFunc(out, func(c Code) bool { return c == UnknownCode })
}

// ParseID is the inverse of Code.ID; case is ignored.
func ParseID(id string) (Code, bool) {
	for _, c := range Codes() {
		if strings.EqualFold(c.ID(), id) {
			return c, true
		}
	}
	return UnknownCode, false
}

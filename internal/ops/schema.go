package ops

import (
	"strings"

	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// Argument is one formal parameter of an operator.
type Argument struct {
	Name       string
	Type       types.TypeID
	Default    string // literal, meaningful when HasDefault
	HasDefault bool
	KwargOnly  bool
}

// Schema describes one overload of an operator.
type Schema struct {
	Name     symbols.Symbol
	Overload string // e.g. "dim" for aten::max.dim; empty for the base overload
	Args     []Argument
	Returns  []types.TypeID
	// VarRet marks an ambiguous-arity result: Returns has one element which is
	// repeated as many times as the call site binds names (at least once).
	VarRet bool
	Doc    string
}

// ResultTypes returns the output types for a call bound to nBinders names.
func (s *Schema) ResultTypes(nBinders int) []types.TypeID {
	if !s.VarRet {
		return s.Returns
	}
	n := max(nBinders, 1)
	out := make([]types.TypeID, n)
	for i := range out {
		out[i] = s.Returns[0]
	}
	return out
}

// Signature renders the schema in the same syntax ParseSchema accepts.
func (s *Schema) Signature(in *types.Interner) string {
	var sb strings.Builder
	sb.WriteString(s.Name.String())
	if s.Overload != "" {
		sb.WriteByte('.')
		sb.WriteString(s.Overload)
	}
	sb.WriteByte('(')
	kwargs := false
	for i, a := range s.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a.KwargOnly && !kwargs {
			sb.WriteString("*, ")
			kwargs = true
		}
		sb.WriteString(in.Format(a.Type))
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		if a.HasDefault {
			sb.WriteByte('=')
			sb.WriteString(a.Default)
		}
	}
	sb.WriteString(") -> ")
	switch {
	case s.VarRet:
		sb.WriteString(in.Format(s.Returns[0]))
		sb.WriteString("...")
	case len(s.Returns) == 1:
		sb.WriteString(in.Format(s.Returns[0]))
	default:
		sb.WriteByte('(')
		for i, r := range s.Returns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(in.Format(r))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

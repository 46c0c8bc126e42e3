package script

import (
	"jitscript/internal/ir"
	"jitscript/internal/source"
)

// NamedValue is a call argument: an optional keyword name plus either a
// resolved IR value or a thunk producing one on demand.
type NamedValue struct {
	Loc   source.Span
	Name  string
	value *ir.Value
	thunk func(Context) (*ir.Value, error)
}

func Positional(loc source.Span, v *ir.Value) NamedValue {
	return NamedValue{Loc: loc, value: v}
}

func Keyword(loc source.Span, name string, v *ir.Value) NamedValue {
	return NamedValue{Loc: loc, Name: name, value: v}
}

// Deferred builds an argument whose value is produced when first needed.
func Deferred(loc source.Span, name string, thunk func(Context) (*ir.Value, error)) NamedValue {
	return NamedValue{Loc: loc, Name: name, thunk: thunk}
}

func (n NamedValue) HasName() bool { return n.Name != "" }

// Value resolves the argument in c.
func (n NamedValue) Value(c Context) (*ir.Value, error) {
	if n.value != nil || n.thunk == nil {
		return n.value, nil
	}
	return n.thunk(c)
}

// ToValues resolves every argument, keeping order.
func ToValues(c Context, args []NamedValue) ([]*ir.Value, error) {
	out := make([]*ir.Value, 0, len(args))
	for _, a := range args {
		v, err := a.Value(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

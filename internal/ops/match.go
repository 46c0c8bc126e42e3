package ops

import (
	"fmt"
	"strings"

	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// Actual is the static view of one call argument: its type and, for keyword
// arguments, the name it was passed under.
type Actual struct {
	Name string
	Type types.TypeID
}

// SlotSource says where a schema argument takes its value from.
type SlotSource uint8

const (
	FromPositional SlotSource = iota
	FromKeyword
	FromDefault
)

// Slot binds one schema argument. Index points into the positional or keyword
// actuals depending on Source.
type Slot struct {
	Source SlotSource
	Index  int
}

// Binding is a successful overload selection.
type Binding struct {
	Schema *Schema
	Slots  []Slot // one per Schema.Args, in schema order
}

// NoMatchError reports that no overload of Symbol accepts the arguments.
type NoMatchError struct {
	Symbol     symbols.Symbol
	Candidates []string // signatures of every overload that was tried
	Reasons    []string // why each candidate was rejected, same order
}

func (e *NoMatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no overload of %s matches the arguments", e.Symbol)
	for i, c := range e.Candidates {
		sb.WriteString("\n  ")
		sb.WriteString(c)
		if i < len(e.Reasons) && e.Reasons[i] != "" {
			sb.WriteString(": ")
			sb.WriteString(e.Reasons[i])
		}
	}
	return sb.String()
}

// Match selects the first overload of sym that accepts the actuals. sym is
// reported unchanged in a NoMatchError, so aliases keep the spelling the user
// wrote.
func (r *Registry) Match(sym symbols.Symbol, positional, keywords []Actual) (*Binding, error) {
	schemas := r.Lookup(sym)
	nerr := &NoMatchError{Symbol: sym}
	for _, s := range schemas {
		b, reason := bind(r.types, s, positional, keywords)
		if b != nil {
			return b, nil
		}
		nerr.Candidates = append(nerr.Candidates, s.Signature(r.types))
		nerr.Reasons = append(nerr.Reasons, reason)
	}
	return nil, nerr
}

// BindSchema matches the actuals against a single schema, e.g. the signature
// of a user-defined method.
func BindSchema(in *types.Interner, s *Schema, positional, keywords []Actual) (*Binding, error) {
	b, reason := bind(in, s, positional, keywords)
	if b != nil {
		return b, nil
	}
	return nil, &NoMatchError{
		Symbol:     s.Name,
		Candidates: []string{s.Signature(in)},
		Reasons:    []string{reason},
	}
}

func bind(in *types.Interner, s *Schema, positional, keywords []Actual) (*Binding, string) {
	posCap := 0
	for _, a := range s.Args {
		if a.KwargOnly {
			break
		}
		posCap++
	}
	if len(positional) > posCap {
		return nil, fmt.Sprintf("expected at most %d positional arguments, found %d", posCap, len(positional))
	}
	used := make([]bool, len(keywords))
	b := &Binding{Schema: s, Slots: make([]Slot, len(s.Args))}
	for i, formal := range s.Args {
		if i < len(positional) {
			if !in.IsSubtype(positional[i].Type, formal.Type) {
				return nil, mismatch(in, formal, positional[i].Type)
			}
			b.Slots[i] = Slot{Source: FromPositional, Index: i}
			continue
		}
		k := findKeyword(keywords, formal.Name)
		switch {
		case k >= 0:
			if used[k] {
				return nil, fmt.Sprintf("argument %q given more than once", formal.Name)
			}
			if !in.IsSubtype(keywords[k].Type, formal.Type) {
				return nil, mismatch(in, formal, keywords[k].Type)
			}
			used[k] = true
			b.Slots[i] = Slot{Source: FromKeyword, Index: k}
		case formal.HasDefault:
			b.Slots[i] = Slot{Source: FromDefault, Index: -1}
		default:
			return nil, fmt.Sprintf("argument %q not provided", formal.Name)
		}
	}
	for i, kw := range keywords {
		if used[i] {
			continue
		}
		if findArg(s.Args[:len(positional)], kw.Name) {
			return nil, fmt.Sprintf("argument %q given more than once", kw.Name)
		}
		return nil, fmt.Sprintf("unknown keyword argument %q", kw.Name)
	}
	return b, ""
}

func mismatch(in *types.Interner, formal Argument, actual types.TypeID) string {
	return fmt.Sprintf("expected %s for argument %q, found %s",
		in.Format(formal.Type), formal.Name, in.Format(actual))
}

func findKeyword(keywords []Actual, name string) int {
	for i, kw := range keywords {
		if kw.Name == name {
			return i
		}
	}
	return -1
}

func findArg(args []Argument, name string) bool {
	for _, a := range args {
		if a.Name == name {
			return true
		}
	}
	return false
}

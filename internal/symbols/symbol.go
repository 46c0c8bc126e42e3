// Package symbols interns namespace-qualified operator names such as
// "aten::relu" or "prim::Int".
//
// A Symbol is a dense handle into a process-wide table. Symbols are cheap to
// compare and copy; String renders the qualified form. The table is shared by
// every compilation and is safe for concurrent use.
package symbols

import (
	"fmt"
	"strings"

	"jitscript/internal/source"
)

// Symbol is an interned qualified operator name.
type Symbol source.StringID

// NoSymbol is the zero Symbol; it renders as the empty string.
const NoSymbol Symbol = 0

const separator = "::"

var table = source.NewInterner()

// FromQualString interns "namespace::name". Both parts must be non-empty.
func FromQualString(qual string) (Symbol, error) {
	ns, name, ok := strings.Cut(qual, separator)
	if !ok || ns == "" || name == "" || strings.Contains(name, separator) {
		return NoSymbol, fmt.Errorf("symbol %q is not of the form namespace::name", qual)
	}
	return intern(qual), nil
}

// MustQual is FromQualString for names known to be well formed.
func MustQual(qual string) Symbol {
	s, err := FromQualString(qual)
	if err != nil {
		panic(err)
	}
	return s
}

// Join builds the symbol ns::name. It never fails: whether the operator
// exists is decided by the registry at call time.
func Join(ns, name string) Symbol {
	return intern(ns + separator + name)
}

func intern(qual string) Symbol {
	return Symbol(table.Intern(qual))
}

// String returns the qualified form.
func (s Symbol) String() string {
	str, _ := table.Lookup(source.StringID(s))
	return str
}

// Namespace returns the part before "::".
func (s Symbol) Namespace() string {
	ns, _, _ := strings.Cut(s.String(), separator)
	return ns
}

// Name returns the unqualified part after "::".
func (s Symbol) Name() string {
	_, name, _ := strings.Cut(s.String(), separator)
	return name
}

// WithNamespace returns the symbol with the same name under ns.
func (s Symbol) WithNamespace(ns string) Symbol {
	return Join(ns, s.Name())
}

// IsValid reports whether s was produced by the table.
func (s Symbol) IsValid() bool {
	return s != NoSymbol
}

package ops

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

var (
	ErrFrozen        = errors.New("operator registry is frozen")
	ErrDuplicate     = errors.New("duplicate operator overload")
	ErrAliasConflict = errors.New("namespace alias conflicts with a registered namespace")
)

// Registry maps qualified operator symbols to their overloads. After Freeze it
// is read-only and may be shared by parallel compilations.
type Registry struct {
	mu      sync.RWMutex
	types   *types.Interner
	ops     map[symbols.Symbol][]*Schema
	aliases map[string]string
	frozen  bool
}

func NewRegistry(in *types.Interner) *Registry {
	return &Registry{
		types:   in,
		ops:     make(map[symbols.Symbol][]*Schema),
		aliases: make(map[string]string),
	}
}

// Types returns the interner schemas were resolved against.
func (r *Registry) Types() *types.Interner { return r.types }

// Register adds an overload. Overloads of one symbol are tried in
// registration order.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if _, ok := r.aliases[s.Name.Namespace()]; ok {
		return fmt.Errorf("%w: %s", ErrAliasConflict, s.Name)
	}
	for _, prev := range r.ops[s.Name] {
		if prev.Overload == s.Overload {
			return fmt.Errorf("%w: %s.%s", ErrDuplicate, s.Name, s.Overload)
		}
	}
	r.ops[s.Name] = append(r.ops[s.Name], s)
	return nil
}

// RegisterSignature parses sig and registers the result.
func (r *Registry) RegisterSignature(sig string) error {
	s, err := ParseSchema(r.types, sig)
	if err != nil {
		return err
	}
	return r.Register(s)
}

// Alias makes every lookup in namespace from resolve to namespace to.
func (r *Registry) Alias(from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	for sym := range r.ops {
		if sym.Namespace() == from {
			return fmt.Errorf("%w: %s", ErrAliasConflict, from)
		}
	}
	r.aliases[from] = to
	return nil
}

// Freeze forbids further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Canonical resolves namespace aliases: torch::relu becomes aten::relu.
func (r *Registry) Canonical(sym symbols.Symbol) symbols.Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canonical(sym)
}

func (r *Registry) canonical(sym symbols.Symbol) symbols.Symbol {
	if to, ok := r.aliases[sym.Namespace()]; ok {
		return sym.WithNamespace(to)
	}
	return sym
}

// Lookup returns the overloads of sym, following aliases.
func (r *Registry) Lookup(sym symbols.Symbol) []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ops[r.canonical(sym)]
}

// Has reports whether sym names at least one overload.
func (r *Registry) Has(sym symbols.Symbol) bool {
	return len(r.Lookup(sym)) > 0
}

// HasNamespace reports whether ns is an operator namespace or an alias of one.
func (r *Registry) HasNamespace(ns string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.aliases[ns]; ok {
		return true
	}
	for sym := range r.ops {
		if sym.Namespace() == ns {
			return true
		}
	}
	return false
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// All returns every overload sorted by qualified name, then registration order.
func (r *Registry) All() []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	syms := make([]symbols.Symbol, 0, len(r.ops))
	for sym := range r.ops {
		syms = append(syms, sym)
	}
	slices.SortFunc(syms, func(a, b symbols.Symbol) int {
		return strings.Compare(a.String(), b.String())
	})
	var out []*Schema
	for _, sym := range syms {
		out = append(out, r.ops[sym]...)
	}
	return out
}

// Len returns the number of registered overloads.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, ss := range r.ops {
		n += len(ss)
	}
	return n
}

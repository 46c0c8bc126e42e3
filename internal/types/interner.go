package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types.
type Builtins struct {
	Any    TypeID
	None   TypeID
	Bool   TypeID
	Int    TypeID
	Float  TypeID
	Str    TypeID
	Tensor TypeID
}

// Interner provides stable TypeIDs for structural descriptors and allocates
// nominal class types. Methods of independent functions may be compiled in
// parallel, so all access goes through mu.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[Type]TypeID
	tuples   []TupleInfo
	tupleIdx map[string]TypeID
	classes  []ClassInfo
	classIdx map[string]TypeID
	builtins Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[Type]TypeID, 64),
		tupleIdx: make(map[string]TypeID),
		classIdx: make(map[string]TypeID),
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // 0 = NoTypeID
	in.tuples = append(in.tuples, TupleInfo{})          // reserve slot 0
	in.classes = append(in.classes, ClassInfo{})
	in.builtins = Builtins{
		Any:    in.intern(Type{Kind: KindAny}),
		None:   in.intern(Type{Kind: KindNone}),
		Bool:   in.intern(Type{Kind: KindBool}),
		Int:    in.intern(Type{Kind: KindInt}),
		Float:  in.intern(Type{Kind: KindFloat}),
		Str:    in.intern(Type{Kind: KindStr}),
		Tensor: in.intern(Type{Kind: KindTensor}),
	}
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the structural descriptor t has a stable TypeID.
// Tuples and classes have their own constructors.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid || t.Kind == KindTuple || t.Kind == KindClass {
		return NoTypeID
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.intern(in.normalize(t))
}

// Optional returns Optional[elem]; Optional of None or of an optional collapses.
func (in *Interner) Optional(elem TypeID) TypeID {
	return in.Intern(MakeOptional(elem))
}

func (in *Interner) List(elem TypeID) TypeID {
	return in.Intern(MakeList(elem))
}

func (in *Interner) Future(elem TypeID) TypeID {
	return in.Intern(MakeFuture(elem))
}

// normalize requires in.mu held.
func (in *Interner) normalize(t Type) Type {
	if t.Kind != KindOptional {
		return t
	}
	if int(t.Elem) < len(in.types) {
		switch inner := in.types[t.Elem]; inner.Kind {
		case KindOptional:
			return inner
		case KindNone:
			return inner
		}
	}
	return t
}

// intern requires in.mu held.
func (in *Interner) intern(t Type) TypeID {
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.appendType(t)
}

func (in *Interner) appendType(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lookup(id)
}

func (in *Interner) lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns KindInvalid for unknown ids.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// IsOptional reports whether id is Optional[T].
func (in *Interner) IsOptional(id TypeID) bool {
	return in.KindOf(id) == KindOptional
}

package script

import (
	"jitscript/internal/ir"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// Value is a sugared value. The set of implementations is closed.
type Value interface {
	// Kind is a diagnostic label only; never branch on it.
	Kind() string
	sugared()
}

// NoneStatus classifies a value against the None sentinel.
type NoneStatus uint8

const (
	Never NoneStatus = iota
	Maybe
	Always
)

func (s NoneStatus) String() string {
	switch s {
	case Always:
		return "ALWAYS"
	case Maybe:
		return "MAYBE"
	}
	return "NEVER"
}

// SimpleValue wraps an IR value that already exists in the graph.
type SimpleValue struct {
	value *ir.Value
}

func NewSimpleValue(v *ir.Value) *SimpleValue { return &SimpleValue{value: v} }

// IR returns the wrapped value.
func (s *SimpleValue) IR() *ir.Value { return s.value }

// BuiltinFunction names an operator, optionally bound to a receiver that is
// passed as the first argument. The symbol is not checked against the registry
// until the function is called.
type BuiltinFunction struct {
	Symbol  symbols.Symbol
	Self    *NamedValue
	Version string // carried over from the BuiltinModule, if any
}

func NewBuiltinFunction(sym symbols.Symbol, self *NamedValue) *BuiltinFunction {
	return &BuiltinFunction{Symbol: sym, Self: self}
}

// BuiltinModule is an operator namespace such as torch or prim.
type BuiltinModule struct {
	Name    string
	Version string
}

func NewBuiltinModule(name string) *BuiltinModule { return &BuiltinModule{Name: name} }

// MethodValue is a method of a scripted module bound to a receiver. The module
// pointer keeps the container alive for every call emitted through the value;
// the method itself is held by index and is only valid for the module table
// generation it was resolved in.
type MethodValue struct {
	module *Module
	self   *ir.Value
	index  int
	gen    uint64
}

// NewMethodValue binds method name of m to the receiver self.
func NewMethodValue(m *Module, self *ir.Value, name string) (*MethodValue, bool) {
	idx, gen, ok := m.find(name)
	if !ok {
		return nil, false
	}
	return &MethodValue{module: m, self: self, index: idx, gen: gen}, true
}

func (v *MethodValue) Module() *Module { return v.module }

func (v *MethodValue) Receiver() *ir.Value { return v.self }

// Method resolves the held reference; it fails if the table changed since.
func (v *MethodValue) Method() (*Method, error) {
	return v.module.resolve(v.index, v.gen)
}

// CastValue is int/float/bool/str: a no-op when the argument already has the
// target type, otherwise a call to the conversion operator.
type CastValue struct {
	BuiltinFunction
	Target types.TypeID
}

func NewCastValue(target types.TypeID, op symbols.Symbol) *CastValue {
	return &CastValue{BuiltinFunction: BuiltinFunction{Symbol: op}, Target: target}
}

// PrintValue is the print builtin.
type PrintValue struct{}

// TupleValue is a fixed-arity group of sugared values, produced by operators
// returning more than one result.
type TupleValue struct {
	Elems []Value
}

// Control markers. They carry no data.
type (
	ForkValue       struct{}
	AnnotateValue   struct{}
	GetAttrValue    struct{}
	IsInstanceValue struct{}
)

func (*SimpleValue) Kind() string     { return "value" }
func (*BuiltinFunction) Kind() string { return "builtin" }
func (*BuiltinModule) Kind() string   { return "builtin module" }
func (*MethodValue) Kind() string     { return "method" }
func (*PrintValue) Kind() string      { return "print" }
func (*TupleValue) Kind() string      { return "tuple" }
func (ForkValue) Kind() string        { return "fork" }
func (AnnotateValue) Kind() string    { return "annotate" }
func (GetAttrValue) Kind() string     { return "getattr" }
func (IsInstanceValue) Kind() string  { return "isinstance" }

func (*SimpleValue) sugared()     {}
func (*BuiltinFunction) sugared() {}
func (*BuiltinModule) sugared()   {}
func (*MethodValue) sugared()     {}
func (*CastValue) sugared()       {}
func (*PrintValue) sugared()      {}
func (*TupleValue) sugared()      {}
func (ForkValue) sugared()        {}
func (AnnotateValue) sugared()    {}
func (GetAttrValue) sugared()     {}
func (IsInstanceValue) sugared()  {}

// IsMarker reports whether v is one of the control markers.
func IsMarker(v Value) bool {
	switch v.(type) {
	case ForkValue, AnnotateValue, GetAttrValue, IsInstanceValue:
		return true
	}
	return false
}

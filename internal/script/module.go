package script

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"jitscript/internal/ir"
	"jitscript/internal/ops"
	"jitscript/internal/types"
)

var (
	ErrStaleMethod     = errors.New("method reference outlived its module table")
	ErrModuleFrozen    = errors.New("module method table is frozen")
	ErrDuplicateMethod = errors.New("duplicate method")
)

// Method is a user-defined method. Schema excludes the receiver.
type Method struct {
	Name   string
	Schema *ops.Schema
	owner  *Module
	graph  atomic.Pointer[ir.Graph]
}

func (m *Method) Owner() *Module { return m.owner }

// Graph returns the compiled body, or nil before compilation finished.
func (m *Method) Graph() *ir.Graph { return m.graph.Load() }

func (m *Method) SetGraph(g *ir.Graph) { m.graph.Store(g) }

// QualName is "Module.method".
func (m *Method) QualName() string {
	if m.owner == nil {
		return m.Name
	}
	return m.owner.Name + "." + m.Name
}

// Module is a scripted container: a class type plus its method table. Every
// change to the table bumps the generation, invalidating outstanding
// MethodValues.
type Module struct {
	Name  string
	Class types.TypeID

	mu      sync.RWMutex
	methods []*Method
	index   map[string]int
	gen     uint64
	frozen  bool
}

func NewModule(name string, class types.TypeID) *Module {
	return &Module{Name: name, Class: class, index: make(map[string]int)}
}

// Define adds a method.
func (m *Module) Define(method *Method) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return ErrModuleFrozen
	}
	if _, ok := m.index[method.Name]; ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateMethod, m.Name, method.Name)
	}
	method.owner = m
	m.index[method.Name] = len(m.methods)
	m.methods = append(m.methods, method)
	m.gen++
	return nil
}

// Remove deletes a method; the remaining methods keep their order.
func (m *Module) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.index[name]
	if !ok || m.frozen {
		return false
	}
	m.methods = append(m.methods[:idx], m.methods[idx+1:]...)
	delete(m.index, name)
	for i := idx; i < len(m.methods); i++ {
		m.index[m.methods[i].Name] = i
	}
	m.gen++
	return true
}

// Freeze makes the table read-only; compilation of bodies starts after this.
func (m *Module) Freeze() {
	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()
}

// Lookup finds a method by name.
func (m *Module) Lookup(name string) (*Method, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.methods[idx], true
}

// Methods returns the table in definition order.
func (m *Module) Methods() []*Method {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Method(nil), m.methods...)
}

func (m *Module) find(name string) (int, uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.index[name]
	return idx, m.gen, ok
}

func (m *Module) resolve(idx int, gen uint64) (*Method, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if gen != m.gen || idx < 0 || idx >= len(m.methods) {
		return nil, fmt.Errorf("%w: %s (generation %d, now %d)", ErrStaleMethod, m.Name, gen, m.gen)
	}
	return m.methods[idx], nil
}

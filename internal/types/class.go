package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Field is a named attribute of a class type.
type Field struct {
	Name string
	Type TypeID
}

// ClassInfo describes a nominal class: the type of a script module or object.
// Methods lists names only; bodies and signatures live with the compiler's
// module table.
type ClassInfo struct {
	Name    string
	Fields  []Field
	Methods []string
}

// RegisterClass allocates a new nominal class type. Names must be unique.
func (in *Interner) RegisterClass(name string, fields []Field) (TypeID, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, dup := in.classIdx[name]; dup {
		return NoTypeID, fmt.Errorf("class %q already declared", name)
	}
	slot, err := safecast.Conv[uint32](len(in.classes))
	if err != nil {
		panic(fmt.Errorf("class info overflow: %w", err))
	}
	in.classes = append(in.classes, ClassInfo{Name: name, Fields: slices.Clone(fields)})
	id := in.appendType(Type{Kind: KindClass, Payload: slot})
	in.classIdx[name] = id
	return id, nil
}

// AddMethod records a method name on the class.
func (in *Interner) AddMethod(class TypeID, name string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.classInfo(class)
	if info == nil || slices.Contains(info.Methods, name) {
		return false
	}
	info.Methods = append(info.Methods, name)
	return true
}

// ClassByName finds a class type by its declared name.
func (in *Interner) ClassByName(name string) (TypeID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.classIdx[name]
	return id, ok
}

// ClassInfo returns a copy of the class metadata.
func (in *Interner) ClassInfo(id TypeID) (ClassInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.classInfo(id)
	if info == nil {
		return ClassInfo{}, false
	}
	return ClassInfo{
		Name:    info.Name,
		Fields:  slices.Clone(info.Fields),
		Methods: slices.Clone(info.Methods),
	}, true
}

// FieldType returns the declared type of field on a class.
func (in *Interner) FieldType(class TypeID, field string) (TypeID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.classInfo(class)
	if info == nil {
		return NoTypeID, false
	}
	for _, f := range info.Fields {
		if f.Name == field {
			return f.Type, true
		}
	}
	return NoTypeID, false
}

// HasMethod reports whether the class declares method name.
func (in *Interner) HasMethod(class TypeID, name string) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.classInfo(class)
	return info != nil && slices.Contains(info.Methods, name)
}

func (in *Interner) classInfo(id TypeID) *ClassInfo {
	tt, ok := in.lookup(id)
	if !ok || tt.Kind != KindClass {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[tt.Payload]
}

package types

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// TupleInfo stores the element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// Tuple creates or finds the tuple type with the given element types.
func (in *Interner) Tuple(elems []TypeID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	key := tupleKey(elems)
	if id, ok := in.tupleIdx[key]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.tuples))
	if err != nil {
		panic(fmt.Errorf("tuple info overflow: %w", err))
	}
	in.tuples = append(in.tuples, TupleInfo{Elems: slices.Clone(elems)})
	id := in.appendType(Type{Kind: KindTuple, Payload: slot})
	in.tupleIdx[key] = id
	return id
}

// TupleElems returns a copy of the element types of a tuple TypeID.
func (in *Interner) TupleElems(id TypeID) ([]TypeID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.tupleInfo(id)
	if info == nil {
		return nil, false
	}
	return slices.Clone(info.Elems), true
}

func (in *Interner) tupleInfo(id TypeID) *TupleInfo {
	tt, ok := in.lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.tuples) {
		return nil
	}
	return &in.tuples[tt.Payload]
}

func tupleKey(elems []TypeID) string {
	var sb strings.Builder
	for i, e := range elems {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", e)
	}
	return sb.String()
}

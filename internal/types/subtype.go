package types

// IsSubtype reports whether a value of type sub can be used where sup is
// expected without a coercion.
//
//   - every type is a subtype of itself and of Any;
//   - None and T are subtypes of Optional[T]; Optional[S] <: Optional[T] iff S <: T;
//   - tuples are covariant elementwise with equal arity;
//   - Future is covariant; List is invariant.
func (in *Interner) IsSubtype(sub, sup TypeID) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.isSubtype(sub, sup)
}

func (in *Interner) isSubtype(sub, sup TypeID) bool {
	if sub == sup {
		return sub != NoTypeID
	}
	a, ok := in.lookup(sub)
	if !ok {
		return false
	}
	b, ok := in.lookup(sup)
	if !ok {
		return false
	}
	switch b.Kind {
	case KindAny:
		return true
	case KindOptional:
		switch a.Kind {
		case KindNone:
			return true
		case KindOptional:
			return in.isSubtype(a.Elem, b.Elem)
		default:
			return in.isSubtype(sub, b.Elem)
		}
	case KindTuple:
		if a.Kind != KindTuple {
			return false
		}
		ae, be := in.tupleInfo(sub), in.tupleInfo(sup)
		if ae == nil || be == nil || len(ae.Elems) != len(be.Elems) {
			return false
		}
		for i := range ae.Elems {
			if !in.isSubtype(ae.Elems[i], be.Elems[i]) {
				return false
			}
		}
		return true
	case KindFuture:
		return a.Kind == KindFuture && in.isSubtype(a.Elem, b.Elem)
	}
	return false
}

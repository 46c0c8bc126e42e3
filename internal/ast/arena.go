package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores bundle nodes of one kind. Handles are 1-based so that the
// zero handle of every ID type means "absent".
type Arena[T any] struct {
	data []T
}

func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate appends value and returns its handle.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	h, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("ast: too many nodes in bundle: %w", err))
	}
	return h
}

// Get returns nil for the zero handle and for handles from another arena
// that run past the end.
func (a *Arena[T]) Get(h uint32) *T {
	if h == 0 || int(h) > len(a.data) {
		return nil
	}
	return &a.data[h-1]
}

func (a *Arena[T]) Len() int { return len(a.data) }

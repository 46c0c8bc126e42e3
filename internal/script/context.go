package script

import (
	"context"

	"jitscript/internal/ir"
	"jitscript/internal/ops"
	"jitscript/internal/source"
	"jitscript/internal/types"
)

// Context is what resolution needs from the emitter compiling one function.
// A Context is confined to a single goroutine.
type Context interface {
	// Graph is the graph being built; new nodes go to its insertion block.
	Graph() *ir.Graph
	// Registry is the frozen operator registry.
	Registry() *ops.Registry
	// ModuleOf returns the scripted module whose instances have type class.
	ModuleOf(class types.TypeID) (*Module, bool)
	// EmitCall emits a call to callee; inputs[0] is the receiver.
	EmitCall(loc source.Span, callee *Method, inputs, attributes []NamedValue) (*ir.Value, error)
	// TraceContext carries the tracer and the enclosing span.
	TraceContext() context.Context
}

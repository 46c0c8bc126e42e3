package compiler

import (
	"jitscript/internal/script"
	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// builtinNamespaces are reachable by name from every method body.
var builtinNamespaces = []string{"torch", "aten", "prim"}

// newBuiltins builds the global scope. extra adds operator namespaces loaded
// from libraries; version, if set, tags every operator call.
func newBuiltins(in *types.Interner, extra []string, version string) map[string]script.Value {
	b := in.Builtins()
	env := map[string]script.Value{
		"int":        script.NewCastValue(b.Int, symbols.PrimInt),
		"float":      script.NewCastValue(b.Float, symbols.PrimFloat),
		"bool":       script.NewCastValue(b.Bool, symbols.PrimBool),
		"str":        script.NewCastValue(b.Str, symbols.PrimStr),
		"print":      &script.PrintValue{},
		"fork":       script.ForkValue{},
		"annotate":   script.AnnotateValue{},
		"getattr":    script.GetAttrValue{},
		"isinstance": script.IsInstanceValue{},
	}
	for _, ns := range append(append([]string(nil), builtinNamespaces...), extra...) {
		m := script.NewBuiltinModule(ns)
		m.Version = version
		env[ns] = m
	}
	return env
}

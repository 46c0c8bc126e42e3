package compiler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"jitscript/internal/ast"
	"jitscript/internal/diag"
	"jitscript/internal/ir"
	"jitscript/internal/observ"
	"jitscript/internal/ops"
	"jitscript/internal/script"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
	"jitscript/internal/trace"
	"jitscript/internal/types"
)

// Options control body compilation.
type Options struct {
	Jobs       int      // parallel method compilations; <= 0 means GOMAXPROCS
	Namespaces []string // extra operator namespaces visible as globals
	Version    string   // operator-set version attached to builtin calls
	Timer      *observ.Timer
	Progress   ProgressFunc
}

// Program is a declared bundle: classes registered, method tables frozen.
type Program struct {
	Types    *types.Interner
	Registry *ops.Registry
	Modules  []*script.Module

	byClass map[types.TypeID]*script.Module
	units   []unit
}

type unit struct {
	module *script.Module
	method *script.Method
	decl   *ast.MethodDecl
	bundle *ast.Bundle
}

// Stats summarises a Compile run.
type Stats struct {
	Methods int
	Failed  int
	Nodes   int
}

// Declare registers every class of b and the signatures of its methods. It
// reports problems to rep and returns ok=false if any were found.
func Declare(b *ast.Bundle, in *types.Interner, reg *ops.Registry, rep diag.Reporter) (*Program, bool) {
	p := &Program{Types: in, Registry: reg, byClass: make(map[types.TypeID]*script.Module)}
	ok := true
	fail := func(code diag.Code, sp source.Span, msg string) {
		diag.Emit(rep, diag.NewError(code, sp, msg))
		ok = false
	}

	// classes first: field types may only refer to classes declared earlier
	decls := make([]*ast.ModuleDecl, 0, len(b.Modules))
	for i := range b.Modules {
		md := &b.Modules[i]
		fields := make([]types.Field, 0, len(md.Fields))
		for _, f := range md.Fields {
			t, err := in.Parse(f.Type)
			if err != nil {
				fail(diag.InputUnknownType, f.Span, fmt.Sprintf("field %s.%s: %v", md.Name, f.Name, err))
				continue
			}
			fields = append(fields, types.Field{Name: f.Name, Type: t})
		}
		cls, err := in.RegisterClass(md.Name, fields)
		if err != nil {
			fail(diag.InputDuplicateClass, md.Span, err.Error())
			continue
		}
		m := script.NewModule(md.Name, cls)
		p.byClass[cls] = m
		p.Modules = append(p.Modules, m)
		decls = append(decls, md)
	}

	// methods are declared before any body is compiled so calls may refer
	// forward
	for i, m := range p.Modules {
		md := decls[i]
		for j := range md.Methods {
			decl := &md.Methods[j]
			schema, err := methodSchema(in, m.Name, decl)
			if err != nil {
				fail(diag.InputUnknownType, decl.Span, err.Error())
				continue
			}
			method := &script.Method{Name: decl.Name, Schema: schema}
			if err := m.Define(method); err != nil {
				fail(diag.EmitDuplicateMethod, decl.Span, err.Error())
				continue
			}
			in.AddMethod(m.Class, decl.Name)
			p.units = append(p.units, unit{module: m, method: method, decl: decl, bundle: b})
		}
		m.Freeze()
	}
	return p, ok
}

func methodSchema(in *types.Interner, module string, decl *ast.MethodDecl) (*ops.Schema, error) {
	s := &ops.Schema{Name: symbols.Join(module, decl.Name)}
	for _, prm := range decl.Params {
		t, err := in.Parse(prm.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: parameter %s: %w", module, decl.Name, prm.Name, err)
		}
		s.Args = append(s.Args, ops.Argument{Name: prm.Name, Type: t})
	}
	ret := in.Builtins().None
	if decl.Returns != "" {
		t, err := in.Parse(decl.Returns)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: return type: %w", module, decl.Name, err)
		}
		ret = t
	}
	s.Returns = []types.TypeID{ret}
	return s, nil
}

// Compile emits a graph for every declared method. Methods are independent
// and compile in parallel; a method that fails reports its first error and
// is left without a graph. The returned error is reserved for cancellation
// and internal failures.
func (p *Program) Compile(ctx context.Context, opts Options, rep diag.Reporter) (Stats, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	var failed, nodes atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range p.units {
		opts.Progress.emit(p.units[i].method.QualName(), StatusQueued)
	}
	for i := range p.units {
		u := &p.units[i]
		name := u.method.QualName()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			opts.Progress.emit(name, StatusWorking)
			h := opts.Timer.BeginMethod(name)
			graph, err := p.compileMethod(gctx, u, opts)
			note := ""
			switch {
			case err == nil:
				u.method.SetGraph(graph)
				nodes.Add(int64(graph.NodeCount()))
				opts.Progress.emit(name, StatusDone)
			case reportError(rep, err):
				failed.Add(1)
				note = "failed"
				opts.Progress.emit(name, StatusFailed)
			default:
				opts.Timer.End(h, "internal error")
				opts.Progress.emit(name, StatusFailed)
				return fmt.Errorf("compile %s: %w", name, err)
			}
			opts.Timer.End(h, note)
			return nil
		})
	}
	err := g.Wait()
	return Stats{Methods: len(p.units), Failed: int(failed.Load()), Nodes: int(nodes.Load())}, err
}

func (p *Program) compileMethod(ctx context.Context, u *unit, opts Options) (*ir.Graph, error) {
	ctx, span := trace.Start(ctx, trace.ScopeFunction, "compile:"+u.method.QualName())
	g := ir.NewGraph(u.method.QualName(), p.Types)
	fc := &functionContext{
		ctx:      ctx,
		prog:     p,
		bundle:   u.bundle,
		method:   u.method,
		g:        g,
		builtins: newBuiltins(p.Types, opts.Namespaces, opts.Version),
		locals:   make(map[string]script.Value, len(u.method.Schema.Args)+1),
	}
	fc.locals["self"] = script.NewSimpleValue(g.AddInput("self", u.module.Class))
	for _, a := range u.method.Schema.Args {
		fc.locals[a.Name] = script.NewSimpleValue(g.AddInput(a.Name, a.Type))
	}
	if err := fc.emitBody(u.decl, u.method.Schema.Returns[0]); err != nil {
		span.End(err.Error())
		return nil, err
	}
	span.WithExtra("nodes", strconv.Itoa(g.NodeCount())).End("")
	return g, nil
}

// reportError forwards user-facing failures to rep. It returns false for
// errors that are not diagnostics.
func reportError(rep diag.Reporter, err error) bool {
	var se *script.Error
	if errors.As(err, &se) {
		diag.Emit(rep, se.Diagnostic())
		return true
	}
	var ce *Error
	if errors.As(err, &ce) {
		diag.Emit(rep, ce.Diagnostic())
		return true
	}
	return false
}

// Graphs returns the compiled graphs in declaration order, skipping methods
// that failed.
func (p *Program) Graphs() []*ir.Graph {
	var out []*ir.Graph
	for _, m := range p.Modules {
		for _, meth := range m.Methods() {
			if g := meth.Graph(); g != nil {
				out = append(out, g)
			}
		}
	}
	return out
}

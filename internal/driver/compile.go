package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"jitscript/internal/ast"
	"jitscript/internal/compiler"
	"jitscript/internal/diag"
	"jitscript/internal/observ"
	"jitscript/internal/ops"
	"jitscript/internal/source"
	"jitscript/internal/trace"
	"jitscript/internal/types"
)

// Options configure one Compile call.
type Options struct {
	Libraries      []string
	Cache          string
	Namespaces     []string
	Version        string
	Jobs           int
	MaxDiagnostics int
	Timer          *observ.Timer
	Progress       compiler.ProgressFunc
}

// Result holds everything a caller may want to print or export. Program is
// nil when the run stopped before compilation.
type Result struct {
	FileSet   *source.FileSet
	Types     *types.Interner
	Registry  *ops.Registry
	FromCache bool
	Bundle    *ast.Bundle
	Program   *compiler.Program
	Bag       *diag.Bag
	Stats     compiler.Stats
}

// Compile decodes the bundle at path and compiles every method in it.
// Problems in the inputs become diagnostics in Result.Bag; the error return
// is for I/O failures, cancellation and internal faults.
func Compile(ctx context.Context, path string, opts Options) (*Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile")
	defer span.End("")

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 100
	}
	res := &Result{
		FileSet: source.NewFileSet(),
		Types:   types.NewInterner(),
		Bag:     diag.NewBag(maxDiag),
	}
	rep := &diag.BagReporter{Bag: res.Bag}

	err := phase(ctx, opts.Timer, "load operators", func() error {
		reg, cached, err := BuildRegistry(ctx, res.Types, RegistryOptions{
			Libraries: opts.Libraries,
			Cache:     opts.Cache,
			Jobs:      opts.Jobs,
		})
		res.Registry, res.FromCache = reg, cached
		return err
	})
	var le *LibraryError
	if errors.As(err, &le) {
		reportLibraryError(rep, res.FileSet, le)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	for _, ns := range opts.Namespaces {
		if !res.Registry.HasNamespace(ns) {
			msg := fmt.Sprintf("namespace %q has no registered operators", ns)
			diag.Emit(rep, diag.NewWarning(diag.InputUnknownNamespace, source.NoSpan, msg))
		}
	}

	err = phase(ctx, opts.Timer, "decode", func() error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		res.Bundle, err = ast.DecodeBundle(f, res.FileSet, path)
		return err
	})
	var de *ast.DecodeError
	if errors.As(err, &de) {
		reportDecodeError(rep, res.FileSet, path, de)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read bundle: %w", err)
	}

	var declared bool
	_ = phase(ctx, opts.Timer, "declare", func() error {
		res.Program, declared = compiler.Declare(res.Bundle, res.Types, res.Registry, rep)
		return nil
	})
	if !declared {
		return res, nil
	}

	err = phase(ctx, opts.Timer, "compile", func() error {
		var err error
		res.Stats, err = res.Program.Compile(ctx, compiler.Options{
			Jobs:       opts.Jobs,
			Namespaces: opts.Namespaces,
			Version:    opts.Version,
			Timer:      opts.Timer,
			Progress:   opts.Progress,
		}, rep)
		return err
	})
	span.WithExtra("methods", strconv.Itoa(res.Stats.Methods)).
		WithExtra("failed", strconv.Itoa(res.Stats.Failed))
	res.Bag.Sort()
	res.Bag.Dedup()
	return res, err
}

func phase(ctx context.Context, t *observ.Timer, name string, fn func() error) error {
	_, sp := trace.Start(ctx, trace.ScopePass, name)
	err := t.Measure(name, fn)
	if err != nil {
		sp.End("failed")
	} else {
		sp.End("")
	}
	return err
}

// reportDecodeError turns a YAML error into a diagnostic pointing into the
// bundle file itself.
func reportDecodeError(rep diag.Reporter, fs *source.FileSet, path string, de *ast.DecodeError) {
	sp := source.NoSpan
	if id, err := fs.Load(path); err == nil {
		sp = fs.Get(id).SpanAt(de.Line, de.Col)
	}
	diag.Emit(rep, diag.NewError(diag.InputBadBundle, sp, de.Msg))
}

func reportLibraryError(rep diag.Reporter, fs *source.FileSet, le *LibraryError) {
	sp := source.NoSpan
	if id, err := fs.Load(le.Path); err == nil {
		sp = source.Span{File: id}
		var pe toml.ParseError
		if errors.As(le.Err, &pe) {
			sp = fs.Get(id).SpanOf(pe.Position.Start, pe.Position.Len)
		}
	}
	diag.Emit(rep, diag.NewError(diag.InputBadLibrary, sp, le.Err.Error()))
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"jitscript/internal/ops"
	"jitscript/internal/types"
)

// LibraryError is a failure to read or apply one operator library.
type LibraryError struct {
	Path string
	Err  error
}

func (e *LibraryError) Error() string { return "load operator library: " + e.Err.Error() }
func (e *LibraryError) Unwrap() error { return e.Err }

// RegistryOptions select where operators come from.
type RegistryOptions struct {
	Libraries []string
	// Cache names a snapshot file. When it exists it replaces the default
	// library and Libraries entirely.
	Cache string
	Jobs  int
}

// BuildRegistry assembles the frozen operator registry. Library files are
// read and decoded in parallel and applied in the order given, so later
// libraries may alias names declared by earlier ones.
func BuildRegistry(ctx context.Context, in *types.Interner, opts RegistryOptions) (*ops.Registry, bool, error) {
	if opts.Cache != "" {
		reg, err := ops.ReadSnapshotFile(opts.Cache, in)
		switch {
		case err == nil:
			reg.Freeze()
			return reg, true, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, false, fmt.Errorf("read ops cache: %w", err)
		}
	}

	reg, err := ops.NewDefaultRegistry(in)
	if err != nil {
		return nil, false, err
	}
	libs := make([]*ops.LibraryFile, len(opts.Libraries))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, path := range opts.Libraries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lib, err := readLibrary(path)
			if err != nil {
				return &LibraryError{Path: path, Err: err}
			}
			libs[i] = lib
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	for i, lib := range libs {
		if err := reg.Apply(lib); err != nil {
			return nil, false, &LibraryError{Path: opts.Libraries[i], Err: fmt.Errorf("%s: %w", opts.Libraries[i], err)}
		}
	}
	reg.Freeze()
	return reg, false, nil
}

func readLibrary(path string) (*ops.LibraryFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ops.DecodeLibrary(f, path)
}

// WriteCache builds the registry without a cache and snapshots it to path.
func WriteCache(ctx context.Context, path string, libraries []string) (*ops.Registry, error) {
	reg, _, err := BuildRegistry(ctx, types.NewInterner(), RegistryOptions{Libraries: libraries})
	if err != nil {
		return nil, err
	}
	if err := reg.WriteSnapshotFile(path); err != nil {
		return nil, fmt.Errorf("write ops cache: %w", err)
	}
	return reg, nil
}

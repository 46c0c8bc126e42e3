package ops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"jitscript/internal/types"
)

const snapshotSchema uint16 = 1

var ErrSnapshotSchema = errors.New("operator snapshot schema mismatch")

type snapshotOp struct {
	Sig string `msgpack:"s"`
	Doc string `msgpack:"d,omitempty"`
}

type snapshot struct {
	Schema  uint16            `msgpack:"v"`
	Ops     []snapshotOp      `msgpack:"ops"`
	Aliases map[string]string `msgpack:"aliases"`
}

// WriteSnapshot serialises the registry. Schemas are stored as signatures so a
// snapshot does not depend on TypeID numbering.
func (r *Registry) WriteSnapshot(w io.Writer) error {
	snap := snapshot{Schema: snapshotSchema, Aliases: r.Aliases()}
	for _, s := range r.All() {
		snap.Ops = append(snap.Ops, snapshotOp{Sig: s.Signature(r.types), Doc: s.Doc})
	}
	return msgpack.NewEncoder(w).Encode(&snap)
}

// ReadSnapshot rebuilds a registry from WriteSnapshot output.
func ReadSnapshot(rd io.Reader, in *types.Interner) (*Registry, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(rd).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Schema != snapshotSchema {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSnapshotSchema, snap.Schema, snapshotSchema)
	}
	r := NewRegistry(in)
	for _, op := range snap.Ops {
		s, err := ParseSchema(in, op.Sig)
		if err != nil {
			return nil, err
		}
		s.Doc = op.Doc
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	for from, to := range snap.Aliases {
		if err := r.Alias(from, to); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WriteSnapshotFile writes atomically through a temp file in the same directory.
func (r *Registry) WriteSnapshotFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".ops-*.mp")
	if err != nil {
		return err
	}
	if err := r.WriteSnapshot(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadSnapshotFile opens path and calls ReadSnapshot.
func ReadSnapshotFile(path string, in *types.Interner) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f, in)
}

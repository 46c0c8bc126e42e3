package ops

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// LibraryFile is the TOML form of an operator library:
//
//	[aliases]
//	nn = "aten"
//
//	[[operator]]
//	schema = "aten::gelu(Tensor self) -> Tensor"
//	doc = "Gaussian error linear unit"
type LibraryFile struct {
	Aliases   map[string]string `toml:"aliases"`
	Operators []LibraryOp       `toml:"operator"`
}

type LibraryOp struct {
	Schema string `toml:"schema"`
	Doc    string `toml:"doc"`
}

// DecodeLibrary parses a library document. Unknown keys are rejected.
func DecodeLibrary(r io.Reader, name string) (*LibraryFile, error) {
	var lib LibraryFile
	meta, err := toml.NewDecoder(r).Decode(&lib)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, 0, len(undec))
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	for i, op := range lib.Operators {
		if strings.TrimSpace(op.Schema) == "" {
			return nil, fmt.Errorf("%s: operator #%d has no schema", name, i+1)
		}
	}
	return &lib, nil
}

// LoadLibraryFile reads path and merges it into r.
func (r *Registry) LoadLibraryFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	lib, err := DecodeLibrary(f, path)
	if err != nil {
		return err
	}
	return r.Apply(lib)
}

// Apply registers the operators of lib, then its aliases.
func (r *Registry) Apply(lib *LibraryFile) error {
	for _, op := range lib.Operators {
		s, err := ParseSchema(r.types, op.Schema)
		if err != nil {
			return err
		}
		s.Doc = op.Doc
		if err := r.Register(s); err != nil {
			return err
		}
	}
	for from, to := range lib.Aliases {
		if err := r.Alias(from, to); err != nil {
			return err
		}
	}
	return nil
}

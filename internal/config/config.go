// Package config loads jitscript.toml, the project configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Find.
const FileName = "jitscript.toml"

type Config struct {
	// Root is the directory holding the file; relative paths resolve against it.
	Root string `toml:"-"`
	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`

	Compile     Compile     `toml:"compile"`
	Ops         Ops         `toml:"ops"`
	Diagnostics Diagnostics `toml:"diagnostics"`
	Trace       Trace       `toml:"trace"`
}

type Compile struct {
	Jobs       int      `toml:"jobs"`
	Emit       string   `toml:"emit"`    // ir | msgpack | none
	Version    string   `toml:"version"` // operator-set version tag
	Namespaces []string `toml:"namespaces"`
}

type Ops struct {
	Libraries []string `toml:"libraries"`
	Cache     string   `toml:"cache"`
}

type Diagnostics struct {
	Format   string `toml:"format"` // pretty | short
	Max      int    `toml:"max"`
	Notes    bool   `toml:"notes"`
	Context  int8   `toml:"context"`
	PathMode string `toml:"path_mode"`
}

type Trace struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

var (
	emitModes   = []string{"ir", "msgpack", "none"}
	diagFormats = []string{"pretty", "short"}
)

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Root: ".",
		Compile: Compile{
			Emit: "ir",
		},
		Diagnostics: Diagnostics{
			Format:   "pretty",
			Max:      100,
			Notes:    true,
			Context:  1,
			PathMode: "auto",
		},
		Trace: Trace{
			Level:  "off",
			Mode:   "stream",
			Output: "stderr",
			Format: "auto",
		},
	}
}

// Find walks up from startDir looking for jitscript.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path over the defaults. Unknown keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("compile", "jobs") && cfg.Compile.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [compile].jobs must not be negative", path)
	}
	if !slices.Contains(emitModes, cfg.Compile.Emit) {
		return Config{}, fmt.Errorf("%s: [compile].emit must be one of %s", path, strings.Join(emitModes, "|"))
	}
	if !slices.Contains(diagFormats, cfg.Diagnostics.Format) {
		return Config{}, fmt.Errorf("%s: [diagnostics].format must be one of %s", path, strings.Join(diagFormats, "|"))
	}
	if meta.IsDefined("diagnostics", "max") && cfg.Diagnostics.Max <= 0 {
		return Config{}, fmt.Errorf("%s: [diagnostics].max must be positive", path)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Discover loads the nearest jitscript.toml above startDir, or returns the
// defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Resolve makes p absolute relative to the configuration root.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// Libraries returns the configured operator library paths, resolved.
func (c Config) Libraries() []string {
	out := make([]string, 0, len(c.Ops.Libraries))
	for _, l := range c.Ops.Libraries {
		out = append(out, c.Resolve(l))
	}
	return out
}

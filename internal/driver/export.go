package driver

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"jitscript/internal/compiler"
	"jitscript/internal/ir"
	"jitscript/internal/types"
)

// EmitMode selects what Export writes.
type EmitMode string

const (
	EmitIR      EmitMode = "ir"
	EmitMsgpack EmitMode = "msgpack"
	EmitNone    EmitMode = "none"
)

func ParseEmitMode(s string) (EmitMode, error) {
	switch m := EmitMode(s); m {
	case EmitIR, EmitMsgpack, EmitNone:
		return m, nil
	}
	return EmitNone, fmt.Errorf("invalid emit mode: %q (expected: ir|msgpack|none)", s)
}

const archiveSchema uint16 = 1

type archiveField struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

type archiveClass struct {
	Name   string         `msgpack:"name"`
	Fields []archiveField `msgpack:"fields"`
}

// archive bundles the graphs of a program with the class declarations their
// value types refer to.
type archive struct {
	Schema  uint16               `msgpack:"schema"`
	Classes []archiveClass       `msgpack:"classes"`
	Graphs  []msgpack.RawMessage `msgpack:"graphs"`
}

// Export writes the compiled graphs of prog in the requested form.
func Export(w io.Writer, prog *compiler.Program, mode EmitMode) error {
	switch mode {
	case EmitNone:
		return nil
	case EmitIR:
		for i, g := range prog.Graphs() {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := g.Dump(w); err != nil {
				return err
			}
		}
		return nil
	case EmitMsgpack:
		data, err := encodeArchive(prog)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown emit mode %q", mode)
}

func encodeArchive(prog *compiler.Program) ([]byte, error) {
	a := archive{Schema: archiveSchema}
	for _, m := range prog.Modules {
		info, ok := prog.Types.ClassInfo(m.Class)
		if !ok {
			return nil, fmt.Errorf("export: class %s not registered", m.Name)
		}
		c := archiveClass{Name: info.Name}
		for _, f := range info.Fields {
			c.Fields = append(c.Fields, archiveField{Name: f.Name, Type: prog.Types.Format(f.Type)})
		}
		a.Classes = append(a.Classes, c)
	}
	for _, g := range prog.Graphs() {
		data, err := ir.Encode(g)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", g.Name, err)
		}
		a.Graphs = append(a.Graphs, data)
	}
	return msgpack.Marshal(&a)
}

// ReadArchive decodes an Export(EmitMsgpack) stream. Classes are declared in
// in before the graphs are rebuilt.
func ReadArchive(data []byte, in *types.Interner) ([]*ir.Graph, error) {
	var a archive
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if a.Schema != archiveSchema {
		return nil, fmt.Errorf("read archive: schema %d, want %d", a.Schema, archiveSchema)
	}
	for _, c := range a.Classes {
		fields := make([]types.Field, 0, len(c.Fields))
		for _, f := range c.Fields {
			t, err := in.Parse(f.Type)
			if err != nil {
				return nil, fmt.Errorf("read archive: %s.%s: %w", c.Name, f.Name, err)
			}
			fields = append(fields, types.Field{Name: f.Name, Type: t})
		}
		if _, err := in.RegisterClass(c.Name, fields); err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}
	}
	out := make([]*ir.Graph, 0, len(a.Graphs))
	for _, raw := range a.Graphs {
		g, err := ir.Decode(raw, in)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

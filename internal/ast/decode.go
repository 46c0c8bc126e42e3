package ast

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"jitscript/internal/source"
)

// DecodeError points at the offending YAML node.
type DecodeError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *DecodeError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

type yamlBundle struct {
	File    string       `yaml:"file"`
	Source  string       `yaml:"source"`
	Modules []yamlModule `yaml:"modules"`
}

type yamlModule struct {
	Name    string       `yaml:"name"`
	At      []uint32     `yaml:"at,flow"`
	Fields  []yamlParam  `yaml:"fields"`
	Methods []yamlMethod `yaml:"methods"`
}

type yamlParam struct {
	Name string   `yaml:"name"`
	Type string   `yaml:"type"`
	At   []uint32 `yaml:"at,flow"`
}

type yamlMethod struct {
	Name    string      `yaml:"name"`
	At      []uint32    `yaml:"at,flow"`
	Params  []yamlParam `yaml:"params"`
	Returns string      `yaml:"returns"`
	Body    []yaml.Node `yaml:"body"`
}

type decoder struct {
	name   string
	file   source.FileID
	srcLen int
	b      *Bundle
}

// DecodeBundle reads the YAML interchange form of parsed scripted modules. The
// optional `source` text is registered in fs so diagnostics can quote it;
// `at: [start, end]` fields are byte offsets into it.
//
//	modules:
//	  - name: Net
//	    fields: [{name: weight, type: Tensor}]
//	    methods:
//	      - name: forward
//	        params: [{name: x, type: Tensor}]
//	        returns: Tensor
//	        body:
//	          - assign: y
//	            value: {call: torch.relu, args: [x]}
//	          - return: y
//
// In expression position a plain string is a dotted name path, numbers, true,
// false and null are constants, and mappings with a call, attr, str or tuple
// key build the corresponding node.
func DecodeBundle(r io.Reader, fs *source.FileSet, name string) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var yb yamlBundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&yb); err != nil && err != io.EOF {
		return nil, &DecodeError{File: name, Msg: err.Error()}
	}
	fileName := name
	if yb.File != "" {
		fileName = yb.File
	}
	d := &decoder{name: name, srcLen: len(yb.Source)}
	d.file = fs.AddVirtual(fileName, []byte(yb.Source))
	d.b = NewBundle(d.file)

	for _, ym := range yb.Modules {
		mod, err := d.module(ym)
		if err != nil {
			return nil, err
		}
		d.b.Modules = append(d.b.Modules, mod)
	}
	return d.b, nil
}

func (d *decoder) errf(n *yaml.Node, format string, args ...any) error {
	e := &DecodeError{File: d.name, Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Col = n.Line, n.Column
	}
	return e
}

func (d *decoder) span(at []uint32) (source.Span, error) {
	switch len(at) {
	case 0:
		return source.Span{File: d.file}, nil
	case 2:
		if at[1] < at[0] || (d.srcLen > 0 && int(at[1]) > d.srcLen) {
			return source.Span{}, &DecodeError{File: d.name, Msg: fmt.Sprintf("span [%d, %d] out of range", at[0], at[1])}
		}
		return source.Span{File: d.file, Start: at[0], End: at[1]}, nil
	}
	return source.Span{}, &DecodeError{File: d.name, Msg: "span must be [start, end]"}
}

func (d *decoder) ident(n *yaml.Node, raw string) (string, error) {
	id := norm.NFC.String(strings.TrimSpace(raw))
	if !isIdent(id) {
		return "", d.errf(n, "invalid identifier %q", raw)
	}
	return id, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func (d *decoder) module(ym yamlModule) (ModuleDecl, error) {
	var mod ModuleDecl
	var err error
	if mod.Name, err = d.ident(nil, ym.Name); err != nil {
		return mod, err
	}
	if mod.Span, err = d.span(ym.At); err != nil {
		return mod, err
	}
	for _, f := range ym.Fields {
		p, err := d.param(f)
		if err != nil {
			return mod, err
		}
		mod.Fields = append(mod.Fields, FieldDecl(p))
	}
	for _, ymeth := range ym.Methods {
		m, err := d.method(ymeth)
		if err != nil {
			return mod, fmt.Errorf("module %s: %w", mod.Name, err)
		}
		mod.Methods = append(mod.Methods, m)
	}
	return mod, nil
}

func (d *decoder) param(yp yamlParam) (Param, error) {
	var p Param
	var err error
	if p.Name, err = d.ident(nil, yp.Name); err != nil {
		return p, err
	}
	if strings.TrimSpace(yp.Type) == "" {
		return p, &DecodeError{File: d.name, Msg: fmt.Sprintf("%s: missing type", p.Name)}
	}
	p.Type = strings.TrimSpace(yp.Type)
	p.Span, err = d.span(yp.At)
	return p, err
}

func (d *decoder) method(ym yamlMethod) (MethodDecl, error) {
	var m MethodDecl
	var err error
	if m.Name, err = d.ident(nil, ym.Name); err != nil {
		return m, err
	}
	if m.Span, err = d.span(ym.At); err != nil {
		return m, err
	}
	m.Returns = strings.TrimSpace(ym.Returns)
	for _, yp := range ym.Params {
		p, err := d.param(yp)
		if err != nil {
			return m, err
		}
		m.Params = append(m.Params, p)
	}
	for i := range ym.Body {
		id, err := d.stmt(&ym.Body[i])
		if err != nil {
			return m, err
		}
		m.Body = append(m.Body, id)
	}
	return m, nil
}

// fields splits a mapping node into key -> value, rejecting keys not in allowed.
func (d *decoder) fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errf(n, "expected a mapping")
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		ok := false
		for _, a := range allowed {
			if a == key {
				ok = true
				break
			}
		}
		if !ok {
			return nil, d.errf(n.Content[i], "unexpected key %q", key)
		}
		out[key] = n.Content[i+1]
	}
	return out, nil
}

func (d *decoder) spanOf(f map[string]*yaml.Node) (source.Span, error) {
	at, ok := f["at"]
	if !ok {
		return source.Span{File: d.file}, nil
	}
	var raw []uint32
	if err := at.Decode(&raw); err != nil {
		return source.Span{}, d.errf(at, "bad span: %v", err)
	}
	return d.span(raw)
}

// cover widens sp to the spans of ids that carry a location of their own.
func (d *decoder) cover(sp source.Span, ids ...ExprID) source.Span {
	for _, id := range ids {
		if x := d.b.Exprs.Get(id); x != nil && !x.Span.Empty() {
			sp = sp.Cover(x.Span)
		}
	}
	return sp
}

func (d *decoder) stmt(n *yaml.Node) (StmtID, error) {
	f, err := d.fields(n, "assign", "value", "expr", "return", "at")
	if err != nil {
		return NoStmtID, err
	}
	sp, err := d.spanOf(f)
	if err != nil {
		return NoStmtID, err
	}
	switch {
	case f["assign"] != nil:
		targets, err := d.targets(f["assign"])
		if err != nil {
			return NoStmtID, err
		}
		if f["value"] == nil {
			return NoStmtID, d.errf(n, "assign without value")
		}
		val, err := d.expr(f["value"])
		if err != nil {
			return NoStmtID, err
		}
		if f["at"] == nil {
			sp = d.cover(sp, val)
		}
		spans := make([]source.Span, len(targets))
		for i := range spans {
			spans[i] = sp
		}
		return d.b.Stmts.NewAssign(sp, targets, spans, val), nil
	case f["expr"] != nil:
		x, err := d.expr(f["expr"])
		if err != nil {
			return NoStmtID, err
		}
		if f["at"] == nil {
			sp = d.cover(sp, x)
		}
		return d.b.Stmts.NewExpr(sp, x), nil
	case hasKey(n, "return"):
		val := NoExprID
		if rn := f["return"]; rn != nil && rn.Tag != "!!null" {
			if val, err = d.expr(rn); err != nil {
				return NoStmtID, err
			}
			if f["at"] == nil {
				sp = d.cover(sp, val)
			}
		}
		return d.b.Stmts.NewReturn(sp, val), nil
	}
	return NoStmtID, d.errf(n, "statement needs one of assign, expr, return")
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

func (d *decoder) targets(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		id, err := d.ident(n, n.Value)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			id, err := d.ident(c, c.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		if len(out) == 0 {
			return nil, d.errf(n, "empty assignment target list")
		}
		return out, nil
	}
	return nil, d.errf(n, "assignment targets must be a name or a list of names")
}

func (d *decoder) expr(n *yaml.Node) (ExprID, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.MappingNode:
		return d.compound(n)
	}
	return NoExprID, d.errf(n, "unsupported expression form")
}

func (d *decoder) scalar(n *yaml.Node) (ExprID, error) {
	sp := source.Span{File: d.file}
	switch n.Tag {
	case "!!null":
		return d.b.Exprs.NewConst(sp, ConstNone, "None"), nil
	case "!!bool":
		text := "False"
		if strings.EqualFold(n.Value, "true") {
			text = "True"
		}
		return d.b.Exprs.NewConst(sp, ConstBool, text), nil
	case "!!int":
		return d.b.Exprs.NewConst(sp, ConstInt, n.Value), nil
	case "!!float":
		return d.b.Exprs.NewConst(sp, ConstFloat, n.Value), nil
	}
	return d.path(n, sp, n.Value)
}

// path turns "a.b.c" into Attr(Attr(Name a, b), c).
func (d *decoder) path(n *yaml.Node, sp source.Span, text string) (ExprID, error) {
	parts := strings.Split(text, ".")
	root, err := d.ident(n, parts[0])
	if err != nil {
		return NoExprID, err
	}
	id := d.b.Exprs.NewName(sp, root)
	for _, p := range parts[1:] {
		field, err := d.ident(n, p)
		if err != nil {
			return NoExprID, err
		}
		id = d.b.Exprs.NewAttr(sp, id, field)
	}
	return id, nil
}

func (d *decoder) compound(n *yaml.Node) (ExprID, error) {
	f, err := d.fields(n, "call", "args", "kwargs", "attr", "of", "name", "str", "tuple", "at")
	if err != nil {
		return NoExprID, err
	}
	sp, err := d.spanOf(f)
	if err != nil {
		return NoExprID, err
	}
	switch {
	case f["call"] != nil:
		return d.call(f, sp)
	case f["attr"] != nil:
		if f["of"] == nil {
			return NoExprID, d.errf(n, "attr without of")
		}
		target, err := d.expr(f["of"])
		if err != nil {
			return NoExprID, err
		}
		field, err := d.ident(f["attr"], f["attr"].Value)
		if err != nil {
			return NoExprID, err
		}
		return d.b.Exprs.NewAttr(sp, target, field), nil
	case f["name"] != nil:
		return d.path(f["name"], sp, f["name"].Value)
	case f["str"] != nil:
		return d.b.Exprs.NewConst(sp, ConstStr, f["str"].Value), nil
	case f["tuple"] != nil:
		elems, err := d.exprList(f["tuple"])
		if err != nil {
			return NoExprID, err
		}
		if f["at"] == nil {
			sp = d.cover(sp, elems...)
		}
		return d.b.Exprs.NewTuple(sp, elems), nil
	}
	return NoExprID, d.errf(n, "expression needs one of call, attr, name, str, tuple")
}

func (d *decoder) call(f map[string]*yaml.Node, sp source.Span) (ExprID, error) {
	fn, err := d.expr(f["call"])
	if err != nil {
		return NoExprID, err
	}
	var args []ExprID
	if a := f["args"]; a != nil {
		if args, err = d.exprList(a); err != nil {
			return NoExprID, err
		}
	}
	var kwargs []KeywordArg
	if kw := f["kwargs"]; kw != nil {
		if kw.Kind != yaml.MappingNode {
			return NoExprID, d.errf(kw, "kwargs must be a mapping")
		}
		for i := 0; i+1 < len(kw.Content); i += 2 {
			name, err := d.ident(kw.Content[i], kw.Content[i].Value)
			if err != nil {
				return NoExprID, err
			}
			val, err := d.expr(kw.Content[i+1])
			if err != nil {
				return NoExprID, err
			}
			kwSpan := d.b.Exprs.Get(val).Span
			if kwSpan.Empty() {
				kwSpan = sp
			}
			kwargs = append(kwargs, KeywordArg{Name: name, Value: val, Span: kwSpan})
		}
	}
	if f["at"] == nil {
		sp = d.cover(sp, fn)
		sp = d.cover(sp, args...)
		for _, kw := range kwargs {
			sp = d.cover(sp, kw.Value)
		}
	}
	return d.b.Exprs.NewCall(sp, fn, args, kwargs), nil
}

func (d *decoder) exprList(n *yaml.Node) ([]ExprID, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errf(n, "expected a list")
	}
	out := make([]ExprID, 0, len(n.Content))
	for _, c := range n.Content {
		id, err := d.expr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

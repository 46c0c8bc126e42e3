package types

import (
	"fmt"
	"strings"
)

// Format renders id the way type annotations are written in scripts.
func (in *Interner) Format(id TypeID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	var sb strings.Builder
	in.format(&sb, id)
	return sb.String()
}

func (in *Interner) format(sb *strings.Builder, id TypeID) {
	tt, ok := in.lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindOptional, KindList, KindFuture:
		sb.WriteString(tt.Kind.String())
		sb.WriteByte('[')
		in.format(sb, tt.Elem)
		sb.WriteByte(']')
	case KindTuple:
		sb.WriteString("Tuple[")
		if info := in.tupleInfo(id); info != nil {
			for i, e := range info.Elems {
				if i > 0 {
					sb.WriteString(", ")
				}
				in.format(sb, e)
			}
		}
		sb.WriteByte(']')
	case KindClass:
		if info := in.classInfo(id); info != nil {
			sb.WriteString(info.Name)
			return
		}
		sb.WriteString("<class>")
	default:
		sb.WriteString(tt.Kind.String())
	}
}

// Parse resolves a type expression such as "Tensor", "int?",
// "Optional[Tensor]", "Tuple[int, Tensor]", "List[float]" or a declared
// class name.
func (in *Interner) Parse(src string) (TypeID, error) {
	p := typeParser{in: in, src: src}
	id, err := p.parse()
	if err != nil {
		return NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return NoTypeID, fmt.Errorf("type %q: unexpected %q", src, p.src[p.pos:])
	}
	return id, nil
}

type typeParser struct {
	in  *Interner
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) eat(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) parse() (TypeID, error) {
	id, err := p.parseAtom()
	if err != nil {
		return NoTypeID, err
	}
	for p.eat('?') {
		id = p.in.Optional(id)
	}
	return id, nil
}

func (p *typeParser) parseArgs() ([]TypeID, error) {
	if !p.eat('[') {
		return nil, fmt.Errorf("type %q: expected '[' at %d", p.src, p.pos)
	}
	var args []TypeID
	if p.eat(']') {
		return args, nil
	}
	for {
		arg, err := p.parse()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.eat(']') {
			return args, nil
		}
		if !p.eat(',') {
			return nil, fmt.Errorf("type %q: expected ',' or ']' at %d", p.src, p.pos)
		}
	}
}

func (p *typeParser) parseAtom() (TypeID, error) {
	name := p.ident()
	b := p.in.Builtins()
	switch name {
	case "":
		return NoTypeID, fmt.Errorf("type %q: expected type name at %d", p.src, p.pos)
	case "Any":
		return b.Any, nil
	case "None", "NoneType":
		return b.None, nil
	case "bool":
		return b.Bool, nil
	case "int":
		return b.Int, nil
	case "float":
		return b.Float, nil
	case "str":
		return b.Str, nil
	case "Tensor":
		return b.Tensor, nil
	case "Optional", "List", "Future":
		args, err := p.parseArgs()
		if err != nil {
			return NoTypeID, err
		}
		if len(args) != 1 {
			return NoTypeID, fmt.Errorf("type %q: %s takes exactly one argument", p.src, name)
		}
		switch name {
		case "Optional":
			return p.in.Optional(args[0]), nil
		case "List":
			return p.in.List(args[0]), nil
		default:
			return p.in.Future(args[0]), nil
		}
	case "Tuple":
		args, err := p.parseArgs()
		if err != nil {
			return NoTypeID, err
		}
		return p.in.Tuple(args), nil
	}
	if id, ok := p.in.ClassByName(name); ok {
		return id, nil
	}
	return NoTypeID, fmt.Errorf("unknown type %q", name)
}

package ops

import (
	"fmt"
	"strings"

	"jitscript/internal/symbols"
	"jitscript/internal/types"
)

// ParseSchema parses a signature such as
//
//	aten::max.dim(Tensor self, int dim, bool keepdim=False) -> (Tensor, Tensor)
//	aten::chunk(Tensor self, int chunks, int dim=0) -> Tensor...
//	aten::dropout(Tensor input, *, float p=0.5) -> Tensor
//
// Types are resolved through in, so class names must already be declared.
func ParseSchema(in *types.Interner, sig string) (*Schema, error) {
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		return nil, fmt.Errorf("schema %q: missing '('", sig)
	}
	closeIdx := matchParen(sig, open)
	if closeIdx < 0 {
		return nil, fmt.Errorf("schema %q: unbalanced parentheses", sig)
	}
	qual := strings.TrimSpace(sig[:open])
	overload := ""
	if dot := strings.LastIndexByte(qual, '.'); dot > strings.LastIndex(qual, "::") {
		qual, overload = qual[:dot], qual[dot+1:]
	}
	name, err := symbols.FromQualString(qual)
	if err != nil {
		return nil, err
	}
	s := &Schema{Name: name, Overload: overload}

	kwargOnly := false
	for _, raw := range splitTopLevel(sig[open+1 : closeIdx]) {
		if raw == "*" {
			kwargOnly = true
			continue
		}
		arg, err := parseArgument(in, raw)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", sig, err)
		}
		arg.KwargOnly = kwargOnly
		s.Args = append(s.Args, arg)
	}

	rest := strings.TrimSpace(sig[closeIdx+1:])
	if !strings.HasPrefix(rest, "->") {
		return nil, fmt.Errorf("schema %q: missing '->'", sig)
	}
	rest = strings.TrimSpace(rest[2:])
	switch {
	case strings.HasSuffix(rest, "..."):
		t, err := in.Parse(strings.TrimSpace(strings.TrimSuffix(rest, "...")))
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", sig, err)
		}
		s.Returns, s.VarRet = []types.TypeID{t}, true
	case strings.HasPrefix(rest, "("):
		end := matchParen(rest, 0)
		if end != len(rest)-1 {
			return nil, fmt.Errorf("schema %q: malformed return list", sig)
		}
		for _, r := range splitTopLevel(rest[1:end]) {
			t, err := in.Parse(r)
			if err != nil {
				return nil, fmt.Errorf("schema %q: %w", sig, err)
			}
			s.Returns = append(s.Returns, t)
		}
	default:
		t, err := in.Parse(rest)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", sig, err)
		}
		s.Returns = []types.TypeID{t}
	}
	return s, nil
}

func parseArgument(in *types.Interner, raw string) (Argument, error) {
	var arg Argument
	decl := raw
	if eq := strings.IndexByte(raw, '='); eq >= 0 {
		decl = strings.TrimSpace(raw[:eq])
		arg.Default = strings.TrimSpace(raw[eq+1:])
		arg.HasDefault = true
		if arg.Default == "" {
			return Argument{}, fmt.Errorf("argument %q: empty default", raw)
		}
	}
	sp := strings.LastIndexAny(decl, " \t")
	if sp < 0 {
		return Argument{}, fmt.Errorf("argument %q: expected 'Type name'", raw)
	}
	arg.Name = strings.TrimSpace(decl[sp+1:])
	t, err := in.Parse(strings.TrimSpace(decl[:sp]))
	if err != nil {
		return Argument{}, err
	}
	arg.Type = t
	return arg, nil
}

// matchParen returns the index of the parenthesis closing the one at open.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas outside brackets and parentheses.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		out = append(out, last)
	}
	return out
}

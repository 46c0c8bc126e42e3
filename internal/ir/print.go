package ir

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Dump writes the graph in a stable text form:
//
//	graph forward(%1 : Net, %2 : Tensor):
//	  %3 : Tensor = aten::relu(%2)
//	  return (%3)
func (g *Graph) Dump(w io.Writer) error {
	if w == nil || g == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %s(%s):\n", g.Name, g.formatParams(g.top.Inputs))
	g.dumpNodes(&sb, g.top, "  ")
	fmt.Fprintf(&sb, "  return (%s)\n", formatRefs(g.top.Outputs))
	_, err := io.WriteString(w, sb.String())
	return err
}

// String is Dump into a string.
func (g *Graph) String() string {
	var sb strings.Builder
	if err := g.Dump(&sb); err != nil {
		return "<dump error: " + err.Error() + ">"
	}
	return sb.String()
}

func (g *Graph) dumpNodes(sb *strings.Builder, b *Block, indent string) {
	for _, n := range b.Nodes {
		sb.WriteString(indent)
		if len(n.Outputs) > 0 {
			sb.WriteString(g.formatParams(n.Outputs))
			sb.WriteString(" = ")
		}
		sb.WriteString(n.Kind.String())
		if len(n.Attrs) > 0 {
			sb.WriteString(formatAttrs(n.Attrs))
		}
		fmt.Fprintf(sb, "(%s)\n", formatRefs(n.Inputs))
		if n.Block != nil {
			fmt.Fprintf(sb, "%s  block(%s):\n", indent, g.formatParams(n.Block.Inputs))
			g.dumpNodes(sb, n.Block, indent+"    ")
			fmt.Fprintf(sb, "%s    -> (%s)\n", indent, formatRefs(n.Block.Outputs))
		}
	}
}

func (g *Graph) formatParams(vals []*Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%s : %s", ref(v), g.types.Format(v.typ))
	}
	return strings.Join(parts, ", ")
}

func formatRefs(vals []*Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = ref(v)
	}
	return strings.Join(parts, ", ")
}

func ref(v *Value) string {
	if v == nil {
		return "%<nil>"
	}
	if v.name != "" {
		return fmt.Sprintf("%%%s.%d", v.name, v.id)
	}
	return fmt.Sprintf("%%%d", v.id)
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, attrs[k])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

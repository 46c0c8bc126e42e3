package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jitscript/internal/diag"
	"jitscript/internal/source"
)

type palette struct {
	sev    map[diag.Severity]lipgloss.Style
	gutter lipgloss.Style
	caret  lipgloss.Style
	note   lipgloss.Style
	on     bool
}

func newPalette(color bool) palette {
	return palette{
		sev: map[diag.Severity]lipgloss.Style{
			diag.SevError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			diag.SevWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			diag.SevInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		},
		gutter: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		caret:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		note:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		on:     color,
	}
}

func (p palette) render(st lipgloss.Style, s string) string {
	if !p.on {
		return s
	}
	return st.Render(s)
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	ERROR SUG4005: message
//	  --> path:line:col
//	   |
//	 2 |     return torch.relu(x, x)
//	   |            ^~~~~~~~~~~~~~~~
//	   = note: ...
//
// Диагностики печатаются в порядке bag.Items(); сортировка на вызывающем.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := prettyOne(w, d, fs, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) error {
	var sb strings.Builder
	head := fmt.Sprintf("%s %s", d.Severity, d.Code.ID())
	fmt.Fprintf(&sb, "%s: %s\n", pal.render(pal.sev[d.Severity], head), d.Message)

	f := fs.Get(d.Primary.File)
	if f == nil {
		// нет исходника: только заголовок и заметки
		writeNotes(&sb, d, fs, opts, pal, "")
		_, err := io.WriteString(w, sb.String())
		return err
	}
	start, end := fs.Resolve(d.Primary)
	gutterWidth := len(strconv.FormatUint(uint64(start.Line), 10))
	pad := strings.Repeat(" ", gutterWidth)
	bar := pal.render(pal.gutter, "|")

	fmt.Fprintf(&sb, "%s%s %s:%d:%d\n", pad, pal.render(pal.gutter, "-->"), displayPath(f.Path, opts.PathMode), start.Line, start.Col)
	fmt.Fprintf(&sb, "%s %s\n", pad, bar)
	first := start.Line
	if ctx := uint32(max(opts.Context, 0)); first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	for ln := first; ln <= start.Line; ln++ {
		num := fmt.Sprintf("%*d", gutterWidth, ln)
		fmt.Fprintf(&sb, "%s %s %s\n", pal.render(pal.gutter, num), bar, expandTabs(f.Line(ln)))
	}

	line := f.Line(start.Line)
	lead, width := caretGeometry(line, start, end)
	marks := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(&sb, "%s %s %s%s\n", pad, bar, strings.Repeat(" ", lead), pal.render(pal.caret, marks))

	writeNotes(&sb, d, fs, opts, pal, pad)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeNotes(sb *strings.Builder, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette, pad string) {
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		loc := ""
		if f := fs.Get(n.Span.File); f != nil && n.Span != d.Primary && n.Span.End > n.Span.Start {
			p, _ := fs.Resolve(n.Span)
			loc = fmt.Sprintf(" (%s:%d:%d)", displayPath(f.Path, opts.PathMode), p.Line, p.Col)
		}
		fmt.Fprintf(sb, "%s %s %s%s\n", pad, pal.render(pal.note, "= note:"), n.Msg, loc)
	}
}

// caretGeometry returns the display offset of the span start within line and
// the display width of the underlined part (at least 1). Spans that run past
// the line are cut at its end.
func caretGeometry(line string, start, end source.LineCol) (lead, width int) {
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	lead = runewidth.StringWidth(expandTabs(line[:from]))
	width = max(runewidth.StringWidth(expandTabs(line[from:to])), 1)
	return lead, width
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func displayPath(p string, mode PathMode) string {
	if mode == PathModeBasename {
		return filepath.Base(p)
	}
	return p
}

package diagfmt

import (
	"fmt"
	"io"

	"jitscript/internal/diag"
	"jitscript/internal/source"
)

// Short prints one line per diagnostic: path:line:col: SEV CODE: message.
// Notes follow on indented lines when opts.ShowNotes is set.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	for _, d := range bag.Items() {
		loc := "<unknown>"
		if f := fs.Get(d.Primary.File); f != nil {
			p, _ := fs.Resolve(d.Primary)
			loc = fmt.Sprintf("%s:%d:%d", displayPath(f.Path, opts.PathMode), p.Line, p.Col)
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, d.Severity, d.Code.ID(), d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "    note: %s\n", n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

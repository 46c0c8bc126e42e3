package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file of a FileSet.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// NoSpan marks diagnostics that come from options or configuration rather
// than from a file; FileSet.Get returns nil for it.
var NoSpan = Span{File: NoFile}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) String() string {
	if s.File == NoFile {
		return "-"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other. An empty
// span at offset zero is a placeholder and yields other; spans from
// different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if s.Empty() && s.Start == 0 {
		return other
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}

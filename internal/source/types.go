package source

import "math"

type (
	// FileID identifies a file within a FileSet.
	FileID uint32
	// FileFlags records what Load did to the bytes on disk.
	FileFlags uint8
)

// NoFile never names a file; see NoSpan.
const NoFile FileID = math.MaxUint32

const (
	FileVirtual FileFlags = 1 << iota // bundle passed in memory
	FileHadBOM
	FileNormalizedCRLF
)

// File is one bundle or operator library as seen by diagnostics. Offsets in
// spans index Content after BOM removal and CRLF normalization.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Flags   FileFlags
}

// LineCol is a 1-based position; Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

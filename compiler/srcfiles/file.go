package srcfiles

import (
	"bytes"
	"slices"
)

// File is one named source within a List.  Offsets passed to its methods
// are offsets into the List's text.
type File struct {
	Name  string
	start int
	size  int
	// lines holds the local offset at which each line begins.
	lines []int
}

func newFile(name string, start int, src []byte) File {
	lines := []int{0}
	for off := 0; ; {
		k := bytes.IndexByte(src[off:], '\n')
		if k < 0 || off+k+1 >= len(src) {
			break
		}
		off += k + 1
		lines = append(lines, off)
	}
	return File{Name: name, start: start, size: len(src), lines: lines}
}

// line returns the 0-based index of the line holding local offset off.
func (f File) line(off int) int {
	k, found := slices.BinarySearch(f.lines, off)
	if !found {
		k--
	}
	return max(k, 0)
}

// Position resolves pos.  A negative pos yields an invalid Position.
func (f File) Position(pos int) Position {
	if pos < 0 {
		return Position{Pos: -1, Offset: -1, Line: -1, Column: -1}
	}
	off := pos - f.start
	k := f.line(off)
	return Position{Pos: pos, Offset: off, Line: k + 1, Column: off - f.lines[k] + 1}
}

// LineOfPos returns the text of the line holding pos without its newline.
// text is the List's text.
func (f File) LineOfPos(text string, pos int) string {
	k := f.line(pos - f.start)
	begin, end := f.lines[k], f.size
	if k+1 < len(f.lines) {
		end = f.lines[k+1]
	}
	end = min(end, len(text)-f.start)
	if begin >= end {
		return ""
	}
	line := text[f.start+begin : f.start+end]
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	return line
}

type Position struct {
	Pos    int `json:"pos"`    // offset in List.Text
	Offset int `json:"offset"` // offset in the file
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) IsValid() bool { return p.Pos >= 0 }

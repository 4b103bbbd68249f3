// Package srcfiles maps byte offsets in Lumen source text back to file
// names, lines, and columns for error reporting.
package srcfiles

import (
	"sort"
	"strings"
)

// List is the concatenation of one or more named source texts.  Offsets
// into Text identify a file and a position within it.
type List struct {
	Text   string
	Files  []File
	errors ErrorList
}

// New returns a List holding the single source src.
func New(name string, src []byte) *List {
	var l List
	l.Add(name, src)
	return &l
}

// Add appends src under name, separated from any previous source by a
// newline, and returns the offset of its first byte in l.Text.
func (l *List) Add(name string, src []byte) int {
	var b strings.Builder
	b.WriteString(l.Text)
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	start := b.Len()
	b.Write(src)
	l.Text = b.String()
	l.Files = append(l.Files, newFile(name, start, src))
	return start
}

func (l *List) AddError(msg string, pos, end int) {
	l.errors.Append(l, msg, pos, end)
}

func (l *List) Error() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l.errors
}

func (l *List) FileOf(pos int) File {
	i := sort.Search(len(l.Files), func(i int) bool { return l.Files[i].start > pos }) - 1
	if i < 0 {
		i = 0
	}
	return l.Files[i]
}

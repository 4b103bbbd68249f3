package srcfiles

import (
	"fmt"
	"strings"
)

// ErrorList holds the syntax errors found in the sources of a List, in
// the order they were reported.
type ErrorList []*Error

func (e *ErrorList) Append(list *List, msg string, pos, end int) {
	*e = append(*e, &Error{Msg: msg, Pos: pos, End: end, list: list})
}

func (e ErrorList) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Diagnostics returns the errors of e located within their files.
func (e ErrorList) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(e))
	for _, err := range e {
		out = append(out, err.Diagnostic())
	}
	return out
}

// Diagnostic is a syntax error resolved to a file, line, and column.
type Diagnostic struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Msg    string `json:"msg"`
}

// String formats d as "file:line:column: msg".  Missing parts are left
// out.
func (d Diagnostic) String() string {
	var loc []string
	if d.File != "" {
		loc = append(loc, d.File)
	}
	if d.Line > 0 {
		loc = append(loc, fmt.Sprint(d.Line), fmt.Sprint(d.Column))
	}
	if len(loc) == 0 {
		return d.Msg
	}
	return strings.Join(loc, ":") + ": " + d.Msg
}

// Error is a syntax error at offset Pos of a List's text.  End is the
// offset of the last offending byte or negative for a point error.
type Error struct {
	Msg  string
	Pos  int
	End  int
	list *List
}

func (e *Error) Diagnostic() Diagnostic {
	if e.list == nil {
		return Diagnostic{Msg: e.Msg}
	}
	file := e.list.FileOf(e.Pos)
	pos := file.Position(e.Pos)
	if !pos.IsValid() {
		return Diagnostic{File: file.Name, Msg: e.Msg}
	}
	return Diagnostic{
		File:   file.Name,
		Line:   pos.Line,
		Column: pos.Column,
		Msg:    e.Msg,
	}
}

// Error renders e with the offending source line beneath it, e.g.,
//
//	prog.lm:2:5: expected identifier, found "="
//	    2 | let = 2
//	      |     ^
func (e *Error) Error() string {
	d := e.Diagnostic()
	if d.Line == 0 {
		return d.String()
	}
	file := e.list.FileOf(e.Pos)
	line := file.LineOfPos(e.list.Text, e.Pos)
	var b strings.Builder
	b.WriteString(d.String())
	fmt.Fprintf(&b, "\n%5d | %s\n%5s | ", d.Line, line, "")
	b.WriteString(strings.Repeat(" ", d.Column-1))
	b.WriteByte('^')
	if end := file.Position(e.End); end.IsValid() && end.Pos > e.Pos {
		n := end.Column - d.Column
		if end.Line != d.Line {
			n = len(line) - d.Column
		}
		b.WriteString(strings.Repeat("~", max(n, 0)))
	}
	return b.String()
}

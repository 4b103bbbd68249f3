package srcfiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositions(t *testing.T) {
	l := New("a.lm", []byte("let x = 1\nlet y = ?\n"))
	off := l.Add("b.lm", []byte("x"))
	assert.Equal(t, 21, off)

	f := l.FileOf(18)
	assert.Equal(t, "a.lm", f.Name)
	pos := f.Position(18)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 9, pos.Column)
	assert.Equal(t, "let y = ?", f.LineOfPos(l.Text, 18))

	assert.Equal(t, "b.lm", l.FileOf(off).Name)
	assert.Equal(t, 1, l.FileOf(off).Position(off).Column)
}

func TestErrorCaret(t *testing.T) {
	l := New("a.lm", []byte("let y = ?"))
	l.AddError("unexpected character", 8, -1)
	err := l.Error()
	require.Error(t, err)
	expected := "a.lm:1:9: unexpected character\n    1 | let y = ?\n      |         ^"
	assert.Equal(t, expected, err.Error())
}

func TestErrorSpan(t *testing.T) {
	l := New("", []byte("let yy = ?"))
	l.AddError("bad name", 4, 5)
	expected := "1:5: bad name\n    1 | let yy = ?\n      |     ^~"
	assert.Equal(t, expected, l.Error().Error())
}

func TestDiagnostics(t *testing.T) {
	l := New("a.lm", []byte("let x = 1"))
	off := l.Add("b.lm", []byte("\nlet = 2"))
	l.AddError("expected identifier", off+5, -1)
	l.AddError("no position", -1, -1)
	var list ErrorList
	require.ErrorAs(t, l.Error(), &list)
	assert.Equal(t, []Diagnostic{
		{File: "b.lm", Line: 2, Column: 5, Msg: "expected identifier"},
		{File: "a.lm", Msg: "no position"},
	}, list.Diagnostics())
	assert.Equal(t, "a.lm: no position", list[1].Error())
}

func TestEmptySource(t *testing.T) {
	l := New("", nil)
	pos := l.FileOf(0).Position(0)
	assert.Equal(t, 1, pos.Line)
	assert.Equal(t, "", l.FileOf(0).LineOfPos(l.Text, 0))
}

package edit

import (
	"testing"

	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/compiler/sfmt"
	"github.com/colin-oos/lumen-sub000/compiler/sid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := parser.Parse("", []byte(src))
	require.NoError(t, err)
	sid.Assign(p)
	return p
}

func TestFind(t *testing.T) {
	p := parse(t, "fn add(a, b) = a + b\nadd(1, 2)\n")
	call := p.Decls[1].(*ast.Call)
	two := call.Args[1]
	assert.Same(t, two, Find(p, sid.Of(two)))
	assert.Nil(t, Find(p, "0000000000000000"))
}

func TestReplace(t *testing.T) {
	p := parse(t, "fn add(a, b) = a + b\nadd(1, 2)\n")
	before := sfmt.Program(p)
	rootSid := sid.Of(p)
	fn := p.Decls[0]
	two := p.Decls[1].(*ast.Call).Args[1]

	with, err := parser.ParseExpr("40 + 2")
	require.NoError(t, err)
	out, ok := ReplaceAndStamp(p, sid.Of(two), with)
	require.True(t, ok)

	assert.Equal(t, "fn add(a, b) = a + b\nadd(1, 40 + 2)\n", sfmt.Program(out.(*ast.Program)))
	assert.NotEqual(t, rootSid, sid.Of(out))
	assert.Same(t, fn, out.(*ast.Program).Decls[0], "untouched declarations are shared")
	assert.Equal(t, before, sfmt.Program(p), "original program is unchanged")
}

func TestReplaceSurvivesReformatting(t *testing.T) {
	p := parse(t, "let   x = ( 1 +   2 )\nx\n")
	target := p.Decls[0].(*ast.Let).Value
	id := sid.Of(target)

	reformatted := parse(t, sfmt.Program(p))
	with, err := parser.ParseExpr("3")
	require.NoError(t, err)
	out, ok := ReplaceAndStamp(reformatted, id, with)
	require.True(t, ok)
	assert.Equal(t, "let x = 3\nx\n", sfmt.Program(out.(*ast.Program)))
}

func TestReplaceMissing(t *testing.T) {
	p := parse(t, "1\n")
	out, ok := Replace(p, "nope", &ast.LitNum{Kind: "LitNum", Value: 2})
	assert.False(t, ok)
	assert.Same(t, ast.Expr(p), out)
}

package ast_test

import (
	"encoding/json"
	"testing"

	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(n int64) *ast.LitNum {
	return &ast.LitNum{Kind: "LitNum", Value: n}
}

func TestJSONRoundTrip(t *testing.T) {
	timeout := int64(10)
	prog := &ast.Program{
		Kind: "Program",
		Decls: []ast.Expr{
			&ast.Fn{
				Kind:    "Fn",
				Name:    "f",
				Params:  []ast.Param{{Name: "x", Type: "Int"}},
				Body:    &ast.Binary{Kind: "Binary", Op: "+", LHS: &ast.Var{Kind: "Var", Name: "x"}, RHS: num(1)},
				Effects: []string{"io"},
			},
			&ast.Ask{Kind: "Ask", Actor: &ast.LitText{Kind: "LitText", Value: "A"}, Message: num(1), Timeout: &timeout},
		},
		Stamp: ast.Stamp{Sid: "abc"},
		Loc:   ast.NewLoc(0, 20),
	}
	b, err := json.Marshal(prog)
	require.NoError(t, err)
	out, err := ast.UnmarshalProgram(b)
	require.NoError(t, err)
	assert.Equal(t, prog, out)
}

func TestChildrenOrder(t *testing.T) {
	m := &ast.Match{
		Kind:      "Match",
		Scrutinee: num(1),
		Cases: []ast.Case{
			{Pattern: num(2), Guard: num(3), Body: num(4)},
			{Pattern: num(5), Body: num(6)},
		},
	}
	var vals []int64
	for _, c := range ast.Children(m) {
		vals = append(vals, c.(*ast.LitNum).Value)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, vals)
}

func TestRewriteSharesUntouched(t *testing.T) {
	left := &ast.Binary{Kind: "Binary", Op: "*", LHS: num(2), RHS: num(3)}
	target := num(4)
	root := &ast.Binary{Kind: "Binary", Op: "+", LHS: left, RHS: target}
	out := ast.Rewrite(root, func(e ast.Expr) ast.Expr {
		if e == target {
			return num(5)
		}
		return e
	})
	b, ok := out.(*ast.Binary)
	require.True(t, ok)
	assert.NotSame(t, root, b)
	assert.Same(t, left, b.LHS)
	assert.Equal(t, int64(5), b.RHS.(*ast.LitNum).Value)
	assert.Equal(t, int64(4), root.RHS.(*ast.LitNum).Value)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "ActorDeclNew", ast.KindOf(&ast.ActorDeclNew{}))
	assert.Equal(t, "", ast.KindOf(nil))
}

package ast

import (
	"encoding/json"
	"fmt"

	"github.com/colin-oos/lumen-sub000/pkg/unpack"
)

var unpacker = unpack.New(
	LitNum{},
	LitFloat{},
	LitText{},
	LitBool{},
	LitNull{},
	Var{},
	Let{},
	Assign{},
	Fn{},
	Call{},
	Unary{},
	Binary{},
	If{},
	Block{},
	Match{},
	Ctor{},
	RecordLit{},
	TupleLit{},
	ListLit{},
	PatternOr{},
	EffectCall{},
	Program{},
	ModuleDecl{},
	EffectDecl{},
	EnumDecl{},
	ActorDecl{},
	ActorDeclNew{},
	Spawn{},
	Send{},
	Ask{},
	StoreDecl{},
	QueryDecl{},
)

// UnmarshalExpr transforms the JSON representation of a node (as produced
// by encoding/json from an Expr) back into an Expr.
func UnmarshalExpr(buf []byte) (Expr, error) {
	var e Expr
	if err := unpacker.Unmarshal(buf, &e); err != nil {
		return nil, err
	}
	return e, nil
}

// UnmarshalProgram is like UnmarshalExpr but requires a Program at the root.
func UnmarshalProgram(buf []byte) (*Program, error) {
	e, err := UnmarshalExpr(buf)
	if err != nil {
		return nil, err
	}
	p, ok := e.(*Program)
	if !ok {
		return nil, fmt.Errorf("ast: expected Program, found %s", KindOf(e))
	}
	return p, nil
}

func Copy(in Expr) Expr {
	b, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	out, err := UnmarshalExpr(b)
	if err != nil {
		panic(err)
	}
	return out
}

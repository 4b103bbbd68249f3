// Package sid computes the content-derived identity of syntax tree nodes.
//
// A node's Sid is the first 16 hex digits of the SHA-256 of a signature
// built from the node's kind, its literal payload, and the Sids of its
// children.  Children are stamped first, so each signature embeds already
// computed Sids and stamping a tree is linear in its size.  Source
// locations are not part of the signature: reformatting a program leaves
// its Sids unchanged, while any change to a literal or to the order of a
// child list changes the Sid of that node and of every ancestor.
package sid

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"golang.org/x/text/unicode/norm"
)

// Assign stamps e and all of its descendants and returns the Sid of e.
// Existing stamps are recomputed, so Assign may be called again after a
// tree has been edited.
func Assign(e ast.Expr) string {
	if e == nil {
		return ""
	}
	var s signature
	s.build(e)
	sid := s.sum()
	e.SetSID(sid)
	return sid
}

// Of returns the Sid stamped on e, or the empty string if e is nil or
// has not been stamped.
func Of(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return e.SID()
}

type signature struct {
	strings.Builder
}

func (s *signature) sum() string {
	h := sha256.Sum256([]byte(s.String()))
	return hex.EncodeToString(h[:8])
}

func (s *signature) word(w string) {
	s.WriteString(w)
	s.WriteByte('|')
}

// text writes arbitrary user text quoted so that separators inside it
// cannot collide with the structure of the signature.
func (s *signature) text(t string) {
	s.word(strconv.Quote(norm.NFC.String(t)))
}

func (s *signature) child(e ast.Expr) {
	if e == nil {
		s.word("-")
		return
	}
	s.word(Assign(e))
}

func (s *signature) children(exprs []ast.Expr) {
	s.word("[" + strconv.Itoa(len(exprs)))
	for _, e := range exprs {
		s.child(e)
	}
	s.word("]")
}

func (s *signature) effects(effects []string) {
	sorted := slices.Clone(effects)
	slices.Sort(sorted)
	s.word("{" + strconv.Itoa(len(sorted)))
	for _, e := range sorted {
		s.text(e)
	}
	s.word("}")
}

func (s *signature) param(p *ast.Param) {
	if p == nil {
		s.word("-")
		return
	}
	s.text(p.Name)
	s.text(p.Type)
}

func (s *signature) build(e ast.Expr) {
	s.word(ast.KindOf(e))
	switch e := e.(type) {
	case *ast.LitNum:
		s.word(strconv.FormatInt(e.Value, 10))
	case *ast.LitFloat:
		s.word(strconv.FormatFloat(e.Value, 'g', -1, 64))
	case *ast.LitText:
		s.text(e.Value)
	case *ast.LitBool:
		s.word(strconv.FormatBool(e.Value))
	case *ast.LitNull:
	case *ast.Var:
		s.text(e.Name)
	case *ast.Let:
		s.text(e.Name)
		s.child(e.Value)
		s.child(e.Body)
	case *ast.Assign:
		s.text(e.Name)
		s.child(e.Value)
	case *ast.Fn:
		s.text(e.Name)
		s.word("(" + strconv.Itoa(len(e.Params)))
		for k := range e.Params {
			s.param(&e.Params[k])
		}
		s.text(e.Ret)
		s.effects(e.Effects)
		s.child(e.Body)
	case *ast.Call:
		s.child(e.Callee)
		s.children(e.Args)
	case *ast.Unary:
		s.word(e.Op)
		s.child(e.Operand)
	case *ast.Binary:
		s.word(e.Op)
		s.child(e.LHS)
		s.child(e.RHS)
	case *ast.If:
		s.child(e.Cond)
		s.child(e.Then)
		s.child(e.Else)
	case *ast.Block:
		s.children(e.Stmts)
	case *ast.Match:
		s.child(e.Scrutinee)
		s.word("[" + strconv.Itoa(len(e.Cases)))
		for _, c := range e.Cases {
			s.child(c.Pattern)
			s.child(c.Guard)
			s.child(c.Body)
		}
	case *ast.Ctor:
		s.text(e.Name)
		s.children(e.Args)
	case *ast.RecordLit:
		s.word("{" + strconv.Itoa(len(e.Fields)))
		for _, f := range e.Fields {
			s.text(f.Name)
			s.child(f.Value)
		}
	case *ast.TupleLit:
		s.children(e.Elems)
	case *ast.ListLit:
		s.children(e.Elems)
	case *ast.PatternOr:
		s.child(e.Left)
		s.child(e.Right)
	case *ast.EffectCall:
		s.text(e.Effect)
		s.text(e.Op)
		s.children(e.Args)
	case *ast.Program:
		s.children(e.Decls)
	case *ast.ModuleDecl:
		s.text(e.Name)
	case *ast.EffectDecl:
		s.text(e.Name)
	case *ast.EnumDecl:
		s.text(e.Name)
		s.word("[" + strconv.Itoa(len(e.Variants)))
		for _, v := range e.Variants {
			s.text(v.Name)
			s.word("(" + strconv.Itoa(len(v.Params)))
			for _, p := range v.Params {
				s.text(p)
			}
		}
	case *ast.ActorDecl:
		s.text(e.Name)
		s.param(e.Param)
		s.effects(e.Effects)
		s.child(e.Body)
	case *ast.ActorDeclNew:
		s.text(e.Name)
		s.effects(e.Effects)
		s.word("[" + strconv.Itoa(len(e.State)))
		for _, slot := range e.State {
			s.text(slot.Name)
			s.text(slot.Type)
			s.child(slot.Init)
		}
		s.word("[" + strconv.Itoa(len(e.Handlers)))
		for _, h := range e.Handlers {
			s.child(h.Pattern)
			s.child(h.Guard)
			s.text(h.Reply)
			s.child(h.Body)
		}
	case *ast.Spawn:
		s.text(e.Actor)
	case *ast.Send:
		s.child(e.Actor)
		s.child(e.Message)
	case *ast.Ask:
		s.child(e.Actor)
		s.child(e.Message)
		if e.Timeout != nil {
			s.word(strconv.FormatInt(*e.Timeout, 10))
		} else {
			s.word("-")
		}
	case *ast.StoreDecl:
		s.text(e.Name)
		s.text(e.Schema)
		s.text(e.Config)
	case *ast.QueryDecl:
		s.text(e.Name)
		s.text(e.Source)
		s.child(e.Where)
		s.word("[" + strconv.Itoa(len(e.Select)))
		for _, f := range e.Select {
			s.text(f)
		}
	}
}

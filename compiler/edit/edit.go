// Package edit changes programs by node identity.  A Sid names a node by
// its content rather than its position, so an edit computed against one
// rendering of a program applies to any reformatting of it.
package edit

import (
	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/sid"
)

// Find returns the first node in pre-order whose Sid is id, or nil.
// The tree must be stamped.
func Find(root ast.Expr, id string) ast.Expr {
	var found ast.Expr
	ast.Walk(root, func(e ast.Expr) bool {
		if found != nil {
			return false
		}
		if sid.Of(e) == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// Replace returns a copy of root in which every node whose Sid is id has
// been replaced by with.  Identical subtrees share a Sid, so all of them
// are replaced.  Subtrees not containing a match are shared with root,
// which is left unmodified.  The result is not stamped; callers stamp it
// with sid.Assign.  The boolean reports whether any node matched.
func Replace(root ast.Expr, id string, with ast.Expr) (ast.Expr, bool) {
	var ok bool
	out := ast.Rewrite(root, func(e ast.Expr) ast.Expr {
		if sid.Of(e) == id {
			ok = true
			return with
		}
		return e
	})
	return out, ok
}

// ReplaceAndStamp is Replace followed by sid.Assign on the result.
func ReplaceAndStamp(root ast.Expr, id string, with ast.Expr) (ast.Expr, bool) {
	out, ok := Replace(root, id, with)
	if ok {
		sid.Assign(out)
	}
	return out, ok
}

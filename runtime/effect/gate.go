// Package effect implements the capability gate consulted before every
// effectful call.  An effect is allowed when it is not denied outright
// and, inside an actor body, when the actor declares it.
package effect

import (
	"slices"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
)

type Gate struct {
	denied  map[string]struct{}
	ambient []map[string]struct{}
}

func NewGate(denied []string) *Gate {
	return &Gate{denied: toSet(denied)}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Denied returns the deny-set in sorted order.
func (g *Gate) Denied() []string {
	out := make([]string, 0, len(g.denied))
	for name := range g.denied {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Allowed reports whether effect may be used at this point.
func (g *Gate) Allowed(effect string) bool {
	if _, ok := g.denied[effect]; ok {
		return false
	}
	if n := len(g.ambient); n > 0 {
		_, ok := g.ambient[n-1][effect]
		return ok
	}
	return true
}

// Check returns a DeniedEffect signal if effect may not be used, or nil.
func (g *Gate) Check(effect string) *lumen.DeniedEffect {
	if g.Allowed(effect) {
		return nil
	}
	return &lumen.DeniedEffect{Effect: effect}
}

// CheckSet is like Check for the declared effects of a callee.  The first
// refused effect in sorted order is reported.
func (g *Gate) CheckSet(effects []string) *lumen.DeniedEffect {
	if len(effects) == 0 {
		return nil
	}
	sorted := slices.Clone(effects)
	slices.Sort(sorted)
	for _, e := range sorted {
		if d := g.Check(e); d != nil {
			return d
		}
	}
	return nil
}

// Push makes effects the ambient set until the matching Pop.  Ambient
// sets do not nest: an inner set replaces the outer one.
func (g *Gate) Push(effects []string) {
	g.ambient = append(g.ambient, toSet(effects))
}

func (g *Gate) Pop() {
	if n := len(g.ambient); n > 0 {
		g.ambient = g.ambient[:n-1]
	}
}

// Depth returns the number of ambient sets pushed.
func (g *Gate) Depth() int {
	return len(g.ambient)
}

// IsPure reports whether e contains no effect call anywhere in its tree.
func IsPure(e ast.Expr) bool {
	pure := true
	ast.Walk(e, func(n ast.Expr) bool {
		if _, ok := n.(*ast.EffectCall); ok {
			pure = false
		}
		return pure
	})
	return pure
}

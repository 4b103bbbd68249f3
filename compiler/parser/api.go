// Package parser turns Lumen source text into syntax trees.
package parser

import (
	"errors"

	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/srcfiles"
)

type AST struct {
	prog  *ast.Program
	files *srcfiles.List
}

func (a *AST) Parsed() *ast.Program {
	return a.prog
}

func (a *AST) Copy() *ast.Program {
	return ast.Copy(a.prog).(*ast.Program)
}

func (a *AST) Files() *srcfiles.List {
	return a.files
}

// ParseProgram parses src, naming it name in error messages.  Effects
// lists custom effects declared elsewhere (e.g., in other files of the
// same program) so that calls to them parse as effect calls.
func ParseProgram(name string, src []byte, effects ...string) (*AST, error) {
	files := srcfiles.New(name, src)
	var prog *ast.Program
	err := run(files, src, effects, func(p *parser) {
		prog = p.program()
	})
	if err != nil {
		return nil, err
	}
	return &AST{prog, files}, nil
}

// Parse is like ParseProgram but returns only the tree.
func Parse(name string, src []byte, effects ...string) (*ast.Program, error) {
	a, err := ParseProgram(name, src, effects...)
	if err != nil {
		return nil, err
	}
	return a.Parsed(), nil
}

// ParseExpr parses a single statement or declaration, as used for program
// edits and interactive input.
func ParseExpr(src string, effects ...string) (ast.Expr, error) {
	files := srcfiles.New("", []byte(src))
	var e ast.Expr
	err := run(files, []byte(src), effects, func(p *parser) {
		p.skipSeparators()
		e = p.decl()
		p.skipSeparators()
		if p.tok != tokEOF {
			p.errorf("unexpected %s after expression", p.describe())
		}
	})
	return e, err
}

func run(files *srcfiles.List, src []byte, effects []string, f func(*parser)) (err error) {
	items, err := scan(src, 0)
	if err != nil {
		return convertParseErr(err, files)
	}
	defer func() {
		if r := recover(); r != nil {
			serr, ok := r.(*syntaxError)
			if !ok {
				panic(r)
			}
			err = convertParseErr(serr, files)
		}
	}()
	f(newParser(items, effects))
	return nil
}

func convertParseErr(err error, files *srcfiles.List) error {
	var serr *syntaxError
	var scerr *scanError
	switch {
	case errors.As(err, &serr):
		files.AddError(serr.msg, serr.pos, -1)
	case errors.As(err, &scerr):
		files.AddError(scerr.msg, scerr.pos, -1)
	default:
		return err
	}
	return files.Error()
}

// DeclaredEffects returns the custom effects declared in src, in order of
// appearance, so that callers parsing several files of one program can
// share declarations across them.
func DeclaredEffects(src []byte) ([]string, error) {
	items, err := scan(src, 0)
	if err != nil {
		return nil, err
	}
	var effects []string
	for k := 0; k+1 < len(items); k++ {
		if items[k].tok == tokEffect && items[k+1].tok == tokIdent {
			effects = append(effects, items[k+1].lit)
		}
	}
	return effects, nil
}

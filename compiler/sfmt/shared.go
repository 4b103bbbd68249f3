package sfmt

import (
	"fmt"
	"strconv"
	"strings"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/compiler/ast"
)

// formatter accumulates output text.  A call to ret defers the newline
// until the next write so that close can adjust the indentation of the
// line that follows.
type formatter struct {
	strings.Builder
	indent  int
	tab     int
	needRet bool
}

func (f *formatter) write(s string, args ...any) {
	if f.needRet {
		f.needRet = false
		f.WriteByte('\n')
		f.writeTab()
	}
	if len(args) == 0 {
		f.WriteString(s)
		return
	}
	fmt.Fprintf(&f.Builder, s, args...)
}

func (f *formatter) writeTab() {
	f.WriteString(strings.Repeat(" ", f.indent))
}

// open writes s, if any, and indents subsequent lines.
func (f *formatter) open(s ...string) {
	if len(s) > 0 {
		f.write("%s", s[0])
	}
	f.indent += f.tab
}

func (f *formatter) close() {
	f.indent = max(f.indent-f.tab, 0)
}

func (f *formatter) ret() {
	f.needRet = true
}

func (f *formatter) flush() {
	if f.needRet {
		f.needRet = false
		f.WriteByte('\n')
	}
}

type shared struct {
	formatter
}

func (s *shared) literal(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.LitNum:
		s.write("%s", strconv.FormatInt(e.Value, 10))
	case *ast.LitFloat:
		s.write("%s", lumen.FormatFloat(e.Value))
	case *ast.LitText:
		s.write("%s", strconv.Quote(e.Value))
	case *ast.LitBool:
		s.write("%s", strconv.FormatBool(e.Value))
	case *ast.LitNull:
		s.write("null")
	default:
		return false
	}
	return true
}

func (s *shared) names(names []string) {
	s.write("%s", strings.Join(names, ", "))
}

func (s *shared) raises(effects []string) {
	if len(effects) > 0 {
		s.write(" raises ")
		s.names(effects)
	}
}

func (s *shared) param(p ast.Param) {
	s.write("%s", p.Name)
	if p.Type != "" {
		s.write(": %s", p.Type)
	}
}

func (s *shared) params(params []ast.Param) {
	s.write("(")
	for k, p := range params {
		if k > 0 {
			s.write(", ")
		}
		s.param(p)
	}
	s.write(")")
}

package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type item struct {
	tok token
	lit string
	pos int // offset of the first byte
	end int // offset just past the last byte
}

// scanner splits source text into items.  Newlines are significant as
// statement separators except where the innermost open bracket is a
// parenthesis or a square bracket.
type scanner struct {
	src   []byte
	base  int
	off   int
	nest  []byte
	items []item
}

type scanError struct {
	msg string
	pos int
}

func (e *scanError) Error() string { return e.msg }

// scan tokenizes src.  Offsets in the result are relative to base so that
// positions index into the enclosing srcfiles.List.
func scan(src []byte, base int) ([]item, error) {
	s := &scanner{src: src, base: base}
	for {
		it, err := s.next()
		if err != nil {
			return nil, err
		}
		if it.tok == tokNewline {
			if s.inParens() || len(s.items) == 0 || s.items[len(s.items)-1].tok == tokNewline {
				continue
			}
		}
		s.items = append(s.items, it)
		if it.tok == tokEOF {
			return s.items, nil
		}
	}
}

func (s *scanner) inParens() bool {
	return len(s.nest) > 0 && s.nest[len(s.nest)-1] != '{'
}

func (s *scanner) open(c byte) {
	s.nest = append(s.nest, c)
}

func (s *scanner) close() {
	if len(s.nest) > 0 {
		s.nest = s.nest[:len(s.nest)-1]
	}
}

func (s *scanner) errorf(pos int, format string, args ...any) error {
	return &scanError{msg: fmt.Sprintf(format, args...), pos: s.base + pos}
}

func (s *scanner) peek(k int) byte {
	if s.off+k < len(s.src) {
		return s.src[s.off+k]
	}
	return 0
}

func (s *scanner) skipSpace() {
	for s.off < len(s.src) {
		switch c := s.src[s.off]; {
		case c == ' ' || c == '\t' || c == '\r':
			s.off++
		case c == '-' && s.peek(1) == '-':
			for s.off < len(s.src) && s.src[s.off] != '\n' {
				s.off++
			}
		default:
			return
		}
	}
}

func (s *scanner) item(tok token, start int) item {
	return item{tok: tok, lit: string(s.src[start:s.off]), pos: s.base + start, end: s.base + s.off}
}

func (s *scanner) next() (item, error) {
	s.skipSpace()
	start := s.off
	if s.off >= len(s.src) {
		return s.item(tokEOF, start), nil
	}
	c := s.src[s.off]
	switch {
	case c == '\n':
		s.off++
		return s.item(tokNewline, start), nil
	case c == '"':
		return s.text()
	case isDigit(c):
		return s.number()
	case c == '_' || c >= utf8.RuneSelf || isLetter(c):
		return s.ident()
	}
	s.off++
	tok := tokEOF
	switch c {
	case '(':
		s.open(c)
		tok = tokLparen
	case ')':
		s.close()
		tok = tokRparen
	case '[':
		s.open(c)
		tok = tokLbrack
	case ']':
		s.close()
		tok = tokRbrack
	case '{':
		s.open(c)
		tok = tokLbrace
	case '}':
		s.close()
		tok = tokRbrace
	case ',':
		tok = tokComma
	case ';':
		tok = tokSemi
	case ':':
		tok = tokColon
	case '.':
		tok = tokDot
	case '+':
		tok = tokAdd
	case '*':
		tok = tokMul
	case '/':
		tok = tokDiv
	case '%':
		tok = tokRem
	case '-':
		tok = s.pick('>', tokArrow, tokSub)
	case '=':
		tok = s.pick('=', tokEql, tokAssign)
	case '!':
		tok = s.pick('=', tokNeq, tokNot)
	case '<':
		tok = s.pick('=', tokLeq, tokLss)
	case '>':
		tok = s.pick('=', tokGeq, tokGtr)
	case '|':
		tok = s.pick('|', tokOrOr, tokBar)
	case '&':
		if s.peek(0) != '&' {
			return item{}, s.errorf(start, "unexpected character %q", c)
		}
		s.off++
		tok = tokAndAnd
	default:
		return item{}, s.errorf(start, "unexpected character %q", c)
	}
	return s.item(tok, start), nil
}

// pick consumes c and returns yes if c is the next byte, and returns no
// otherwise.
func (s *scanner) pick(c byte, yes, no token) token {
	if s.peek(0) == c {
		s.off++
		return yes
	}
	return no
}

func (s *scanner) ident() (item, error) {
	start := s.off
	for s.off < len(s.src) {
		r, n := utf8.DecodeRune(s.src[s.off:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.off += n
	}
	if s.off == start {
		r, _ := utf8.DecodeRune(s.src[s.off:])
		return item{}, s.errorf(start, "unexpected character %q", r)
	}
	it := s.item(tokIdent, start)
	if tok, ok := keywords[it.lit]; ok {
		it.tok = tok
	}
	return it, nil
}

func (s *scanner) number() (item, error) {
	start := s.off
	tok := tokInt
	s.digits()
	if s.peek(0) == '.' && isDigit(s.peek(1)) {
		tok = tokFloat
		s.off++
		s.digits()
	}
	if c := s.peek(0); c == 'e' || c == 'E' {
		k := 1
		if sign := s.peek(1); sign == '+' || sign == '-' {
			k = 2
		}
		if isDigit(s.peek(k)) {
			tok = tokFloat
			s.off += k
			s.digits()
		}
	}
	if c := s.peek(0); c == '_' || isLetter(c) {
		return item{}, s.errorf(s.off, "invalid character %q in number", c)
	}
	return s.item(tok, start), nil
}

func (s *scanner) digits() {
	for isDigit(s.peek(0)) {
		s.off++
	}
}

func (s *scanner) text() (item, error) {
	start := s.off
	s.off++
	for {
		if s.off >= len(s.src) || s.src[s.off] == '\n' {
			return item{}, s.errorf(start, "text literal not terminated")
		}
		switch s.src[s.off] {
		case '\\':
			s.off += 2
		case '"':
			s.off++
			return s.item(tokText, start), nil
		default:
			s.off++
		}
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

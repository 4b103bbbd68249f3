package parser

type token int

const (
	tokEOF token = iota
	tokNewline
	tokIdent
	tokInt
	tokFloat
	tokText

	tokLparen   // (
	tokRparen   // )
	tokLbrack   // [
	tokRbrack   // ]
	tokLbrace   // {
	tokRbrace   // }
	tokComma    // ,
	tokSemi     // ;
	tokColon    // :
	tokDot      // .
	tokAssign   // =
	tokArrow    // ->
	tokBar      // |
	tokOrOr     // ||
	tokAndAnd   // &&
	tokEql      // ==
	tokNeq      // !=
	tokLss      // <
	tokLeq      // <=
	tokGtr      // >
	tokGeq      // >=
	tokAdd      // +
	tokSub      // -
	tokMul      // *
	tokDiv      // /
	tokRem      // %
	tokNot      // !

	tokActor
	tokAsk
	tokElse
	tokEffect
	tokEnum
	tokFalse
	tokFn
	tokIf
	tokIn
	tokLet
	tokMatch
	tokModule
	tokNull
	tokOn
	tokQuery
	tokRaises
	tokReply
	tokSelect
	tokSend
	tokSpawn
	tokState
	tokStore
	tokThen
	tokTrue
	tokWhere
)

var tokenNames = map[token]string{
	tokEOF:     "end of input",
	tokNewline: "newline",
	tokIdent:   "identifier",
	tokInt:     "integer",
	tokFloat:   "float",
	tokText:    "text",
	tokLparen:  "(",
	tokRparen:  ")",
	tokLbrack:  "[",
	tokRbrack:  "]",
	tokLbrace:  "{",
	tokRbrace:  "}",
	tokComma:   ",",
	tokSemi:    ";",
	tokColon:   ":",
	tokDot:     ".",
	tokAssign:  "=",
	tokArrow:   "->",
	tokBar:     "|",
	tokOrOr:    "||",
	tokAndAnd:  "&&",
	tokEql:     "==",
	tokNeq:     "!=",
	tokLss:     "<",
	tokLeq:     "<=",
	tokGtr:     ">",
	tokGeq:     ">=",
	tokAdd:     "+",
	tokSub:     "-",
	tokMul:     "*",
	tokDiv:     "/",
	tokRem:     "%",
	tokNot:     "!",
}

var keywords = map[string]token{
	"actor":  tokActor,
	"ask":    tokAsk,
	"else":   tokElse,
	"effect": tokEffect,
	"enum":   tokEnum,
	"false":  tokFalse,
	"fn":     tokFn,
	"if":     tokIf,
	"in":     tokIn,
	"let":    tokLet,
	"match":  tokMatch,
	"module": tokModule,
	"null":   tokNull,
	"on":     tokOn,
	"query":  tokQuery,
	"raises": tokRaises,
	"reply":  tokReply,
	"select": tokSelect,
	"send":   tokSend,
	"spawn":  tokSpawn,
	"state":  tokState,
	"store":  tokStore,
	"then":   tokThen,
	"true":   tokTrue,
	"where":  tokWhere,
}

func init() {
	for name, tok := range keywords {
		tokenNames[tok] = name
	}
}

func (t token) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "token"
}

// IsKeyword reports whether name is reserved and so cannot be used as an
// identifier.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// precedence returns the binding power of a binary operator, or 0 if t is
// not one.
func (t token) precedence() int {
	switch t {
	case tokOrOr:
		return 1
	case tokAndAnd:
		return 2
	case tokEql, tokNeq:
		return 3
	case tokLss, tokLeq, tokGtr, tokGeq:
		return 4
	case tokAdd, tokSub:
		return 5
	case tokMul, tokDiv, tokRem:
		return 6
	}
	return 0
}

// Precedence returns the binding power of the binary operator op as it
// appears in source, or 0 if op is not a binary operator.  The formatter
// uses it to decide where parentheses are needed.
func Precedence(op string) int {
	for tok, name := range tokenNames {
		if name == op {
			return tok.precedence()
		}
	}
	return 0
}

package ast

// Expr is implemented by every node of a Lumen syntax tree.  Declarations
// are expressions too: a Program is an ordered list of Exprs, and a
// declaration evaluates to a value like anything else.
type Expr interface {
	Node
	SID() string
	SetSID(string)
	exprNode()
}

type (
	LitNum struct {
		Kind  string `json:"kind" unpack:""`
		Value int64  `json:"value"`
		Stamp
		Loc `json:"loc"`
	}
	LitFloat struct {
		Kind  string  `json:"kind" unpack:""`
		Value float64 `json:"value"`
		Stamp
		Loc `json:"loc"`
	}
	LitText struct {
		Kind  string `json:"kind" unpack:""`
		Value string `json:"value"`
		Stamp
		Loc `json:"loc"`
	}
	LitBool struct {
		Kind  string `json:"kind" unpack:""`
		Value bool   `json:"value"`
		Stamp
		Loc `json:"loc"`
	}
	LitNull struct {
		Kind string `json:"kind" unpack:""`
		Stamp
		Loc `json:"loc"`
	}
	// Var references a binding.  A dotted name such as "m.f" refers to a
	// module-qualified binding or, failing that, a field of a record.
	Var struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Stamp
		Loc `json:"loc"`
	}
	// Let binds Name in the current scope.  When Body is non-nil, the
	// binding is visible only in Body.
	Let struct {
		Kind  string `json:"kind" unpack:""`
		Name  string `json:"name"`
		Value Expr   `json:"value"`
		Body  Expr   `json:"body,omitempty"`
		Stamp
		Loc `json:"loc"`
	}
	Assign struct {
		Kind  string `json:"kind" unpack:""`
		Name  string `json:"name"`
		Value Expr   `json:"value"`
		Stamp
		Loc `json:"loc"`
	}
	// Fn is a function declaration when Name is set and a lambda
	// otherwise.
	Fn struct {
		Kind    string   `json:"kind" unpack:""`
		Name    string   `json:"name,omitempty"`
		Params  []Param  `json:"params"`
		Ret     string   `json:"ret,omitempty"`
		Body    Expr     `json:"body"`
		Effects []string `json:"effects,omitempty"`
		Stamp
		Loc `json:"loc"`
	}
	Call struct {
		Kind   string `json:"kind" unpack:""`
		Callee Expr   `json:"callee"`
		Args   []Expr `json:"args"`
		Stamp
		Loc `json:"loc"`
	}
	Unary struct {
		Kind    string `json:"kind" unpack:""`
		Op      string `json:"op"`
		Operand Expr   `json:"operand"`
		Stamp
		Loc `json:"loc"`
	}
	Binary struct {
		Kind string `json:"kind" unpack:""`
		Op   string `json:"op"`
		LHS  Expr   `json:"lhs"`
		RHS  Expr   `json:"rhs"`
		Stamp
		Loc `json:"loc"`
	}
	If struct {
		Kind string `json:"kind" unpack:""`
		Cond Expr   `json:"cond"`
		Then Expr   `json:"then"`
		Else Expr   `json:"else,omitempty"`
		Stamp
		Loc `json:"loc"`
	}
	Block struct {
		Kind  string `json:"kind" unpack:""`
		Stmts []Expr `json:"stmts"`
		Stamp
		Loc `json:"loc"`
	}
	Match struct {
		Kind      string `json:"kind" unpack:""`
		Scrutinee Expr   `json:"scrutinee"`
		Cases     []Case `json:"cases"`
		Stamp
		Loc `json:"loc"`
	}
	// Ctor builds a constructor value, or matches one in pattern position.
	Ctor struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Args []Expr `json:"args"`
		Stamp
		Loc `json:"loc"`
	}
	RecordLit struct {
		Kind   string        `json:"kind" unpack:""`
		Fields []RecordField `json:"fields"`
		Stamp
		Loc `json:"loc"`
	}
	TupleLit struct {
		Kind  string `json:"kind" unpack:""`
		Elems []Expr `json:"elems"`
		Stamp
		Loc `json:"loc"`
	}
	ListLit struct {
		Kind  string `json:"kind" unpack:""`
		Elems []Expr `json:"elems"`
		Stamp
		Loc `json:"loc"`
	}
	// PatternOr matches Left and, only when Left fails, Right.
	PatternOr struct {
		Kind  string `json:"kind" unpack:""`
		Left  Expr   `json:"left"`
		Right Expr   `json:"right"`
		Stamp
		Loc `json:"loc"`
	}
	EffectCall struct {
		Kind   string `json:"kind" unpack:""`
		Effect string `json:"effect"`
		Op     string `json:"op"`
		Args   []Expr `json:"args"`
		Stamp
		Loc `json:"loc"`
	}
)

// Declarations.
type (
	Program struct {
		Kind  string `json:"kind" unpack:""`
		Decls []Expr `json:"decls"`
		Stamp
		Loc `json:"loc"`
	}
	ModuleDecl struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Stamp
		Loc `json:"loc"`
	}
	EffectDecl struct {
		Kind string `json:"kind" unpack:""`
		Name string `json:"name"`
		Stamp
		Loc `json:"loc"`
	}
	EnumDecl struct {
		Kind     string    `json:"kind" unpack:""`
		Name     string    `json:"name"`
		Variants []Variant `json:"variants"`
		Stamp
		Loc `json:"loc"`
	}
	// ActorDecl declares an actor whose body runs once per message with
	// the message bound to Param.
	ActorDecl struct {
		Kind    string   `json:"kind" unpack:""`
		Name    string   `json:"name"`
		Param   *Param   `json:"param,omitempty"`
		Body    Expr     `json:"body"`
		Effects []string `json:"effects,omitempty"`
		Stamp
		Loc `json:"loc"`
	}
	// ActorDeclNew declares an actor with persistent state and a list of
	// handlers tried in order against each message.
	ActorDeclNew struct {
		Kind     string      `json:"kind" unpack:""`
		Name     string      `json:"name"`
		State    []StateSlot `json:"state"`
		Handlers []Handler   `json:"handlers"`
		Effects  []string    `json:"effects,omitempty"`
		Stamp
		Loc `json:"loc"`
	}
	Spawn struct {
		Kind  string `json:"kind" unpack:""`
		Actor string `json:"actor"`
		Stamp
		Loc `json:"loc"`
	}
	Send struct {
		Kind    string `json:"kind" unpack:""`
		Actor   Expr   `json:"actor"`
		Message Expr   `json:"message"`
		Stamp
		Loc `json:"loc"`
	}
	// Ask sends Message with a reply sink and waits for the reply.
	// Timeout is in milliseconds; nil means wait until the mailboxes
	// go idle.
	Ask struct {
		Kind    string `json:"kind" unpack:""`
		Actor   Expr   `json:"actor"`
		Message Expr   `json:"message"`
		Timeout *int64 `json:"timeout,omitempty"`
		Stamp
		Loc `json:"loc"`
	}
	StoreDecl struct {
		Kind   string `json:"kind" unpack:""`
		Name   string `json:"name"`
		Schema string `json:"schema"`
		Config string `json:"config"`
		Stamp
		Loc `json:"loc"`
	}
	QueryDecl struct {
		Kind   string   `json:"kind" unpack:""`
		Name   string   `json:"name"`
		Source string   `json:"source"`
		Where  Expr     `json:"where"`
		Select []string `json:"select,omitempty"`
		Stamp
		Loc `json:"loc"`
	}
)

// Parts of nodes that are not expressions on their own.
type (
	Param struct {
		Name string `json:"name"`
		Type string `json:"type,omitempty"`
	}
	Case struct {
		Pattern Expr `json:"pattern"`
		Guard   Expr `json:"guard,omitempty"`
		Body    Expr `json:"body"`
		Loc     `json:"loc"`
	}
	Variant struct {
		Name   string   `json:"name"`
		Params []string `json:"params,omitempty"`
	}
	StateSlot struct {
		Name string `json:"name"`
		Type string `json:"type"`
		Init Expr   `json:"init"`
		Loc  `json:"loc"`
	}
	Handler struct {
		Pattern Expr   `json:"pattern"`
		Guard   Expr   `json:"guard,omitempty"`
		Reply   string `json:"reply,omitempty"`
		Body    Expr   `json:"body"`
		Loc     `json:"loc"`
	}
	RecordField struct {
		Name  string `json:"name"`
		Value Expr   `json:"value"`
	}
)

func (*LitNum) exprNode()     {}
func (*LitFloat) exprNode()   {}
func (*LitText) exprNode()    {}
func (*LitBool) exprNode()    {}
func (*LitNull) exprNode()    {}
func (*Var) exprNode()        {}
func (*Let) exprNode()        {}
func (*Assign) exprNode()     {}
func (*Fn) exprNode()         {}
func (*Call) exprNode()       {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*If) exprNode()         {}
func (*Block) exprNode()      {}
func (*Match) exprNode()      {}
func (*Ctor) exprNode()       {}
func (*RecordLit) exprNode()  {}
func (*TupleLit) exprNode()   {}
func (*ListLit) exprNode()    {}
func (*PatternOr) exprNode()  {}
func (*EffectCall) exprNode() {}

func (*Program) exprNode()      {}
func (*ModuleDecl) exprNode()   {}
func (*EffectDecl) exprNode()   {}
func (*EnumDecl) exprNode()     {}
func (*ActorDecl) exprNode()    {}
func (*ActorDeclNew) exprNode() {}
func (*Spawn) exprNode()        {}
func (*Send) exprNode()         {}
func (*Ask) exprNode()          {}
func (*StoreDecl) exprNode()    {}
func (*QueryDecl) exprNode()    {}

// KindOf returns the variant tag of e, e.g., "Binary".
func KindOf(e Expr) string {
	switch e.(type) {
	case *LitNum:
		return "LitNum"
	case *LitFloat:
		return "LitFloat"
	case *LitText:
		return "LitText"
	case *LitBool:
		return "LitBool"
	case *LitNull:
		return "LitNull"
	case *Var:
		return "Var"
	case *Let:
		return "Let"
	case *Assign:
		return "Assign"
	case *Fn:
		return "Fn"
	case *Call:
		return "Call"
	case *Unary:
		return "Unary"
	case *Binary:
		return "Binary"
	case *If:
		return "If"
	case *Block:
		return "Block"
	case *Match:
		return "Match"
	case *Ctor:
		return "Ctor"
	case *RecordLit:
		return "RecordLit"
	case *TupleLit:
		return "TupleLit"
	case *ListLit:
		return "ListLit"
	case *PatternOr:
		return "PatternOr"
	case *EffectCall:
		return "EffectCall"
	case *Program:
		return "Program"
	case *ModuleDecl:
		return "ModuleDecl"
	case *EffectDecl:
		return "EffectDecl"
	case *EnumDecl:
		return "EnumDecl"
	case *ActorDecl:
		return "ActorDecl"
	case *ActorDeclNew:
		return "ActorDeclNew"
	case *Spawn:
		return "Spawn"
	case *Send:
		return "Send"
	case *Ask:
		return "Ask"
	case *StoreDecl:
		return "StoreDecl"
	case *QueryDecl:
		return "QueryDecl"
	case nil:
		return ""
	default:
		return "Unknown"
	}
}

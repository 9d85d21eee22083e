// Package parser implements the expression lexer and precedence-climbing
// grammar: a participle lexer feeding a participle struct-tag grammar.
// It is a cascade of one struct per precedence level, each embedding
// the next-tighter level — the idiom participle's own
// operator-precedence examples use, generalized to a full binary
// operator table.
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Keyword", Pattern: `\b(and|or|not|null|true|false)\b`},
	{Name: "Float", Pattern: `\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"|'([^'\\]|\\.)*'`},
	{Name: "Ident", Pattern: `[$?]?[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `\*\*|&&|\|\||\?\?|=>|<=|>=|==|!=`},
	{Name: "Punct", Pattern: `[(){}\[\].,:?+\-*/%<>!=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Expression is the grammar's entry point: the ternary level.
type Expression struct {
	Cond *OrExpr     `parser:"@@"`
	Then *Expression `parser:"( \"?\" @@"`
	Else *Expression `parser:"  \":\" @@ )?"`
}

type OrExpr struct {
	Left *AndExpr  `parser:"@@"`
	Rest []*OrTail `parser:"@@*"`
}
type OrTail struct {
	Op    string   `parser:"@(\"or\" | \"||\")"`
	Right *AndExpr `parser:"@@"`
}

type AndExpr struct {
	Left *NullishExpr `parser:"@@"`
	Rest []*AndTail   `parser:"@@*"`
}
type AndTail struct {
	Op    string       `parser:"@(\"and\" | \"&&\")"`
	Right *NullishExpr `parser:"@@"`
}

type NullishExpr struct {
	Left *EqualityExpr  `parser:"@@"`
	Rest []*NullishTail `parser:"@@*"`
}
type NullishTail struct {
	Op    string        `parser:"@\"??\""`
	Right *EqualityExpr `parser:"@@"`
}

type EqualityExpr struct {
	Left *RelExpr        `parser:"@@"`
	Rest []*EqualityTail `parser:"@@*"`
}
type EqualityTail struct {
	Op    string   `parser:"@(\"==\" | \"!=\")"`
	Right *RelExpr `parser:"@@"`
}

type RelExpr struct {
	Left *AddExpr   `parser:"@@"`
	Rest []*RelTail `parser:"@@*"`
}
type RelTail struct {
	Op    string   `parser:"@(\"<=\" | \">=\" | \"<\" | \">\")"`
	Right *AddExpr `parser:"@@"`
}

type AddExpr struct {
	Left *MulExpr   `parser:"@@"`
	Rest []*AddTail `parser:"@@*"`
}
type AddTail struct {
	Op    string   `parser:"@(\"+\" | \"-\")"`
	Right *MulExpr `parser:"@@"`
}

type MulExpr struct {
	Left *PowExpr   `parser:"@@"`
	Rest []*MulTail `parser:"@@*"`
}
type MulTail struct {
	Op    string   `parser:"@(\"*\" | \"/\" | \"%\")"`
	Right *PowExpr `parser:"@@"`
}

// PowExpr is right-associative: "**" recurses back into PowExpr on the
// right so that unary binds tighter than it on both sides.
type PowExpr struct {
	Left  *UnaryExpr `parser:"@@"`
	Right *PowExpr   `parser:"( \"**\" @@ )?"`
}

type UnaryExpr struct {
	Unary   *UnaryOp     `parser:"  @@"`
	Postfix *PostfixExpr `parser:"| @@"`
}
type UnaryOp struct {
	Op      string     `parser:"@(\"+\" | \"-\" | \"not\" | \"!\")"`
	Operand *UnaryExpr `parser:"@@"`
}

type PostfixExpr struct {
	Primary *PrimaryExpr `parser:"@@"`
	Ops     []*PostfixOp `parser:"@@*"`
}
type PostfixOp struct {
	Member *string    `parser:"(  \".\" @Ident"`
	Index  *Expression `parser:"| \"[\" @@ \"]\""`
	Call   *CallArgs  `parser:"| \"(\" @@? \")\" )"`
}
type CallArgs struct {
	Args []*Expression `parser:"@@ ( \",\" @@ )*"`
}

type PrimaryExpr struct {
	Lambda  *LambdaExpr `parser:"  @@"`
	Paren   *Expression `parser:"| \"(\" @@ \")\""`
	Array   *ArrayLit   `parser:"| @@"`
	Object  *ObjectLit  `parser:"| @@"`
	Literal *Literal    `parser:"| @@"`
	Ident   *string     `parser:"| @Ident"`
}

type LambdaExpr struct {
	Multi  *MultiParamLambda  `parser:"  @@"`
	Single *SingleParamLambda `parser:"| @@"`
}
type MultiParamLambda struct {
	Params []string   `parser:"\"(\" ( @Ident ( \",\" @Ident )* )? \")\" \"=>\""`
	Body   *Expression `parser:"@@"`
}
type SingleParamLambda struct {
	Param string     `parser:"@Ident \"=>\""`
	Body  *Expression `parser:"@@"`
}

type ArrayLit struct {
	Elems []*Expression `parser:"\"[\" ( @@ ( \",\" @@ )* )? \"]\""`
}

type ObjectLit struct {
	Entries []*ObjectEntry `parser:"\"{\" ( @@ ( \",\" @@ )* )? \"}\""`
}
type ObjectEntry struct {
	Key   string     `parser:"( @Ident | @String ) \":\""`
	Value *Expression `parser:"@@"`
}

type Literal struct {
	Null  bool     `parser:"(  @\"null\""`
	True  bool     `parser:" | @\"true\""`
	False bool     `parser:" | @\"false\""`
	Float *string  `parser:" | @Float"`
	Int   *int64   `parser:" | @Int"`
	Str   *string  `parser:" | @String )"`
}

var exprParser = participle.MustBuild[Expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// Parse parses a single expression from src.
func Parse(src string) (*Expression, error) {
	return exprParser.ParseString("", src)
}

// Package ast defines the syntax tree produced by the parser and consumed
// by the evaluator. Every node carries the token that introduced it so
// faults can point at source positions.
package ast

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// Node is the interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is a node that appears in statement position
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that produces a value
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every parsed file
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// LetStatement declares a new binding in the current scope: let x = expr
type LetStatement struct {
	Token lexer.Token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string {
	return "let " + ls.Name.String() + " = " + ls.Value.String()
}

// AssignStatement rebinds an existing name, or mutates an element or field:
// x = e, xs[i] = e, p.f = e
type AssignStatement struct {
	Token  lexer.Token
	Target Expression // *Identifier, *IndexExpression, or *DotExpression
	Value  Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	return as.Target.String() + " = " + as.Value.String()
}

// ReturnStatement returns a value from the enclosing function
type ReturnStatement struct {
	Token       lexer.Token
	ReturnValue Expression // nil for bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return"
	}
	return "return " + rs.ReturnValue.String()
}

// BreakStatement exits the innermost loop
type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return "break" }

// ContinueStatement skips to the next loop iteration
type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string       { return "continue" }

// RaiseStatement raises an exception: raise expr
type RaiseStatement struct {
	Token lexer.Token
	Value Expression
}

func (rs *RaiseStatement) statementNode()       {}
func (rs *RaiseStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RaiseStatement) String() string       { return "raise " + rs.Value.String() }

// ExpressionStatement wraps an expression used in statement position
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// BlockStatement is a sequence of statements inside a body
type BlockStatement struct {
	Token      lexer.Token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var sb strings.Builder
	for _, s := range bs.Statements {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// FunStatement is a named function declaration: fun name(params) ... end
type FunStatement struct {
	Token    lexer.Token
	Name     *Identifier
	Function *FunctionLiteral
}

func (fs *FunStatement) statementNode()       {}
func (fs *FunStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunStatement) String() string {
	return "fun " + fs.Name.String() + fs.Function.signature()
}

// CatchClause matches exceptions by kind; an empty Kind matches all
type CatchClause struct {
	Token lexer.Token
	Name  *Identifier // binding for the caught exception
	Kind  string      // "" = catch all
	Body  *BlockStatement
}

func (cc *CatchClause) String() string {
	s := "catch " + cc.Name.String()
	if cc.Kind != "" {
		s += ": " + cc.Kind
	}
	return s
}

// TryStatement guards a block with catch clauses and an optional ensure
// block that runs on every exit path
type TryStatement struct {
	Token   lexer.Token
	Body    *BlockStatement
	Catches []*CatchClause
	Ensure  *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) String() string {
	var sb strings.Builder
	sb.WriteString("try\n")
	sb.WriteString(ts.Body.String())
	for _, c := range ts.Catches {
		sb.WriteString(c.String())
		sb.WriteString("\n")
		sb.WriteString(c.Body.String())
	}
	if ts.Ensure != nil {
		sb.WriteString("ensure\n")
		sb.WriteString(ts.Ensure.String())
	}
	sb.WriteString("end")
	return sb.String()
}

// FieldDecl is one field in a type declaration
type FieldDecl struct {
	Token      lexer.Token
	Name       string
	Annotation string     // "" = untyped
	Optional   bool       // name? — nil allowed, no value required
	Default    Expression // nil = required unless Optional
}

func (fd *FieldDecl) String() string {
	s := fd.Name
	if fd.Optional {
		s += "?"
	}
	if fd.Annotation != "" {
		s += ": " + fd.Annotation
	}
	if fd.Default != nil {
		s += " = " + fd.Default.String()
	}
	return s
}

// TypeStatement declares a user-defined aggregate type with fields and
// methods: type Name ... end
type TypeStatement struct {
	Token   lexer.Token
	Name    *Identifier
	Fields  []*FieldDecl
	Methods []*FunStatement
}

func (ts *TypeStatement) statementNode()       {}
func (ts *TypeStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TypeStatement) String() string {
	var sb strings.Builder
	sb.WriteString("type ")
	sb.WriteString(ts.Name.String())
	sb.WriteString("\n")
	for _, f := range ts.Fields {
		sb.WriteString("  " + f.String() + "\n")
	}
	for _, m := range ts.Methods {
		sb.WriteString("  " + m.String() + "\n")
	}
	sb.WriteString("end")
	return sb.String()
}

// Identifier names a binding
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral is a fixed-width integer literal
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// BigIntLiteral is an arbitrary-precision integer literal: 123n
type BigIntLiteral struct {
	Token lexer.Token
	Value *big.Int
}

func (bl *BigIntLiteral) expressionNode()      {}
func (bl *BigIntLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BigIntLiteral) String() string       { return bl.Token.Literal + "n" }

// FloatLiteral is a floating point literal
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// DecimalLiteral is an arbitrary-precision decimal literal: 1.50d
type DecimalLiteral struct {
	Token lexer.Token
	Value decimal.Decimal
}

func (dl *DecimalLiteral) expressionNode()      {}
func (dl *DecimalLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DecimalLiteral) String() string       { return dl.Token.Literal + "d" }

// StringLiteral is a UTF-8 text literal
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }

// BytesLiteral is a raw byte sequence literal: b"..."
type BytesLiteral struct {
	Token lexer.Token
	Value []byte
}

func (bl *BytesLiteral) expressionNode()      {}
func (bl *BytesLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BytesLiteral) String() string       { return "b\"" + string(bl.Value) + "\"" }

// BooleanLiteral is true or false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NilLiteral is the absent-value marker
type NilLiteral struct {
	Token lexer.Token
}

func (nl *NilLiteral) expressionNode()      {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NilLiteral) String() string       { return "nil" }

// PrefixExpression is a unary operation: -x, not x, !x
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	op := pe.Operator
	if op == "not" {
		op = "not "
	}
	return "(" + op + pe.Right.String() + ")"
}

// InfixExpression is a binary operation: a + b
type InfixExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// IfExpression is a conditional: if cond ... elif ... else ... end.
// elif chains are represented as a nested IfExpression in Alternative.
type IfExpression struct {
	Token       lexer.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) String() string {
	s := "if " + ie.Condition.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		s += " else " + ie.Alternative.String()
	}
	return s + " end"
}

// WhileExpression loops while the condition holds; its value is nil
type WhileExpression struct {
	Token     lexer.Token
	Condition Expression
	Body      *BlockStatement
}

func (we *WhileExpression) expressionNode()      {}
func (we *WhileExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WhileExpression) String() string {
	return "while " + we.Condition.String() + " " + we.Body.String() + " end"
}

// ForExpression iterates a sequence, string, or mapping; its value is nil
type ForExpression struct {
	Token    lexer.Token
	Var      *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fe *ForExpression) expressionNode()      {}
func (fe *ForExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForExpression) String() string {
	return "for " + fe.Var.String() + " in " + fe.Iterable.String() + " " + fe.Body.String() + " end"
}

// Parameter is one declared function parameter
type Parameter struct {
	Token      lexer.Token
	Name       string
	Annotation string     // "" = untyped
	Default    Expression // nil = required
	Variadic   bool       // *rest — collects excess positional args
	KwVariadic bool       // **kw — collects excess named args
}

func (p *Parameter) String() string {
	s := p.Name
	if p.Variadic {
		s = "*" + s
	}
	if p.KwVariadic {
		s = "**" + p.Name
	}
	if p.Annotation != "" {
		s += ": " + p.Annotation
	}
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

// FunctionLiteral is an anonymous function: fun(params) ... end
type FunctionLiteral struct {
	Token  lexer.Token
	Name   string // set for named declarations, "" for lambdas
	Params []*Parameter
	Body   *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) signature() string {
	params := make([]string, len(fl.Params))
	for i, p := range fl.Params {
		params[i] = p.String()
	}
	return "(" + strings.Join(params, ", ") + ")"
}
func (fl *FunctionLiteral) String() string {
	return "fun" + fl.signature() + " " + fl.Body.String() + " end"
}

// Argument is one call-site argument; Name is "" for positional arguments
type Argument struct {
	Token lexer.Token
	Name  string
	Value Expression
}

func (a *Argument) String() string {
	if a.Name != "" {
		return a.Name + ": " + a.Value.String()
	}
	return a.Value.String()
}

// CallExpression invokes a callable: f(a, b: 2)
type CallExpression struct {
	Token    lexer.Token
	Function Expression
	Args     []*Argument
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Args))
	for i, a := range ce.Args {
		args[i] = a.String()
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// IndexExpression accesses an element: xs[i]
type IndexExpression struct {
	Token lexer.Token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// DotExpression accesses an attribute or method: x.f
type DotExpression struct {
	Token lexer.Token
	Left  Expression
	Name  string
}

func (de *DotExpression) expressionNode()      {}
func (de *DotExpression) TokenLiteral() string { return de.Token.Literal }
func (de *DotExpression) String() string {
	return "(" + de.Left.String() + "." + de.Name + ")"
}

// ArrayLiteral is an ordered mutable sequence literal: [1, 2, 3]
type ArrayLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	elems := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// DictPair is one key/value entry in a dict literal; pairs keep their
// written order
type DictPair struct {
	Key   string
	Value Expression
}

// DictLiteral is an insertion-ordered mapping literal: {a: 1, "b": 2}
type DictLiteral struct {
	Token lexer.Token
	Pairs []*DictPair
}

func (dl *DictLiteral) expressionNode()      {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictLiteral) String() string {
	pairs := make([]string, len(dl.Pairs))
	for i, p := range dl.Pairs {
		pairs[i] = p.Key + ": " + p.Value.String()
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

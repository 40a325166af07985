// Package parser turns a token stream into the syntax tree the evaluator
// consumes. It is a Pratt parser: each token type registers a prefix
// and/or infix parse function, and precedence climbing drives the
// expression grammar.
package parser

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// Operator precedence levels, lowest first
const (
	_ int = iota
	LOWEST
	ELVIS       // ?:
	OR          // or
	AND         // and
	EQUALS      // == !=
	LESSGREATER // < > <= >= in
	CONCAT      // ..
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x not x
	CALL        // f(x) xs[i] x.f
)

var precedences = map[lexer.TokenType]int{
	lexer.ELVIS:    ELVIS,
	lexer.OR:       OR,
	lexer.AND:      AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.IN:       LESSGREATER,
	lexer.CONCAT:   CONCAT,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.LPAREN:   CALL,
	lexer.LBRACKET: CALL,
	lexer.DOT:      CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser parses Sorrel source into an ast.Program
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser reading from the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:    p.parseIdentifier,
		lexer.INT:      p.parseIntegerLiteral,
		lexer.BIGINT:   p.parseBigIntLiteral,
		lexer.FLOAT:    p.parseFloatLiteral,
		lexer.DECIMAL:  p.parseDecimalLiteral,
		lexer.STRING:   p.parseStringLiteral,
		lexer.BYTES:    p.parseBytesLiteral,
		lexer.TRUE:     p.parseBooleanLiteral,
		lexer.FALSE:    p.parseBooleanLiteral,
		lexer.NIL:      p.parseNilLiteral,
		lexer.BANG:     p.parsePrefixExpression,
		lexer.NOT:      p.parsePrefixExpression,
		lexer.MINUS:    p.parsePrefixExpression,
		lexer.LPAREN:   p.parseGroupedExpression,
		lexer.LBRACKET: p.parseArrayLiteral,
		lexer.LBRACE:   p.parseDictLiteral,
		lexer.IF:       p.parseIfExpression,
		lexer.WHILE:    p.parseWhileExpression,
		lexer.FOR:      p.parseForExpression,
		lexer.FUN:      p.parseFunctionLiteral,
	}

	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:     p.parseInfixExpression,
		lexer.MINUS:    p.parseInfixExpression,
		lexer.ASTERISK: p.parseInfixExpression,
		lexer.SLASH:    p.parseInfixExpression,
		lexer.PERCENT:  p.parseInfixExpression,
		lexer.EQ:       p.parseInfixExpression,
		lexer.NOT_EQ:   p.parseInfixExpression,
		lexer.LT:       p.parseInfixExpression,
		lexer.GT:       p.parseInfixExpression,
		lexer.LTE:      p.parseInfixExpression,
		lexer.GTE:      p.parseInfixExpression,
		lexer.AND:      p.parseInfixExpression,
		lexer.OR:       p.parseInfixExpression,
		lexer.IN:       p.parseInfixExpression,
		lexer.CONCAT:   p.parseInfixExpression,
		lexer.ELVIS:    p.parseInfixExpression,
		lexer.LPAREN:   p.parseCallExpression,
		lexer.LBRACKET: p.parseIndexExpression,
		lexer.DOT:      p.parseDotExpression,
	}

	// Read two tokens so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns parse error messages collected so far
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) addError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("line %d, column %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError("expected %s, got %s", t, p.peekToken.Type)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
}

// ParseProgram parses the whole input
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	p.skipNewlines()
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
		p.skipNewlines()
	}
	return program
}

// ----------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.LET:
		return p.parseLetStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case lexer.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case lexer.RAISE:
		return p.parseRaiseStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.TYPE:
		return p.parseTypeStatement()
	case lexer.FUN:
		// A named declaration only when followed by a name; otherwise it
		// is a lambda in expression position
		if p.peekTokenIs(lexer.IDENT) {
			return p.parseFunStatement()
		}
		return p.parseExpressionOrAssignStatement()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.NEWLINE) || p.peekTokenIs(lexer.EOF) || p.peekTokenIs(lexer.END) {
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseRaiseStatement() ast.Statement {
	stmt := &ast.RaiseStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		switch expr.(type) {
		case *ast.Identifier, *ast.IndexExpression, *ast.DotExpression:
		default:
			p.addError("invalid assignment target: %s", expr.String())
			return nil
		}
		p.nextToken() // =
		p.nextToken()
		value := p.parseExpression(LOWEST)
		return &ast.AssignStatement{Token: tok, Target: expr, Value: value}
	}

	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

// parseBlockStatement reads statements until one of the given terminator
// tokens; the terminator is left as the current token
func (p *Parser) parseBlockStatement(terminators ...lexer.TokenType) *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}

	isTerm := func(t lexer.TokenType) bool {
		for _, term := range terminators {
			if t == term {
				return true
			}
		}
		return false
	}

	p.nextToken()
	p.skipNewlines()
	for !isTerm(p.curToken.Type) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
		p.skipNewlines()
	}
	if p.curTokenIs(lexer.EOF) && len(terminators) > 0 {
		p.addError("unexpected end of input, expected %s", terminators[0])
	}
	return block
}

func (p *Parser) parseFunStatement() ast.Statement {
	stmt := &ast.FunStatement{Token: p.curToken}

	p.nextToken() // name
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	fn := &ast.FunctionLiteral{Token: stmt.Token, Name: stmt.Name.Value}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fn.Params = p.parseFunctionParameters()
	fn.Body = p.parseBlockStatement(lexer.END)
	stmt.Function = fn
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	stmt := &ast.TryStatement{Token: p.curToken}
	stmt.Body = p.parseBlockStatement(lexer.CATCH, lexer.ENSURE, lexer.END)

	for p.curTokenIs(lexer.CATCH) {
		clause := &ast.CatchClause{Token: p.curToken}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		clause.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			clause.Kind = p.curToken.Literal
		}
		clause.Body = p.parseBlockStatement(lexer.CATCH, lexer.ENSURE, lexer.END)
		stmt.Catches = append(stmt.Catches, clause)
	}

	if p.curTokenIs(lexer.ENSURE) {
		stmt.Ensure = p.parseBlockStatement(lexer.END)
	}

	if !p.curTokenIs(lexer.END) {
		p.addError("expected end to close try, got %s", p.curToken.Type)
	}
	return stmt
}

func (p *Parser) parseTypeStatement() ast.Statement {
	stmt := &ast.TypeStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	p.nextToken()
	p.skipNewlines()
	for !p.curTokenIs(lexer.END) && !p.curTokenIs(lexer.EOF) {
		switch p.curToken.Type {
		case lexer.FUN:
			method, ok := p.parseFunStatement().(*ast.FunStatement)
			if !ok || method == nil {
				return nil
			}
			stmt.Methods = append(stmt.Methods, method)
		case lexer.IDENT:
			field := p.parseFieldDecl()
			if field == nil {
				return nil
			}
			stmt.Fields = append(stmt.Fields, field)
		default:
			p.addError("unexpected %s in type declaration", p.curToken.Type)
			return nil
		}
		p.nextToken()
		p.skipNewlines()
	}
	if p.curTokenIs(lexer.EOF) {
		p.addError("unexpected end of input, expected end")
	}
	return stmt
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	field := &ast.FieldDecl{Token: p.curToken, Name: p.curToken.Literal}

	if p.peekTokenIs(lexer.QUESTION) {
		p.nextToken()
		field.Optional = true
	}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		field.Annotation = p.curToken.Literal
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		field.Default = p.parseExpression(LOWEST)
	}
	return field
}

// ----------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError("unexpected token %s", p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	value, ok := new(big.Int).SetString(p.curToken.Literal, 10)
	if !ok {
		p.addError("could not parse %q as big integer", p.curToken.Literal)
		return nil
	}
	return &ast.BigIntLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as float", p.curToken.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseDecimalLiteral() ast.Expression {
	value, err := decimal.NewFromString(p.curToken.Literal)
	if err != nil {
		p.addError("could not parse %q as decimal", p.curToken.Literal)
		return nil
	}
	return &ast.DecimalLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBytesLiteral() ast.Expression {
	return &ast.BytesLiteral{Token: p.curToken, Value: []byte(p.curToken.Literal)}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseIfExpression() ast.Expression {
	expr := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	expr.Condition = p.parseExpression(LOWEST)
	expr.Consequence = p.parseBlockStatement(lexer.ELIF, lexer.ELSE, lexer.END)

	switch p.curToken.Type {
	case lexer.ELIF:
		// An elif chain nests as an IfExpression in the alternative block
		nested := p.parseIfExpression()
		expr.Alternative = &ast.BlockStatement{
			Token: p.curToken,
			Statements: []ast.Statement{
				&ast.ExpressionStatement{Token: p.curToken, Expression: nested},
			},
		}
	case lexer.ELSE:
		expr.Alternative = p.parseBlockStatement(lexer.END)
		if !p.curTokenIs(lexer.END) {
			p.addError("expected end to close if, got %s", p.curToken.Type)
		}
	}
	return expr
}

func (p *Parser) parseWhileExpression() ast.Expression {
	expr := &ast.WhileExpression{Token: p.curToken}
	p.nextToken()
	expr.Condition = p.parseExpression(LOWEST)
	expr.Body = p.parseBlockStatement(lexer.END)
	return expr
}

func (p *Parser) parseForExpression() ast.Expression {
	expr := &ast.ForExpression{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	expr.Var = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.IN) {
		return nil
	}
	p.nextToken()
	expr.Iterable = p.parseExpression(LOWEST)
	expr.Body = p.parseBlockStatement(lexer.END)
	return expr
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := &ast.FunctionLiteral{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fn.Params = p.parseFunctionParameters()
	fn.Body = p.parseBlockStatement(lexer.END)
	return fn
}

// parseFunctionParameters parses the parameter list after the opening
// paren. Declaration order is enforced at parse time: required, then
// defaulted, then *rest, then **kw.
func (p *Parser) parseFunctionParameters() []*ast.Parameter {
	var params []*ast.Parameter

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	for {
		param := p.parseParameter()
		if param == nil {
			return nil
		}
		params = append(params, param)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // ,
		p.nextToken()
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.validateParameterOrder(params)
	return params
}

func (p *Parser) parseParameter() *ast.Parameter {
	param := &ast.Parameter{Token: p.curToken}

	if p.curTokenIs(lexer.ASTERISK) {
		// *rest or **kw
		if p.peekTokenIs(lexer.ASTERISK) {
			p.nextToken()
			param.KwVariadic = true
		} else {
			param.Variadic = true
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
	} else if !p.curTokenIs(lexer.IDENT) {
		p.addError("expected parameter name, got %s", p.curToken.Type)
		return nil
	}
	param.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		param.Annotation = p.curToken.Literal
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		if param.Variadic || param.KwVariadic {
			p.addError("variadic parameter %s cannot have a default", param.Name)
			return nil
		}
		p.nextToken()
		p.nextToken()
		param.Default = p.parseExpression(LOWEST)
	}
	return param
}

func (p *Parser) validateParameterOrder(params []*ast.Parameter) {
	const (
		posRequired = iota
		posDefaulted
		posVariadic
		posKwVariadic
	)
	stage := posRequired
	seenVariadic, seenKw := false, false

	for _, param := range params {
		var s int
		switch {
		case param.KwVariadic:
			s = posKwVariadic
			if seenKw {
				p.addError("only one **parameter is allowed")
			}
			seenKw = true
		case param.Variadic:
			s = posVariadic
			if seenVariadic {
				p.addError("only one *parameter is allowed")
			}
			seenVariadic = true
		case param.Default != nil:
			s = posDefaulted
		default:
			s = posRequired
		}
		if s < stage {
			p.addError("parameter %s is out of order: required, defaulted, *rest, **kw", param.Name)
			return
		}
		stage = s
	}
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: function}
	call.Args = p.parseCallArguments()
	return call
}

// parseCallArguments parses positional and named arguments. Once a named
// argument appears, all following arguments must be named.
func (p *Parser) parseCallArguments() []*ast.Argument {
	var args []*ast.Argument

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}

	sawNamed := false
	p.nextToken()
	p.skipNewlines()
	for {
		arg := &ast.Argument{Token: p.curToken}
		// A named argument is IDENT ':' value
		if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.COLON) {
			arg.Name = p.curToken.Literal
			p.nextToken() // :
			p.nextToken()
			arg.Value = p.parseExpression(LOWEST)
			sawNamed = true
		} else {
			if sawNamed {
				p.addError("positional argument after named argument")
			}
			arg.Value = p.parseExpression(LOWEST)
		}
		args = append(args, arg)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // ,
		p.nextToken()
		p.skipNewlines()
	}
	p.skipNewlines()
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	expr := &ast.DotExpression{Token: p.curToken, Left: left}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	expr.Name = p.curToken.Literal
	return expr
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return arr
	}

	p.nextToken()
	p.skipNewlines()
	for {
		elem := p.parseExpression(LOWEST)
		if elem != nil {
			arr.Elements = append(arr.Elements, elem)
		}
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // ,
		p.nextToken()
		p.skipNewlines()
		if p.curTokenIs(lexer.RBRACKET) {
			// Trailing comma
			return arr
		}
	}
	p.skipNewlines()
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return arr
}

func (p *Parser) parseDictLiteral() ast.Expression {
	dict := &ast.DictLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return dict
	}

	p.nextToken()
	p.skipNewlines()
	for {
		pair := &ast.DictPair{}
		switch p.curToken.Type {
		case lexer.IDENT, lexer.STRING:
			pair.Key = p.curToken.Literal
		default:
			p.addError("dict key must be an identifier or string, got %s", p.curToken.Type)
			return nil
		}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		pair.Value = p.parseExpression(LOWEST)
		dict.Pairs = append(dict.Pairs, pair)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // ,
		p.nextToken()
		p.skipNewlines()
		if p.curTokenIs(lexer.RBRACE) {
			return dict
		}
	}
	p.skipNewlines()
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return dict
}

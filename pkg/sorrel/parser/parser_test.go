package parser

import (
	"strings"
	"testing"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	program := p.ParseProgram()
	checkParserErrors(t, p, input)
	return program
}

func checkParserErrors(t *testing.T, p *Parser, input string) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	t.Errorf("parser had %d error(s) for input %q", len(errs), input)
	for _, msg := range errs {
		t.Errorf("  parser error: %s", msg)
	}
	t.FailNow()
}

func parseWithErrors(t *testing.T, input string) []string {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	p.ParseProgram()
	return p.Errors()
}

func firstStatement(t *testing.T, program *ast.Program) ast.Statement {
	t.Helper()
	if len(program.Statements) == 0 {
		t.Fatalf("program has no statements")
	}
	return program.Statements[0]
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input        string
		expectedName string
	}{
		{"let x = 5", "x"},
		{"let result = add(1, 2)", "result"},
		{"let items = [1, 2, 3]", "items"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt, ok := firstStatement(t, program).(*ast.LetStatement)
		if !ok {
			t.Fatalf("expected LetStatement, got %T for input %q", program.Statements[0], tt.input)
		}
		if stmt.Name.Value != tt.expectedName {
			t.Errorf("expected name %q, got %q", tt.expectedName, stmt.Name.Value)
		}
	}
}

func TestAssignStatements(t *testing.T) {
	tests := []struct {
		input      string
		targetKind string
	}{
		{"x = 5", "ident"},
		{"xs[0] = 5", "index"},
		{"p.x = 5", "dot"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt, ok := firstStatement(t, program).(*ast.AssignStatement)
		if !ok {
			t.Fatalf("expected AssignStatement, got %T for input %q", program.Statements[0], tt.input)
		}
		switch tt.targetKind {
		case "ident":
			if _, ok := stmt.Target.(*ast.Identifier); !ok {
				t.Errorf("expected Identifier target, got %T", stmt.Target)
			}
		case "index":
			if _, ok := stmt.Target.(*ast.IndexExpression); !ok {
				t.Errorf("expected IndexExpression target, got %T", stmt.Target)
			}
		case "dot":
			if _, ok := stmt.Target.(*ast.DotExpression); !ok {
				t.Errorf("expected DotExpression target, got %T", stmt.Target)
			}
		}
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	errs := parseWithErrors(t, "1 + 2 = 5")
	if len(errs) == 0 {
		t.Fatal("expected a parse error for invalid assignment target")
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b", "((-a) * b)"},
		{"not ok == b", "((not ok) == b)"},
		{"a + b + c", "((a + b) + c)"},
		{"a + b * c", "(a + (b * c))"},
		{"a * b % c", "((a * b) % c)"},
		{"a + b < c * d", "((a + b) < (c * d))"},
		{"a == b and c != d", "((a == b) and (c != d))"},
		{"a and b or c", "((a and b) or c)"},
		{"a or b ?: c", "((a or b) ?: c)"},
		{"a .. b + c", "(a .. (b + c))"},
		{"x in xs and ok", "((x in xs) and ok)"},
		{"(a + b) * c", "((a + b) * c)"},
		{"a + f(b) * c", "(a + (f(b) * c))"},
		{"xs[0] + 1", "((xs[0]) + 1)"},
		{"p.x * 2", "((p.x) * 2)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		got := strings.TrimSpace(program.String())
		if got != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestIfElifElse(t *testing.T) {
	input := `if x > 1
let a = 1
elif x > 0
let a = 2
else
let a = 3
end`
	program := parseProgram(t, input)
	stmt, ok := firstStatement(t, program).(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", program.Statements[0])
	}
	ifExpr, ok := stmt.Expression.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expected IfExpression, got %T", stmt.Expression)
	}
	if ifExpr.Alternative == nil {
		t.Fatal("expected an alternative for the elif chain")
	}
	// elif is a nested IfExpression in the alternative
	nested, ok := ifExpr.Alternative.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected nested ExpressionStatement, got %T", ifExpr.Alternative.Statements[0])
	}
	inner, ok := nested.Expression.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expected nested IfExpression for elif, got %T", nested.Expression)
	}
	if inner.Alternative == nil {
		t.Fatal("expected else block on the inner IfExpression")
	}
}

func TestWhileAndFor(t *testing.T) {
	program := parseProgram(t, "while x < 10\nx = x + 1\nend")
	stmt := firstStatement(t, program).(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.WhileExpression); !ok {
		t.Fatalf("expected WhileExpression, got %T", stmt.Expression)
	}

	program = parseProgram(t, "for x in [1, 2]\nlet y = x\nend")
	stmt = firstStatement(t, program).(*ast.ExpressionStatement)
	forExpr, ok := stmt.Expression.(*ast.ForExpression)
	if !ok {
		t.Fatalf("expected ForExpression, got %T", stmt.Expression)
	}
	if forExpr.Var.Value != "x" {
		t.Errorf("expected loop variable x, got %q", forExpr.Var.Value)
	}
}

func TestFunStatementParameters(t *testing.T) {
	input := "fun f(a, b: Int, c = 3, d: Int = 4, *rest, **kw)\nreturn a\nend"
	program := parseProgram(t, input)
	stmt, ok := firstStatement(t, program).(*ast.FunStatement)
	if !ok {
		t.Fatalf("expected FunStatement, got %T", program.Statements[0])
	}
	params := stmt.Function.Params
	if len(params) != 6 {
		t.Fatalf("expected 6 parameters, got %d", len(params))
	}

	if params[0].Name != "a" || params[0].Default != nil || params[0].Annotation != "" {
		t.Errorf("param a parsed wrong: %+v", params[0])
	}
	if params[1].Annotation != "Int" {
		t.Errorf("expected annotation Int on b, got %q", params[1].Annotation)
	}
	if params[2].Default == nil {
		t.Error("expected default on c")
	}
	if params[3].Annotation != "Int" || params[3].Default == nil {
		t.Errorf("param d parsed wrong: %+v", params[3])
	}
	if !params[4].Variadic || params[4].Name != "rest" {
		t.Errorf("expected *rest variadic, got %+v", params[4])
	}
	if !params[5].KwVariadic || params[5].Name != "kw" {
		t.Errorf("expected **kw variadic, got %+v", params[5])
	}
}

func TestParameterOrderErrors(t *testing.T) {
	tests := []string{
		// Required after defaulted
		"fun f(a = 1, b)\nend",
		// Positional after *rest
		"fun f(*rest, a)\nend",
		// Two *rest parameters
		"fun f(*a, *b)\nend",
		// *rest cannot take a default
		"fun f(*rest = [1])\nend",
	}
	for _, input := range tests {
		if errs := parseWithErrors(t, input); len(errs) == 0 {
			t.Errorf("expected a parse error for %q", input)
		}
	}
}

func TestCallArguments(t *testing.T) {
	input := "f(1, x, b: 2, c: g(3))"
	program := parseProgram(t, input)
	stmt := firstStatement(t, program).(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", stmt.Expression)
	}
	if len(call.Args) != 4 {
		t.Fatalf("expected 4 arguments, got %d", len(call.Args))
	}
	wantNames := []string{"", "", "b", "c"}
	for i, want := range wantNames {
		if call.Args[i].Name != want {
			t.Errorf("arg %d: expected name %q, got %q", i, want, call.Args[i].Name)
		}
	}
}

func TestPositionalAfterNamedIsAnError(t *testing.T) {
	errs := parseWithErrors(t, "f(a: 1, 2)")
	if len(errs) == 0 {
		t.Fatal("expected a parse error for positional argument after named argument")
	}
}

func TestLiterals(t *testing.T) {
	program := parseProgram(t, "123n")
	stmt := firstStatement(t, program).(*ast.ExpressionStatement)
	big, ok := stmt.Expression.(*ast.BigIntLiteral)
	if !ok {
		t.Fatalf("expected BigIntLiteral, got %T", stmt.Expression)
	}
	if big.Value.String() != "123" {
		t.Errorf("expected 123, got %s", big.Value.String())
	}

	program = parseProgram(t, "1.50d")
	stmt = firstStatement(t, program).(*ast.ExpressionStatement)
	dec, ok := stmt.Expression.(*ast.DecimalLiteral)
	if !ok {
		t.Fatalf("expected DecimalLiteral, got %T", stmt.Expression)
	}
	if dec.Value.String() != "1.5" {
		t.Errorf("expected 1.5, got %s", dec.Value.String())
	}

	program = parseProgram(t, `b"raw"`)
	stmt = firstStatement(t, program).(*ast.ExpressionStatement)
	bs, ok := stmt.Expression.(*ast.BytesLiteral)
	if !ok {
		t.Fatalf("expected BytesLiteral, got %T", stmt.Expression)
	}
	if string(bs.Value) != "raw" {
		t.Errorf("expected raw, got %q", string(bs.Value))
	}
}

func TestArrayAndDictLiterals(t *testing.T) {
	program := parseProgram(t, "[1, 2, 3,]")
	stmt := firstStatement(t, program).(*ast.ExpressionStatement)
	arr, ok := stmt.Expression.(*ast.ArrayLiteral)
	if !ok {
		t.Fatalf("expected ArrayLiteral, got %T", stmt.Expression)
	}
	if len(arr.Elements) != 3 {
		t.Errorf("expected 3 elements, got %d", len(arr.Elements))
	}

	program = parseProgram(t, `{a: 1, "b c": 2}`)
	stmt = firstStatement(t, program).(*ast.ExpressionStatement)
	dict, ok := stmt.Expression.(*ast.DictLiteral)
	if !ok {
		t.Fatalf("expected DictLiteral, got %T", stmt.Expression)
	}
	if len(dict.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(dict.Pairs))
	}
	if dict.Pairs[0].Key != "a" || dict.Pairs[1].Key != "b c" {
		t.Errorf("keys parsed wrong: %q, %q", dict.Pairs[0].Key, dict.Pairs[1].Key)
	}
}

func TestTryStatement(t *testing.T) {
	input := `try
let x = 1
catch e: TypeErr
let y = 2
catch e
let z = 3
ensure
let w = 4
end`
	program := parseProgram(t, input)
	stmt, ok := firstStatement(t, program).(*ast.TryStatement)
	if !ok {
		t.Fatalf("expected TryStatement, got %T", program.Statements[0])
	}
	if len(stmt.Catches) != 2 {
		t.Fatalf("expected 2 catch clauses, got %d", len(stmt.Catches))
	}
	if stmt.Catches[0].Kind != "TypeErr" {
		t.Errorf("expected kind TypeErr, got %q", stmt.Catches[0].Kind)
	}
	if stmt.Catches[1].Kind != "" {
		t.Errorf("expected catch-all, got kind %q", stmt.Catches[1].Kind)
	}
	if stmt.Ensure == nil {
		t.Error("expected ensure block")
	}
}

func TestRaiseStatement(t *testing.T) {
	program := parseProgram(t, `raise TypeErr("bad")`)
	stmt, ok := firstStatement(t, program).(*ast.RaiseStatement)
	if !ok {
		t.Fatalf("expected RaiseStatement, got %T", program.Statements[0])
	}
	if _, ok := stmt.Value.(*ast.CallExpression); !ok {
		t.Errorf("expected CallExpression operand, got %T", stmt.Value)
	}
}

func TestTypeStatement(t *testing.T) {
	input := `type Point
x: Int
y: Int = 0
label?
fun dist()
return 0
end
end`
	program := parseProgram(t, input)
	stmt, ok := firstStatement(t, program).(*ast.TypeStatement)
	if !ok {
		t.Fatalf("expected TypeStatement, got %T", program.Statements[0])
	}
	if stmt.Name.Value != "Point" {
		t.Errorf("expected name Point, got %q", stmt.Name.Value)
	}
	if len(stmt.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(stmt.Fields))
	}
	if stmt.Fields[0].Annotation != "Int" || stmt.Fields[0].Default != nil {
		t.Errorf("field x parsed wrong: %+v", stmt.Fields[0])
	}
	if stmt.Fields[1].Default == nil {
		t.Error("expected default on y")
	}
	if !stmt.Fields[2].Optional {
		t.Error("expected label to be optional")
	}
	if len(stmt.Methods) != 1 || stmt.Methods[0].Name.Value != "dist" {
		t.Errorf("methods parsed wrong: %+v", stmt.Methods)
	}
}

func TestReturnVariants(t *testing.T) {
	program := parseProgram(t, "fun f()\nreturn\nend")
	fn := firstStatement(t, program).(*ast.FunStatement)
	ret, ok := fn.Function.Body.Statements[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected ReturnStatement, got %T", fn.Function.Body.Statements[0])
	}
	if ret.ReturnValue != nil {
		t.Errorf("expected bare return, got %v", ret.ReturnValue)
	}
}

func TestParseErrorsCarryMessages(t *testing.T) {
	tests := []string{
		"let = 5",
		"if true\nlet x = 1",
		"fun f(\nend",
	}
	for _, input := range tests {
		if errs := parseWithErrors(t, input); len(errs) == 0 {
			t.Errorf("expected a parse error for %q", input)
		}
	}
}

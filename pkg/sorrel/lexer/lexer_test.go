package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let five = 5
let big = 123n
let price = 1.50d
let pi = 3.14
let raw = b"ab"
fun add(x, y)
return x + y
end
let ok = 5 < 10 and 10 > 5
if five <= 10 or five >= 1
five == 5
five != 4
end
"hello" .. "world"
nil ?: "default"
xs[0]
p.x
{a: 1}
# a comment
try
raise TypeErr("bad")
catch e
ensure
end
type Point
end
for i in [1, 2]
break
continue
end
while not false
end
5 % 2
-5
!true
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"}, {IDENT, "five"}, {ASSIGN, "="}, {INT, "5"}, {NEWLINE, "\n"},
		{LET, "let"}, {IDENT, "big"}, {ASSIGN, "="}, {BIGINT, "123"}, {NEWLINE, "\n"},
		{LET, "let"}, {IDENT, "price"}, {ASSIGN, "="}, {DECIMAL, "1.50"}, {NEWLINE, "\n"},
		{LET, "let"}, {IDENT, "pi"}, {ASSIGN, "="}, {FLOAT, "3.14"}, {NEWLINE, "\n"},
		{LET, "let"}, {IDENT, "raw"}, {ASSIGN, "="}, {BYTES, "ab"}, {NEWLINE, "\n"},
		{FUN, "fun"}, {IDENT, "add"}, {LPAREN, "("}, {IDENT, "x"}, {COMMA, ","},
		{IDENT, "y"}, {RPAREN, ")"}, {NEWLINE, "\n"},
		{RETURN, "return"}, {IDENT, "x"}, {PLUS, "+"}, {IDENT, "y"}, {NEWLINE, "\n"},
		{END, "end"}, {NEWLINE, "\n"},
		{LET, "let"}, {IDENT, "ok"}, {ASSIGN, "="}, {INT, "5"}, {LT, "<"}, {INT, "10"},
		{AND, "and"}, {INT, "10"}, {GT, ">"}, {INT, "5"}, {NEWLINE, "\n"},
		{IF, "if"}, {IDENT, "five"}, {LTE, "<="}, {INT, "10"},
		{OR, "or"}, {IDENT, "five"}, {GTE, ">="}, {INT, "1"}, {NEWLINE, "\n"},
		{IDENT, "five"}, {EQ, "=="}, {INT, "5"}, {NEWLINE, "\n"},
		{IDENT, "five"}, {NOT_EQ, "!="}, {INT, "4"}, {NEWLINE, "\n"},
		{END, "end"}, {NEWLINE, "\n"},
		{STRING, "hello"}, {CONCAT, ".."}, {STRING, "world"}, {NEWLINE, "\n"},
		{NIL, "nil"}, {ELVIS, "?:"}, {STRING, "default"}, {NEWLINE, "\n"},
		{IDENT, "xs"}, {LBRACKET, "["}, {INT, "0"}, {RBRACKET, "]"}, {NEWLINE, "\n"},
		{IDENT, "p"}, {DOT, "."}, {IDENT, "x"}, {NEWLINE, "\n"},
		{LBRACE, "{"}, {IDENT, "a"}, {COLON, ":"}, {INT, "1"}, {RBRACE, "}"}, {NEWLINE, "\n"},
		{TRY, "try"}, {NEWLINE, "\n"},
		{RAISE, "raise"}, {IDENT, "TypeErr"}, {LPAREN, "("}, {STRING, "bad"},
		{RPAREN, ")"}, {NEWLINE, "\n"},
		{CATCH, "catch"}, {IDENT, "e"}, {NEWLINE, "\n"},
		{ENSURE, "ensure"}, {NEWLINE, "\n"},
		{END, "end"}, {NEWLINE, "\n"},
		{TYPE, "type"}, {IDENT, "Point"}, {NEWLINE, "\n"},
		{END, "end"}, {NEWLINE, "\n"},
		{FOR, "for"}, {IDENT, "i"}, {IN, "in"}, {LBRACKET, "["}, {INT, "1"},
		{COMMA, ","}, {INT, "2"}, {RBRACKET, "]"}, {NEWLINE, "\n"},
		{BREAK, "break"}, {NEWLINE, "\n"},
		{CONTINUE, "continue"}, {NEWLINE, "\n"},
		{END, "end"}, {NEWLINE, "\n"},
		{WHILE, "while"}, {NOT, "not"}, {FALSE, "false"}, {NEWLINE, "\n"},
		{END, "end"}, {NEWLINE, "\n"},
		{INT, "5"}, {PERCENT, "%"}, {INT, "2"}, {NEWLINE, "\n"},
		{MINUS, "-"}, {INT, "5"}, {NEWLINE, "\n"},
		{BANG, "!"}, {TRUE, "true"}, {NEWLINE, "\n"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d]: wrong token type, expected %v, got %v (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d]: wrong literal, expected %q, got %q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNumberSuffixes(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    TokenType
		expectedLiteral string
	}{
		{"42", INT, "42"},
		{"3.14", FLOAT, "3.14"},
		{"42n", BIGINT, "42"},
		{"1.50d", DECIMAL, "1.50"},
		{"7d", DECIMAL, "7"},
		// A float cannot take the bigint suffix
		{"1.5n", ILLEGAL, "1.5n"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Errorf("input %q: expected literal %q, got %q", tt.input, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestDotAfterNumber(t *testing.T) {
	// 1..2 is concat between integers, not a malformed float
	l := New("1..2")
	toks := []Token{l.NextToken(), l.NextToken(), l.NextToken()}
	if toks[0].Type != INT || toks[1].Type != CONCAT || toks[2].Type != INT {
		t.Fatalf("expected INT CONCAT INT, got %v %v %v", toks[0].Type, toks[1].Type, toks[2].Type)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Errorf("input %s: expected STRING, got %v", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %s: expected %q, got %q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	l := New("1 # the rest vanishes\n2")
	first := l.NextToken()
	second := l.NextToken()
	third := l.NextToken()
	if first.Type != INT || first.Literal != "1" {
		t.Fatalf("expected INT 1, got %v %q", first.Type, first.Literal)
	}
	if second.Type != NEWLINE {
		t.Fatalf("expected NEWLINE, got %v", second.Type)
	}
	if third.Type != INT || third.Literal != "2" {
		t.Fatalf("expected INT 2, got %v %q", third.Type, third.Literal)
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("let x = 1\nlet yy = 2")
	var tok Token
	for tok = l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
		if tok.Literal == "yy" {
			if tok.Line != 2 {
				t.Errorf("expected line 2 for yy, got %d", tok.Line)
			}
			if tok.Column != 5 {
				t.Errorf("expected column 5 for yy, got %d", tok.Column)
			}
		}
	}
}

func TestConsecutiveNewlinesCollapse(t *testing.T) {
	l := New("1\n\n\n2")
	toks := []TokenType{}
	for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
		toks = append(toks, tok.Type)
	}
	want := []TokenType{INT, NEWLINE, INT}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], toks[i])
		}
	}
}

package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE
	COMMENT // # single line comment

	// Identifiers and literals
	IDENT   // add, counter, x
	INT     // 1343456
	BIGINT  // 123n
	FLOAT   // 3.14159
	DECIMAL // 1.50d
	STRING  // "hello"
	BYTES   // b"raw"

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	CONCAT   // ..
	ELVIS    // ?:
	QUESTION // ?

	// Delimiters
	COMMA    // ,
	COLON    // :
	DOT      // .
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// Keywords
	FUN
	LET
	RETURN
	IF
	ELIF
	ELSE
	WHILE
	FOR
	IN
	BREAK
	CONTINUE
	END
	TRUE
	FALSE
	NIL
	AND
	OR
	NOT
	TRY
	CATCH
	ENSURE
	RAISE
	TYPE
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", NEWLINE: "NEWLINE", COMMENT: "COMMENT",
	IDENT: "IDENT", INT: "INT", BIGINT: "BIGINT", FLOAT: "FLOAT",
	DECIMAL: "DECIMAL", STRING: "STRING", BYTES: "BYTES",
	ASSIGN: "=", PLUS: "+", MINUS: "-", BANG: "!", ASTERISK: "*",
	SLASH: "/", PERCENT: "%", LT: "<", GT: ">", LTE: "<=", GTE: ">=",
	EQ: "==", NOT_EQ: "!=", CONCAT: "..", ELVIS: "?:", QUESTION: "?",
	COMMA: ",", COLON: ":", DOT: ".", LPAREN: "(", RPAREN: ")",
	LBRACKET: "[", RBRACKET: "]", LBRACE: "{", RBRACE: "}",
	FUN: "fun", LET: "let", RETURN: "return", IF: "if", ELIF: "elif",
	ELSE: "else", WHILE: "while", FOR: "for", IN: "in", BREAK: "break",
	CONTINUE: "continue", END: "end", TRUE: "true", FALSE: "false",
	NIL: "nil", AND: "and", OR: "or", NOT: "not", TRY: "try",
	CATCH: "catch", ENSURE: "ensure", RAISE: "raise", TYPE: "type",
}

// String returns a human-readable name for the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"fun":      FUN,
	"let":      LET,
	"return":   RETURN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"end":      END,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"try":      TRY,
	"catch":    CATCH,
	"ensure":   ENSURE,
	"raise":    RAISE,
	"type":     TYPE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// Lexer tokenizes Sorrel source code
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position (after current char)
	ch           rune // current char under examination
	line         int
	column       int
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// NextToken returns the next token in the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	// Comments run to end of line
	for l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		l.skipWhitespace()
	}

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case '\n':
		tok.Type = NEWLINE
		tok.Literal = "\n"
		l.readChar()
		// Collapse consecutive newlines into one token
		for l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		return tok
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = EQ, "=="
		} else {
			tok.Type, tok.Literal = ASSIGN, "="
		}
	case '+':
		tok.Type, tok.Literal = PLUS, "+"
	case '-':
		tok.Type, tok.Literal = MINUS, "-"
	case '*':
		tok.Type, tok.Literal = ASTERISK, "*"
	case '/':
		tok.Type, tok.Literal = SLASH, "/"
	case '%':
		tok.Type, tok.Literal = PERCENT, "%"
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = NOT_EQ, "!="
		} else {
			tok.Type, tok.Literal = BANG, "!"
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = LTE, "<="
		} else {
			tok.Type, tok.Literal = LT, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = GTE, ">="
		} else {
			tok.Type, tok.Literal = GT, ">"
		}
	case '?':
		if l.peekChar() == ':' {
			l.readChar()
			tok.Type, tok.Literal = ELVIS, "?:"
		} else {
			tok.Type, tok.Literal = QUESTION, "?"
		}
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			tok.Type, tok.Literal = CONCAT, ".."
		} else {
			tok.Type, tok.Literal = DOT, "."
		}
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case ':':
		tok.Type, tok.Literal = COLON, ":"
	case '(':
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case '[':
		tok.Type, tok.Literal = LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = RBRACKET, "]"
	case '{':
		tok.Type, tok.Literal = LBRACE, "{"
	case '}':
		tok.Type, tok.Literal = RBRACE, "}"
	case '"':
		tok.Type = STRING
		tok.Literal = l.readString()
		return tok
	case 0:
		tok.Type = EOF
		tok.Literal = ""
		return tok
	default:
		if l.ch == 'b' && l.peekChar() == '"' {
			l.readChar() // consume 'b'
			tok.Type = BYTES
			tok.Literal = l.readString()
			return tok
		}
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		if unicode.IsDigit(l.ch) {
			return l.readNumber(tok)
		}
		tok.Type = ILLEGAL
		tok.Literal = string(l.ch)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads INT, FLOAT, DECIMAL (d suffix), or BIGINT (n suffix)
func (l *Lexer) readNumber(tok Token) Token {
	start := l.position
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	// A '.' only starts a fraction if followed by a digit; otherwise it is
	// the concat/dot operator
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	literal := l.input[start:l.position]
	switch l.ch {
	case 'd':
		l.readChar()
		tok.Type = DECIMAL
		tok.Literal = literal
		return tok
	case 'n':
		l.readChar()
		if isFloat {
			tok.Type = ILLEGAL
			tok.Literal = literal + "n"
			return tok
		}
		tok.Type = BIGINT
		tok.Literal = literal
		return tok
	}
	if isFloat {
		tok.Type = FLOAT
	} else {
		tok.Type = INT
	}
	tok.Literal = literal
	return tok
}

// readString reads a double-quoted string with escape sequences
func (l *Lexer) readString() string {
	var sb strings.Builder
	l.readChar() // skip opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case '0':
				sb.WriteRune(0)
			default:
				sb.WriteRune(l.ch)
			}
		} else {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar() // skip closing quote
	return sb.String()
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

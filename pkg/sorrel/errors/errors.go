// Package errors provides the structured error type shared by the parser
// and the evaluator, plus the runtime exception kind taxonomy.
//
// SorrelError is what hosts see at the embedding boundary: a kind, a
// message, a source position, and the call-stack trace frozen when the
// fault was raised.
package errors

import (
	"fmt"
	"strings"
)

// Kind names one exception kind in the runtime taxonomy. The taxonomy is
// open: user programs may declare further kinds, which match handlers by
// name and always match the root kind Err.
type Kind string

const (
	KindErr        Kind = "Err"        // root of the hierarchy, catches all
	KindName       Kind = "NameErr"    // name not found
	KindType       Kind = "TypeErr"    // type mismatch
	KindValue      Kind = "ValueErr"   // invalid value
	KindArg        Kind = "ArgErr"     // wrong arguments
	KindAttr       Kind = "AttrErr"    // attribute not found
	KindIndex      Kind = "IndexErr"   // index out of range
	KindKey        Kind = "KeyErr"     // key not found
	KindArithmetic Kind = "ArithErr"   // division by zero, overflow
	KindImport     Kind = "ImportErr"  // surfaced by the module layer
	KindRuntime    Kind = "RuntimeErr" // generic runtime failure
	KindParse      Kind = "ParseErr"   // syntax errors from the parser
)

// Builtin reports whether k is one of the predefined kinds
func Builtin(k Kind) bool {
	switch k {
	case KindErr, KindName, KindType, KindValue, KindArg, KindAttr,
		KindIndex, KindKey, KindArithmetic, KindImport, KindRuntime, KindParse:
		return true
	}
	return false
}

// Matches reports whether an exception of kind k is caught by a handler
// for kind handler. The hierarchy is flat with Err at the root: Err
// catches everything, any other kind catches itself only.
func Matches(k, handler Kind) bool {
	if handler == KindErr || handler == "" {
		return true
	}
	return k == handler
}

// SorrelError is a structured parse or runtime error.
type SorrelError struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Line    int      `json:"line"`            // 1-based, 0 if unknown
	Column  int      `json:"column"`          // 1-based, 0 if unknown
	Stack   []string `json:"stack,omitempty"` // innermost first
	Hints   []string `json:"hints,omitempty"`
}

// Error implements the error interface.
func (e *SorrelError) Error() string { return e.String() }

// String returns a single-line rendering with location prefix.
func (e *SorrelError) String() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d, column %d: ", e.Line, e.Column)
	}
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// PrettyString returns a multi-line rendering with the stack trace, for
// host-level error reporting.
func (e *SorrelError) PrettyString() string {
	var sb strings.Builder
	if e.Kind == KindParse {
		sb.WriteString("Parse error")
	} else {
		sb.WriteString("Runtime error")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d, column %d", e.Line, e.Column)
	}
	sb.WriteString(":\n  ")
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	for _, frame := range e.Stack {
		sb.WriteString("\n  at ")
		sb.WriteString(frame)
	}
	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// New creates a SorrelError with no position.
func New(kind Kind, format string, args ...any) *SorrelError {
	return &SorrelError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

package evaluator

import (
	"fmt"
	"sort"
)

// Logger interface for log()/logLine() output
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// StackEntry is one logical call frame, recorded on entry to a function
// and removed on every exit path
type StackEntry struct {
	Function string
	Line     int
	Column   int
}

func (se StackEntry) String() string {
	if se.Line > 0 {
		return fmt.Sprintf("%s (line %d)", se.Function, se.Line)
	}
	return se.Function
}

// programState is shared by every environment derived from one root: the
// live call stack used for traces, and the output logger. Nested scopes
// all point at the same instance.
type programState struct {
	callStack []StackEntry
	logger    Logger
}

// Environment holds variable bindings with a pointer to the enclosing
// lexical scope
type Environment struct {
	store map[string]Object
	outer *Environment
	prog  *programState
}

// NewEnvironment creates a new root environment
func NewEnvironment() *Environment {
	return &Environment{
		store: make(map[string]Object),
		prog:  &programState{logger: DefaultLogger},
	}
}

// NewEnclosedEnvironment creates a new environment chained to outer. The
// program-wide state (call stack, logger) is inherited, not copied.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := &Environment{store: make(map[string]Object)}
	if outer != nil {
		env.outer = outer
		env.prog = outer.prog
	} else {
		env.prog = &programState{logger: DefaultLogger}
	}
	return env
}

// Get retrieves a value, searching outward through the scope chain
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Set declares a binding in this scope, shadowing any outer binding of
// the same name
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Assign rebinds an existing name in the nearest scope that declares it.
// Returns false when no scope in the chain has the name; assignment never
// creates bindings.
func (e *Environment) Assign(name string, val Object) bool {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}

// Has reports whether name is declared anywhere in the chain
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// SetLogger replaces the program-wide logger
func (e *Environment) SetLogger(l Logger) {
	e.prog.logger = l
}

// Logger returns the program-wide logger
func (e *Environment) Logger() Logger {
	return e.prog.logger
}

// PushFrame records entry into a function call
func (e *Environment) PushFrame(fn string, line, column int) {
	e.prog.callStack = append(e.prog.callStack, StackEntry{Function: fn, Line: line, Column: column})
}

// PopFrame removes the most recent call frame. Paired with PushFrame on
// every exit path, normal or exceptional, so the stack always mirrors the
// live calls.
func (e *Environment) PopFrame() {
	if n := len(e.prog.callStack); n > 0 {
		e.prog.callStack = e.prog.callStack[:n-1]
	}
}

// CallDepth returns the number of live call frames
func (e *Environment) CallDepth() int {
	return len(e.prog.callStack)
}

// StackTrace returns the live call stack innermost first
func (e *Environment) StackTrace() []string {
	frames := e.prog.callStack
	trace := make([]string, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		trace = append(trace, frames[i].String())
	}
	return trace
}

// AllIdentifiers returns every name visible from this scope, sorted.
// Used for suggestions in name-not-found messages.
func (e *Environment) AllIdentifiers() []string {
	seen := make(map[string]bool)
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

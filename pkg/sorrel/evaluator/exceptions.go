package evaluator

import (
	"fmt"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// throw builds a raised exception of the given kind, freezing the current
// call stack into it. Every runtime fault in the evaluator goes through
// here so traces are captured uniformly.
func throw(env *Environment, tok lexer.Token, kind serrors.Kind, format string, args ...interface{}) *Exception {
	return &Exception{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Stack:   env.StackTrace(),
		Line:    tok.Line,
		Column:  tok.Column,
		raised:  true,
	}
}

// raiseObject turns an arbitrary raise operand into a raised exception.
// Strings become RuntimeErr; exception objects are (re)raised with a
// fresh trace snapshot. Anything else is a TypeErr.
func raiseObject(env *Environment, tok lexer.Token, obj Object) *Exception {
	switch obj := obj.(type) {
	case *Exception:
		raised := &Exception{
			Kind:    obj.Kind,
			Message: obj.Message,
			Stack:   env.StackTrace(),
			Cause:   obj.Cause,
			Line:    tok.Line,
			Column:  tok.Column,
			raised:  true,
		}
		return raised
	case *String:
		return throw(env, tok, serrors.KindRuntime, "%s", obj.Value)
	default:
		return throw(env, tok, serrors.KindType, "cannot raise %s, expected exception or string", obj.Type())
	}
}

// isRaised reports whether obj is an exception in flight. A caught
// exception bound in a handler is an ordinary value and returns false.
func isRaised(obj Object) bool {
	if ex, ok := obj.(*Exception); ok {
		return ex.raised
	}
	return false
}

// catchException clears the in-flight flag and returns the exception as
// a plain value for the handler binding
func catchException(ex *Exception) *Exception {
	caught := *ex
	caught.raised = false
	return &caught
}

// isControlFlow reports whether obj short-circuits statement sequencing:
// a raised exception, a return, or a loop signal
func isControlFlow(obj Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case RETURN_OBJ, BREAK_OBJ, CONTINUE_OBJ:
		return true
	case EXCEPTION_OBJ:
		return isRaised(obj)
	}
	return false
}

// exceptionMember resolves attribute access on an exception value:
// kind, message, stack, cause. Each is exposed as a zero-argument
// builtin so handlers can call e.message().
func exceptionMember(ex *Exception, name string, tok lexer.Token, env *Environment) Object {
	switch name {
	case "kind":
		return &Builtin{Name: "kind", Fn: func(args []Object, env *Environment) Object {
			return &String{Value: string(ex.Kind)}
		}}
	case "message":
		return &Builtin{Name: "message", Fn: func(args []Object, env *Environment) Object {
			return &String{Value: ex.Message}
		}}
	case "stack":
		return &Builtin{Name: "stack", Fn: func(args []Object, env *Environment) Object {
			frames := make([]Object, len(ex.Stack))
			for i, f := range ex.Stack {
				frames[i] = &String{Value: f}
			}
			return &Array{Elements: frames}
		}}
	case "cause":
		return &Builtin{Name: "cause", Fn: func(args []Object, env *Environment) Object {
			if ex.Cause == nil {
				return NULL
			}
			return ex.Cause
		}}
	}
	return throw(env, tok, serrors.KindAttr, "exception has no attribute %q", name)
}

// kindConstructors returns one constructor builtin per predefined
// exception kind, so programs can write raise TypeErr("boom"). The
// returned exception is a plain value until raise puts it in flight.
func kindConstructors() map[string]*Builtin {
	kinds := []serrors.Kind{
		serrors.KindErr, serrors.KindName, serrors.KindType, serrors.KindValue,
		serrors.KindArg, serrors.KindAttr, serrors.KindIndex, serrors.KindKey,
		serrors.KindArithmetic, serrors.KindImport, serrors.KindRuntime,
	}
	ctors := make(map[string]*Builtin, len(kinds))
	for _, k := range kinds {
		kind := k
		ctors[string(kind)] = &Builtin{
			Name: string(kind),
			Fn: func(args []Object, env *Environment) Object {
				msg := ""
				if len(args) > 1 {
					return &Exception{
						Kind:    serrors.KindArg,
						Message: fmt.Sprintf("%s takes at most 1 argument, got %d", kind, len(args)),
						Stack:   env.StackTrace(),
						raised:  true,
					}
				}
				if len(args) == 1 {
					s, ok := args[0].(*String)
					if !ok {
						return &Exception{
							Kind:    serrors.KindType,
							Message: fmt.Sprintf("%s message must be a string, got %s", kind, args[0].Type()),
							Stack:   env.StackTrace(),
							raised:  true,
						}
					}
					msg = s.Value
				}
				return &Exception{Kind: kind, Message: msg}
			},
		}
	}
	return ctors
}

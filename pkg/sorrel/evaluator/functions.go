package evaluator

import (
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// MaxCallDepth bounds language-level recursion; past it every call
// faults instead of exhausting the native stack
const MaxCallDepth = 10000

// callArg is one evaluated call-site argument; name is "" for positional
type callArg struct {
	name  string
	value Object
}

// applyFunction invokes any callable: user functions, bound methods,
// builtins, and type constructors. One call frame is recorded per
// logical call and removed on every exit path, so the live stack always
// matches the active calls and raise-time snapshots are accurate.
func applyFunction(fn Object, args []callArg, tok lexer.Token, env *Environment) Object {
	if env.CallDepth() >= MaxCallDepth {
		return throw(env, tok, serrors.KindRuntime, "maximum call depth %d exceeded", MaxCallDepth)
	}

	switch fn := fn.(type) {
	case *Function:
		return callFunction(fn, nil, args, tok, env)
	case *BoundMethod:
		return callFunction(fn.Fn, fn.Receiver, args, tok, env)
	case *Builtin:
		return callBuiltin(fn, args, tok, env)
	case *StructType:
		return constructStruct(fn, args, tok, env)
	}
	return throw(env, tok, serrors.KindType, "%s is not callable", fn.Type())
}

func callFunction(fn *Function, receiver Object, args []callArg, tok lexer.Token, env *Environment) Object {
	name := fn.Name
	if name == "" {
		name = "<lambda>"
	}
	env.PushFrame(name, tok.Line, tok.Column)
	defer env.PopFrame()

	fnEnv, ex := bindArguments(fn, receiver, args, tok, env)
	if ex != nil {
		return ex
	}

	result := evalStatements(fn.Body.Statements, fnEnv)
	switch result := result.(type) {
	case *ReturnValue:
		return result.Value
	case *BreakSignal:
		return throw(env, tok, serrors.KindRuntime, "break outside loop")
	case *ContinueSignal:
		return throw(env, tok, serrors.KindRuntime, "continue outside loop")
	}
	return result
}

func callBuiltin(fn *Builtin, args []callArg, tok lexer.Token, env *Environment) Object {
	values := make([]Object, len(args))
	for i, a := range args {
		if a.name != "" {
			return throw(env, tok, serrors.KindArg, "%s does not accept named arguments", fn.Name)
		}
		values[i] = a.value
	}
	env.PushFrame(fn.Name, tok.Line, tok.Column)
	defer env.PopFrame()
	return fn.Fn(values, env)
}

// bindArguments matches call-site arguments to declared parameters:
// positional arguments fill parameters left to right, named arguments
// fill by name, *rest collects excess positional, **kw collects unknown
// named, and defaults are evaluated at call time inside the call scope
// so a default can reference any parameter bound before it.
//
// f(a: 1, b: 2), f(1, 2), and f(1, b: 2) all bind identically for
// fun f(a, b).
func bindArguments(fn *Function, receiver Object, args []callArg, tok lexer.Token, env *Environment) (*Environment, *Exception) {
	fnEnv := NewEnclosedEnvironment(fn.Env)
	if receiver != nil {
		fnEnv.Set("self", receiver)
	}

	fnName := fn.Name
	if fnName == "" {
		fnName = "<lambda>"
	}

	var positional []*ast.Parameter
	var restParam, kwParam *ast.Parameter
	for _, p := range fn.Params {
		switch {
		case p.Variadic:
			restParam = p
		case p.KwVariadic:
			kwParam = p
		default:
			positional = append(positional, p)
		}
	}

	provided := make(map[string]Object)
	var rest []Object
	var kw *Dict

	// Phase 1: positional arguments fill declared parameters in order;
	// the excess goes to *rest or is an arity fault
	posIdx := 0
	for _, a := range args {
		if a.name != "" {
			continue
		}
		if posIdx < len(positional) {
			provided[positional[posIdx].Name] = a.value
			posIdx++
			continue
		}
		if restParam == nil {
			return nil, throw(env, tok, serrors.KindArg,
				"%s takes at most %d positional arguments", fnName, len(positional))
		}
		rest = append(rest, a.value)
	}

	// Phase 2: named arguments fill by declared name; a name already
	// bound positionally is a fault, an unknown name goes to **kw or is
	// a fault
	for _, a := range args {
		if a.name == "" {
			continue
		}
		param := paramByName(positional, a.name)
		if param == nil {
			if kwParam == nil {
				return nil, throw(env, tok, serrors.KindArg,
					"%s got an unexpected named argument %q", fnName, a.name)
			}
			if kw == nil {
				kw = NewDict()
			}
			if _, dup := kw.Get(a.name); dup {
				return nil, throw(env, tok, serrors.KindArg,
					"%s got named argument %q twice", fnName, a.name)
			}
			kw.Set(a.name, a.value)
			continue
		}
		if _, dup := provided[a.name]; dup {
			return nil, throw(env, tok, serrors.KindArg,
				"%s got multiple values for argument %q", fnName, a.name)
		}
		provided[a.name] = a.value
	}

	// Phase 3: bind in declaration order, evaluating defaults in the
	// call scope; a parameter with neither a value nor a default is a
	// fault
	for _, p := range positional {
		val, ok := provided[p.Name]
		if !ok {
			if p.Default == nil {
				return nil, throw(env, tok, serrors.KindArg,
					"%s missing required argument %q", fnName, p.Name)
			}
			val = Eval(p.Default, fnEnv)
			if ex, bad := val.(*Exception); bad && ex.raised {
				return nil, ex
			}
		}
		if ex := checkAnnotation(val, p.Annotation, fnName, p.Name, tok, env); ex != nil {
			return nil, ex
		}
		fnEnv.Set(p.Name, val)
	}

	if restParam != nil {
		fnEnv.Set(restParam.Name, &Array{Elements: rest})
	}
	if kwParam != nil {
		if kw == nil {
			kw = NewDict()
		}
		fnEnv.Set(kwParam.Name, kw)
	}

	return fnEnv, nil
}

func paramByName(params []*ast.Parameter, name string) *ast.Parameter {
	for _, p := range params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// checkAnnotation enforces a parameter or field type annotation
func checkAnnotation(val Object, annotation, owner, name string, tok lexer.Token, env *Environment) *Exception {
	if annotation == "" || annotationMatches(val, annotation) {
		return nil
	}
	return throw(env, tok, serrors.KindType,
		"%s expects %s for %q, got %s", owner, annotation, name, typeName(val))
}

func annotationMatches(val Object, annotation string) bool {
	switch annotation {
	case "Any":
		return true
	case "Num":
		return isNumeric(val)
	case "Int":
		_, ok := val.(*Integer)
		return ok
	case "BigInt":
		_, ok := val.(*BigInt)
		return ok
	case "Float":
		_, ok := val.(*Float)
		return ok
	case "Decimal":
		_, ok := val.(*Decimal)
		return ok
	case "Str":
		_, ok := val.(*String)
		return ok
	case "Bytes":
		_, ok := val.(*Bytes)
		return ok
	case "Bool":
		_, ok := val.(*Boolean)
		return ok
	case "Array":
		_, ok := val.(*Array)
		return ok
	case "Dict":
		_, ok := val.(*Dict)
		return ok
	case "Fun":
		switch val.(type) {
		case *Function, *Builtin, *BoundMethod:
			return true
		}
		return false
	}
	// User-defined type annotations match instances of that type
	if inst, ok := val.(*StructInstance); ok {
		return inst.TypeDesc.Name == annotation
	}
	return false
}

// typeName renders the user-facing type name of a value, matching the
// annotation vocabulary
func typeName(val Object) string {
	switch val := val.(type) {
	case *Integer:
		return "Int"
	case *BigInt:
		return "BigInt"
	case *Float:
		return "Float"
	case *Decimal:
		return "Decimal"
	case *Boolean:
		return "Bool"
	case *String:
		return "Str"
	case *Bytes:
		return "Bytes"
	case *Null:
		return "Nil"
	case *Array:
		return "Array"
	case *Dict:
		return "Dict"
	case *Function, *Builtin, *BoundMethod:
		return "Fun"
	case *StructType:
		return "Type"
	case *StructInstance:
		return val.TypeDesc.Name
	case *Exception:
		return "Exception"
	}
	return string(val.Type())
}

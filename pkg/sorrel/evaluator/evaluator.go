// Package evaluator executes Sorrel syntax trees.
//
// Evaluation is hybrid. Expression-shaped nodes (literals, operators,
// conditionals, loops, indexing, collection literals) run on an explicit
// frame stack in machine.go, so arbitrarily deep nesting and arbitrarily
// long loops consume bounded native stack. Binding forms, calls, and
// exception handling recurse natively; recursion depth for those is
// bounded by the call-depth limit, not by expression shape. Both paths
// share the same operator, invocation, and fault helpers, so a node
// evaluates to the same value whichever strategy runs it.
package evaluator

import (
	"fmt"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// useIterative selects the frame-stack engine for iterative node kinds.
// Tests flip it off to force the all-recursive strategy and compare.
var useIterative = true

// Eval evaluates an AST node in the given environment
func Eval(node ast.Node, env *Environment) Object {
	if useIterative && isIterativeKind(node) {
		return runMachine(node, env)
	}
	return evalRecursive(node, env)
}

// isIterativeKind reports whether the frame-stack engine drives this node
// kind directly
func isIterativeKind(node ast.Node) bool {
	switch node.(type) {
	case *ast.IntegerLiteral, *ast.BigIntLiteral, *ast.FloatLiteral,
		*ast.DecimalLiteral, *ast.StringLiteral, *ast.BytesLiteral,
		*ast.BooleanLiteral, *ast.NilLiteral, *ast.Identifier,
		*ast.PrefixExpression, *ast.InfixExpression, *ast.IfExpression,
		*ast.WhileExpression, *ast.ForExpression, *ast.IndexExpression,
		*ast.ArrayLiteral, *ast.DictLiteral,
		*ast.BlockStatement, *ast.ExpressionStatement:
		return true
	}
	return false
}

// evalRecursive is the recursive strategy. It covers every node kind so
// the whole language still runs with the frame-stack engine disabled.
func evalRecursive(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node, env)
	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)
	case *ast.BlockStatement:
		return evalStatements(node.Statements, env)
	case *ast.LetStatement:
		val := Eval(node.Value, env)
		if isRaised(val) {
			return val
		}
		env.Set(node.Name.Value, val)
		return NULL
	case *ast.AssignStatement:
		return evalAssign(node, env)
	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return &ReturnValue{Value: NULL}
		}
		val := Eval(node.ReturnValue, env)
		if isRaised(val) {
			return val
		}
		return &ReturnValue{Value: val}
	case *ast.BreakStatement:
		return BREAK
	case *ast.ContinueStatement:
		return CONTINUE
	case *ast.RaiseStatement:
		val := Eval(node.Value, env)
		if isRaised(val) {
			return val
		}
		return raiseObject(env, node.Token, val)
	case *ast.FunStatement:
		fn := &Function{
			Name:   node.Name.Value,
			Params: node.Function.Params,
			Body:   node.Function.Body,
			Env:    env,
		}
		env.Set(node.Name.Value, fn)
		return NULL
	case *ast.TypeStatement:
		return evalTypeStatement(node, env)
	case *ast.TryStatement:
		return evalTry(node, env)

	// Expressions
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.BigIntLiteral:
		return &BigInt{Value: node.Value}
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}
	case *ast.DecimalLiteral:
		return &Decimal{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BytesLiteral:
		return &Bytes{Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBoolean(node.Value)
	case *ast.NilLiteral:
		return NULL
	case *ast.Identifier:
		return evalIdentifier(node, env)
	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isRaised(right) {
			return right
		}
		return evalPrefixExpression(node.Operator, right, node.Token, env)
	case *ast.InfixExpression:
		return evalInfixRecursive(node, env)
	case *ast.IfExpression:
		return evalIfRecursive(node, env)
	case *ast.WhileExpression:
		return evalWhileRecursive(node, env)
	case *ast.ForExpression:
		return evalForRecursive(node, env)
	case *ast.IndexExpression:
		left := Eval(node.Left, env)
		if isRaised(left) {
			return left
		}
		index := Eval(node.Index, env)
		if isRaised(index) {
			return index
		}
		return evalIndexExpression(left, index, node.Token, env)
	case *ast.ArrayLiteral:
		elems := make([]Object, 0, len(node.Elements))
		for _, e := range node.Elements {
			v := Eval(e, env)
			if isRaised(v) {
				return v
			}
			elems = append(elems, v)
		}
		return &Array{Elements: elems}
	case *ast.DictLiteral:
		dict := NewDict()
		for _, pair := range node.Pairs {
			v := Eval(pair.Value, env)
			if isRaised(v) {
				return v
			}
			dict.Set(pair.Key, v)
		}
		return dict
	case *ast.FunctionLiteral:
		return &Function{Name: node.Name, Params: node.Params, Body: node.Body, Env: env}
	case *ast.CallExpression:
		return evalCall(node, env)
	case *ast.DotExpression:
		left := Eval(node.Left, env)
		if isRaised(left) {
			return left
		}
		return evalDot(left, node.Name, node.Token, env)
	}

	return NULL
}

// evalProgram runs top-level statements, unwrapping returns and reporting
// loose loop signals as faults
func evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = NULL
	for _, stmt := range program.Statements {
		result = Eval(stmt, env)
		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Exception:
			if result.raised {
				return result
			}
		case *BreakSignal:
			return throw(env, statementToken(stmt), serrors.KindRuntime, "break outside loop")
		case *ContinueSignal:
			return throw(env, statementToken(stmt), serrors.KindRuntime, "continue outside loop")
		}
	}
	return result
}

func statementToken(stmt ast.Statement) lexer.Token {
	switch s := stmt.(type) {
	case *ast.BreakStatement:
		return s.Token
	case *ast.ContinueStatement:
		return s.Token
	case *ast.ExpressionStatement:
		return s.Token
	}
	return lexer.Token{}
}

// evalStatements runs a statement list in env, stopping at the first
// control-flow sentinel. The value of the list is its last statement's.
func evalStatements(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL
	for _, stmt := range stmts {
		result = Eval(stmt, env)
		if isControlFlow(result) {
			return result
		}
	}
	return result
}

func evalInfixRecursive(node *ast.InfixExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isRaised(left) {
		return left
	}
	// Lazy operators never evaluate the right operand when the left one
	// decides the result
	switch node.Operator {
	case "and":
		if !truthy(left) {
			return left
		}
		return Eval(node.Right, env)
	case "or":
		if truthy(left) {
			return left
		}
		return Eval(node.Right, env)
	case "?:":
		if left != NULL {
			return left
		}
		return Eval(node.Right, env)
	}
	right := Eval(node.Right, env)
	if isRaised(right) {
		return right
	}
	return evalInfixExpression(node.Operator, left, right, node.Token, env)
}

func evalIfRecursive(node *ast.IfExpression, env *Environment) Object {
	cond := Eval(node.Condition, env)
	if isRaised(cond) {
		return cond
	}
	if truthy(cond) {
		return evalStatements(node.Consequence.Statements, NewEnclosedEnvironment(env))
	}
	if node.Alternative != nil {
		return evalStatements(node.Alternative.Statements, NewEnclosedEnvironment(env))
	}
	return NULL
}

func evalWhileRecursive(node *ast.WhileExpression, env *Environment) Object {
	for {
		cond := Eval(node.Condition, env)
		if isRaised(cond) {
			return cond
		}
		if !truthy(cond) {
			return NULL
		}
		res := runLoopBody(node.Body, env)
		switch res.(type) {
		case *BreakSignal:
			return NULL
		case *ContinueSignal:
			continue
		default:
			if isControlFlow(res) {
				return res
			}
		}
	}
}

func evalForRecursive(node *ast.ForExpression, env *Environment) Object {
	iterable := Eval(node.Iterable, env)
	if isRaised(iterable) {
		return iterable
	}
	items, ex := iterableItems(iterable, node.Token, env)
	if ex != nil {
		return ex
	}
	for _, item := range items {
		iterEnv := NewEnclosedEnvironment(env)
		iterEnv.Set(node.Var.Value, item)
		res := evalStatements(node.Body.Statements, iterEnv)
		switch res.(type) {
		case *BreakSignal:
			return NULL
		case *ContinueSignal:
			continue
		case *ReturnValue:
			return res
		case *Exception:
			if isRaised(res) {
				return res
			}
		}
	}
	return NULL
}

// runLoopBody executes one loop iteration in a fresh scope
func runLoopBody(body *ast.BlockStatement, env *Environment) Object {
	return evalStatements(body.Statements, NewEnclosedEnvironment(env))
}

// iterableItems materializes the iteration sequence: array elements, dict
// keys in insertion order, string characters, or byte values
func iterableItems(obj Object, tok lexer.Token, env *Environment) ([]Object, *Exception) {
	switch obj := obj.(type) {
	case *Array:
		items := make([]Object, len(obj.Elements))
		copy(items, obj.Elements)
		return items, nil
	case *Dict:
		keys := obj.Keys()
		items := make([]Object, len(keys))
		for i, k := range keys {
			items[i] = &String{Value: k}
		}
		return items, nil
	case *String:
		runes := []rune(obj.Value)
		items := make([]Object, len(runes))
		for i, r := range runes {
			items[i] = &String{Value: string(r)}
		}
		return items, nil
	case *Bytes:
		items := make([]Object, len(obj.Value))
		for i, b := range obj.Value {
			items[i] = &Integer{Value: int64(b)}
		}
		return items, nil
	}
	return nil, throw(env, tok, serrors.KindType, "cannot iterate over %s", obj.Type())
}

// evalAssign rebinds a name or mutates an element or field in place
func evalAssign(node *ast.AssignStatement, env *Environment) Object {
	val := Eval(node.Value, env)
	if isRaised(val) {
		return val
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		if !env.Assign(target.Value, val) {
			return throw(env, target.Token, serrors.KindName,
				"cannot assign to undeclared variable %q, use let to declare it", target.Value)
		}
		return NULL

	case *ast.IndexExpression:
		left := Eval(target.Left, env)
		if isRaised(left) {
			return left
		}
		index := Eval(target.Index, env)
		if isRaised(index) {
			return index
		}
		return assignIndex(left, index, val, target.Token, env)

	case *ast.DotExpression:
		left := Eval(target.Left, env)
		if isRaised(left) {
			return left
		}
		switch obj := left.(type) {
		case *StructInstance:
			if obj.TypeDesc.FieldByName(target.Name) == nil {
				return throw(env, target.Token, serrors.KindAttr,
					"%s has no field %q", obj.TypeDesc.Name, target.Name)
			}
			obj.SetField(target.Name, val)
			return NULL
		case *Dict:
			obj.Set(target.Name, val)
			return NULL
		}
		return throw(env, target.Token, serrors.KindType,
			"cannot set attribute on %s", left.Type())
	}

	return throw(env, node.Token, serrors.KindType, "invalid assignment target")
}

// evalIdentifier resolves a name: scope chain first, then builtins, then
// exception kind constructors
func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	if builtin, ok := builtins[node.Value]; ok {
		return builtin
	}
	if ctor, ok := exceptionKinds[node.Value]; ok {
		return ctor
	}
	return throw(env, node.Token, serrors.KindName, "name %q is not defined%s",
		node.Value, nameHint(node.Value, env))
}

// nameHint suggests a close visible name for an undefined identifier
func nameHint(name string, env *Environment) string {
	best := ""
	bestDist := len(name)
	if bestDist > 3 {
		bestDist = 3
	}
	for _, candidate := range env.AllIdentifiers() {
		if d := editDistance(name, candidate); d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(", did you mean %q?", best)
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[len(rb)]
}

// evalTry runs the guarded block, dispatches raised exceptions to the
// first matching catch clause, and runs the ensure block on every exit
// path exactly once. Control flow out of ensure itself wins over the
// pending result.
func evalTry(node *ast.TryStatement, env *Environment) Object {
	runEnsure := func(pending Object) Object {
		if node.Ensure == nil {
			return pending
		}
		res := evalStatements(node.Ensure.Statements, NewEnclosedEnvironment(env))
		if isControlFlow(res) {
			return res
		}
		return pending
	}

	result := evalStatements(node.Body.Statements, NewEnclosedEnvironment(env))

	if ex, ok := result.(*Exception); ok && ex.raised {
		for _, clause := range node.Catches {
			if serrors.Matches(ex.Kind, serrors.Kind(clause.Kind)) {
				handlerEnv := NewEnclosedEnvironment(env)
				handlerEnv.Set(clause.Name.Value, catchException(ex))
				return runEnsure(evalStatements(clause.Body.Statements, handlerEnv))
			}
		}
	}

	return runEnsure(result)
}

// evalCall evaluates the callee and each argument left to right, then
// hands off to the invocation layer. A dot callee resolves to a bound
// method before the arguments are touched.
func evalCall(node *ast.CallExpression, env *Environment) Object {
	fn := Eval(node.Function, env)
	if isRaised(fn) {
		return fn
	}

	args := make([]callArg, 0, len(node.Args))
	for _, a := range node.Args {
		v := Eval(a.Value, env)
		if isRaised(v) {
			return v
		}
		args = append(args, callArg{name: a.Name, value: v})
	}

	return applyFunction(fn, args, node.Token, env)
}

// evalDot resolves attribute access by receiver type
func evalDot(left Object, name string, tok lexer.Token, env *Environment) Object {
	switch obj := left.(type) {
	case *StructInstance:
		// Methods shadow same-named fields
		if method, ok := obj.TypeDesc.Methods[name]; ok {
			return &BoundMethod{Receiver: obj, Fn: method}
		}
		if val, ok := obj.GetField(name); ok {
			return val
		}
		return throw(env, tok, serrors.KindAttr, "%s has no field or method %q", obj.TypeDesc.Name, name)
	case *Dict:
		if val, ok := obj.Get(name); ok {
			return val
		}
		return throw(env, tok, serrors.KindKey, "dict has no key %q", name)
	case *Exception:
		return exceptionMember(obj, name, tok, env)
	}
	return throw(env, tok, serrors.KindAttr, "%s has no attribute %q", left.Type(), name)
}

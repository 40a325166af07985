package evaluator

import (
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
)

// evalFrame is one unit of pending work on the machine's explicit stack.
// A frame advances through numbered states; each child it needs is pushed
// as a new frame, and the child's value is delivered into partial when
// the child completes. Depth of nesting therefore costs heap, not native
// stack.
type evalFrame struct {
	node    ast.Node
	env     *Environment
	state   int
	partial []Object
	idx     int      // next statement or element index
	items   []Object // materialized for-loop sequence
	last    Object   // running value of a statement block
}

// runMachine drives evaluation of an iterative-kind node with an explicit
// frame stack. Node kinds the machine does not step directly (calls,
// bindings, exception handling) complete in a single step through the
// recursive path, which may in turn re-enter the machine for its own
// subtrees.
//
// Control-flow sentinels (raised exceptions, return, break, continue)
// abandon the whole frame stack: loop frames consume loop signals from
// their inline bodies before they ever reach the stack, so a sentinel
// travelling frames always belongs to an outer context.
func runMachine(node ast.Node, env *Environment) Object {
	stack := []*evalFrame{{node: node, env: env}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		value, done := stepFrame(frame, &stack)
		if !done {
			continue
		}
		stack = stack[:len(stack)-1]
		if isControlFlow(value) {
			return value
		}
		if len(stack) == 0 {
			return value
		}
		parent := stack[len(stack)-1]
		parent.partial = append(parent.partial, value)
	}
	return NULL
}

// push schedules a child node; its result is delivered to the current
// top frame's partial slice
func push(stack *[]*evalFrame, node ast.Node, env *Environment) {
	*stack = append(*stack, &evalFrame{node: node, env: env})
}

// stepFrame advances one frame by one state transition. It returns
// (value, true) when the frame is complete, (nil, false) when it pushed a
// child or advanced and needs another step.
func stepFrame(f *evalFrame, stack *[]*evalFrame) (Object, bool) {
	switch node := f.node.(type) {

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}, true
	case *ast.BigIntLiteral:
		return &BigInt{Value: node.Value}, true
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}, true
	case *ast.DecimalLiteral:
		return &Decimal{Value: node.Value}, true
	case *ast.StringLiteral:
		return &String{Value: node.Value}, true
	case *ast.BytesLiteral:
		return &Bytes{Value: node.Value}, true
	case *ast.BooleanLiteral:
		return nativeBoolToBoolean(node.Value), true
	case *ast.NilLiteral:
		return NULL, true
	case *ast.Identifier:
		return evalIdentifier(node, f.env), true

	case *ast.ExpressionStatement:
		if f.state == 0 {
			f.state = 1
			push(stack, node.Expression, f.env)
			return nil, false
		}
		return f.partial[0], true

	case *ast.BlockStatement:
		if len(f.partial) > 0 {
			f.last = f.partial[len(f.partial)-1]
			f.partial = f.partial[:0]
		}
		if f.idx < len(node.Statements) {
			push(stack, node.Statements[f.idx], f.env)
			f.idx++
			return nil, false
		}
		if f.last == nil {
			f.last = NULL
		}
		return f.last, true

	case *ast.PrefixExpression:
		if f.state == 0 {
			f.state = 1
			push(stack, node.Right, f.env)
			return nil, false
		}
		return evalPrefixExpression(node.Operator, f.partial[0], node.Token, f.env), true

	case *ast.InfixExpression:
		return stepInfix(f, node, stack)

	case *ast.IfExpression:
		switch f.state {
		case 0:
			f.state = 1
			push(stack, node.Condition, f.env)
			return nil, false
		case 1:
			cond := f.partial[0]
			f.partial = f.partial[:0]
			f.state = 2
			if truthy(cond) {
				push(stack, node.Consequence, NewEnclosedEnvironment(f.env))
				return nil, false
			}
			if node.Alternative != nil {
				push(stack, node.Alternative, NewEnclosedEnvironment(f.env))
				return nil, false
			}
			return NULL, true
		default:
			return f.partial[0], true
		}

	case *ast.WhileExpression:
		return stepWhile(f, node, stack)

	case *ast.ForExpression:
		return stepFor(f, node, stack)

	case *ast.IndexExpression:
		switch f.state {
		case 0:
			f.state = 1
			push(stack, node.Left, f.env)
			return nil, false
		case 1:
			f.state = 2
			push(stack, node.Index, f.env)
			return nil, false
		default:
			return evalIndexExpression(f.partial[0], f.partial[1], node.Token, f.env), true
		}

	case *ast.ArrayLiteral:
		if f.idx < len(node.Elements) {
			push(stack, node.Elements[f.idx], f.env)
			f.idx++
			return nil, false
		}
		elems := make([]Object, len(f.partial))
		copy(elems, f.partial)
		return &Array{Elements: elems}, true

	case *ast.DictLiteral:
		if f.idx < len(node.Pairs) {
			push(stack, node.Pairs[f.idx].Value, f.env)
			f.idx++
			return nil, false
		}
		dict := NewDict()
		for i, pair := range node.Pairs {
			dict.Set(pair.Key, f.partial[i])
		}
		return dict, true
	}

	// Everything else completes in one step via the recursive strategy
	return evalRecursive(f.node, f.env), true
}

// stepInfix implements binary operators, including the lazy ones: and,
// or, and ?: decide from the left value whether the right operand is
// evaluated at all
func stepInfix(f *evalFrame, node *ast.InfixExpression, stack *[]*evalFrame) (Object, bool) {
	switch f.state {
	case 0:
		f.state = 1
		push(stack, node.Left, f.env)
		return nil, false
	case 1:
		left := f.partial[0]
		switch node.Operator {
		case "and":
			if !truthy(left) {
				return left, true
			}
		case "or":
			if truthy(left) {
				return left, true
			}
		case "?:":
			if left != NULL {
				return left, true
			}
		}
		f.state = 2
		push(stack, node.Right, f.env)
		return nil, false
	default:
		switch node.Operator {
		case "and", "or", "?:":
			return f.partial[1], true
		}
		return evalInfixExpression(node.Operator, f.partial[0], f.partial[1], node.Token, f.env), true
	}
}

// stepWhile re-evaluates the condition as a child frame each trip; the
// body runs inline in a fresh scope, so loop signals are consumed here
// and iteration count never grows either stack
func stepWhile(f *evalFrame, node *ast.WhileExpression, stack *[]*evalFrame) (Object, bool) {
	if f.state == 0 {
		f.state = 1
		push(stack, node.Condition, f.env)
		return nil, false
	}
	cond := f.partial[0]
	f.partial = f.partial[:0]
	if !truthy(cond) {
		return NULL, true
	}
	res := runLoopBody(node.Body, f.env)
	switch res.(type) {
	case *BreakSignal:
		return NULL, true
	case *ContinueSignal:
	default:
		if isControlFlow(res) {
			return res, true
		}
	}
	// normal completion or continue: test the condition again
	push(stack, node.Condition, f.env)
	return nil, false
}

// stepFor materializes the sequence once, then runs one iteration per
// step in its own scope
func stepFor(f *evalFrame, node *ast.ForExpression, stack *[]*evalFrame) (Object, bool) {
	if f.state == 0 {
		f.state = 1
		push(stack, node.Iterable, f.env)
		return nil, false
	}
	if f.state == 1 {
		items, ex := iterableItems(f.partial[0], node.Token, f.env)
		if ex != nil {
			return ex, true
		}
		f.items = items
		f.state = 2
	}
	for f.idx < len(f.items) {
		iterEnv := NewEnclosedEnvironment(f.env)
		iterEnv.Set(node.Var.Value, f.items[f.idx])
		f.idx++
		res := evalStatements(node.Body.Statements, iterEnv)
		switch res.(type) {
		case *BreakSignal:
			return NULL, true
		case *ContinueSignal:
			continue
		default:
			if isControlFlow(res) {
				return res, true
			}
		}
	}
	return NULL, true
}

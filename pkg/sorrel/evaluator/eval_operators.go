package evaluator

import (
	"bytes"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// truthy implements the language's boolean test: only false and nil are
// falsy, every other value is truthy
func truthy(obj Object) bool {
	switch obj {
	case FALSE, NULL:
		return false
	}
	return true
}

func evalPrefixExpression(operator string, right Object, tok lexer.Token, env *Environment) Object {
	switch operator {
	case "!", "not":
		return nativeBoolToBoolean(!truthy(right))
	case "-":
		switch right := right.(type) {
		case *Integer:
			if right.Value == math.MinInt64 {
				return throw(env, tok, serrors.KindArithmetic, "integer overflow negating %d", right.Value)
			}
			return &Integer{Value: -right.Value}
		case *BigInt:
			return &BigInt{Value: new(big.Int).Neg(right.Value)}
		case *Float:
			return &Float{Value: -right.Value}
		case *Decimal:
			return &Decimal{Value: right.Value.Neg()}
		}
		return throw(env, tok, serrors.KindType, "unknown operator: -%s", right.Type())
	}
	return throw(env, tok, serrors.KindType, "unknown operator: %s%s", operator, right.Type())
}

// evalInfixExpression dispatches strict binary operators. The lazy ones
// (and, or, ?:) are decided by the callers before both operands exist.
func evalInfixExpression(operator string, left, right Object, tok lexer.Token, env *Environment) Object {
	switch operator {
	case "==":
		return nativeBoolToBoolean(objectEquals(left, right))
	case "!=":
		return nativeBoolToBoolean(!objectEquals(left, right))
	case "..":
		return evalConcat(left, right, tok, env)
	case "in":
		return evalMembership(left, right, tok, env)
	}

	// Fixed-width integers take a checked fast path; overflow is a fault,
	// never a silent wrap
	if l, ok := left.(*Integer); ok {
		if r, ok := right.(*Integer); ok {
			return evalIntegerInfix(operator, l, r, tok, env)
		}
	}

	if isNumeric(left) && isNumeric(right) {
		return evalNumericInfix(operator, left, right, tok, env)
	}

	if l, ok := left.(*String); ok {
		if r, ok := right.(*String); ok {
			return evalStringInfix(operator, l, r, tok, env)
		}
	}

	if l, ok := left.(*Array); ok {
		if r, ok := right.(*Array); ok && operator == "+" {
			elems := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elems = append(elems, l.Elements...)
			elems = append(elems, r.Elements...)
			return &Array{Elements: elems}
		}
	}

	if l, ok := left.(*Bytes); ok {
		if r, ok := right.(*Bytes); ok && operator == "+" {
			joined := make([]byte, 0, len(l.Value)+len(r.Value))
			joined = append(joined, l.Value...)
			joined = append(joined, r.Value...)
			return &Bytes{Value: joined}
		}
	}

	return throw(env, tok, serrors.KindType, "unsupported operand types for %s: %s and %s",
		operator, left.Type(), right.Type())
}

func evalIntegerInfix(operator string, left, right *Integer, tok lexer.Token, env *Environment) Object {
	a, b := left.Value, right.Value
	switch operator {
	case "+":
		sum := a + b
		if (sum > a) != (b > 0) {
			return throw(env, tok, serrors.KindArithmetic, "integer overflow in %d + %d", a, b)
		}
		return &Integer{Value: sum}
	case "-":
		diff := a - b
		if (diff < a) != (b > 0) {
			return throw(env, tok, serrors.KindArithmetic, "integer overflow in %d - %d", a, b)
		}
		return &Integer{Value: diff}
	case "*":
		if a == 0 || b == 0 {
			return &Integer{Value: 0}
		}
		if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
			return throw(env, tok, serrors.KindArithmetic, "integer overflow in %d * %d", a, b)
		}
		prod := a * b
		if prod/b != a {
			return throw(env, tok, serrors.KindArithmetic, "integer overflow in %d * %d", a, b)
		}
		return &Integer{Value: prod}
	case "/":
		if b == 0 {
			return throw(env, tok, serrors.KindArithmetic, "division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return throw(env, tok, serrors.KindArithmetic, "integer overflow in %d / %d", a, b)
		}
		// Integer division truncates toward zero
		return &Integer{Value: a / b}
	case "%":
		if b == 0 {
			return throw(env, tok, serrors.KindArithmetic, "modulo by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return &Integer{Value: 0}
		}
		return &Integer{Value: a % b}
	case "<":
		return nativeBoolToBoolean(a < b)
	case "<=":
		return nativeBoolToBoolean(a <= b)
	case ">":
		return nativeBoolToBoolean(a > b)
	case ">=":
		return nativeBoolToBoolean(a >= b)
	}
	return throw(env, tok, serrors.KindType, "unknown operator: INTEGER %s INTEGER", operator)
}

func isNumeric(obj Object) bool {
	switch obj.(type) {
	case *Integer, *BigInt, *Float, *Decimal:
		return true
	}
	return false
}

// numericRank orders the promotion lattice: int < bigint < float < decimal
func numericRank(obj Object) int {
	switch obj.(type) {
	case *Integer:
		return 0
	case *BigInt:
		return 1
	case *Float:
		return 2
	case *Decimal:
		return 3
	}
	return -1
}

// evalNumericInfix handles mixed numeric operands by promoting both to
// the wider representation: decimal beats float beats bigint beats int.
// BigInt and Float do not mix; converting either way loses what the
// programmer asked for, so it faults instead.
func evalNumericInfix(operator string, left, right Object, tok lexer.Token, env *Environment) Object {
	rank := numericRank(left)
	if r := numericRank(right); r > rank {
		rank = r
	}

	switch rank {
	case 1: // bigint
		la, aok := toBigInt(left)
		lb, bok := toBigInt(right)
		if !aok || !bok {
			return throw(env, tok, serrors.KindType,
				"cannot mix %s and %s, convert explicitly", left.Type(), right.Type())
		}
		return evalBigIntInfix(operator, la, lb, tok, env)
	case 2: // float
		fa, aok := toFloat(left)
		fb, bok := toFloat(right)
		if !aok || !bok {
			return throw(env, tok, serrors.KindType,
				"cannot mix %s and %s, convert explicitly", left.Type(), right.Type())
		}
		return evalFloatInfix(operator, fa, fb, tok, env)
	case 3: // decimal
		da, aok := toDecimal(left)
		db, bok := toDecimal(right)
		if !aok || !bok {
			return throw(env, tok, serrors.KindType,
				"cannot mix %s and %s, convert explicitly", left.Type(), right.Type())
		}
		return evalDecimalInfix(operator, da, db, tok, env)
	}
	return throw(env, tok, serrors.KindType, "unsupported operand types for %s: %s and %s",
		operator, left.Type(), right.Type())
}

func toBigInt(obj Object) (*big.Int, bool) {
	switch obj := obj.(type) {
	case *Integer:
		return big.NewInt(obj.Value), true
	case *BigInt:
		return obj.Value, true
	}
	return nil, false
}

func toFloat(obj Object) (float64, bool) {
	switch obj := obj.(type) {
	case *Integer:
		return float64(obj.Value), true
	case *Float:
		return obj.Value, true
	}
	return 0, false
}

func toDecimal(obj Object) (decimal.Decimal, bool) {
	switch obj := obj.(type) {
	case *Integer:
		return decimal.NewFromInt(obj.Value), true
	case *BigInt:
		return decimal.NewFromBigInt(obj.Value, 0), true
	case *Float:
		return decimal.NewFromFloat(obj.Value), true
	case *Decimal:
		return obj.Value, true
	}
	return decimal.Decimal{}, false
}

func evalBigIntInfix(operator string, a, b *big.Int, tok lexer.Token, env *Environment) Object {
	switch operator {
	case "+":
		return &BigInt{Value: new(big.Int).Add(a, b)}
	case "-":
		return &BigInt{Value: new(big.Int).Sub(a, b)}
	case "*":
		return &BigInt{Value: new(big.Int).Mul(a, b)}
	case "/":
		if b.Sign() == 0 {
			return throw(env, tok, serrors.KindArithmetic, "division by zero")
		}
		return &BigInt{Value: new(big.Int).Quo(a, b)}
	case "%":
		if b.Sign() == 0 {
			return throw(env, tok, serrors.KindArithmetic, "modulo by zero")
		}
		return &BigInt{Value: new(big.Int).Rem(a, b)}
	case "<":
		return nativeBoolToBoolean(a.Cmp(b) < 0)
	case "<=":
		return nativeBoolToBoolean(a.Cmp(b) <= 0)
	case ">":
		return nativeBoolToBoolean(a.Cmp(b) > 0)
	case ">=":
		return nativeBoolToBoolean(a.Cmp(b) >= 0)
	}
	return throw(env, tok, serrors.KindType, "unknown operator: BIGINT %s BIGINT", operator)
}

func evalFloatInfix(operator string, a, b float64, tok lexer.Token, env *Environment) Object {
	switch operator {
	case "+":
		return &Float{Value: a + b}
	case "-":
		return &Float{Value: a - b}
	case "*":
		return &Float{Value: a * b}
	case "/":
		if b == 0 {
			return throw(env, tok, serrors.KindArithmetic, "division by zero")
		}
		return &Float{Value: a / b}
	case "%":
		if b == 0 {
			return throw(env, tok, serrors.KindArithmetic, "modulo by zero")
		}
		return &Float{Value: math.Mod(a, b)}
	case "<":
		return nativeBoolToBoolean(a < b)
	case "<=":
		return nativeBoolToBoolean(a <= b)
	case ">":
		return nativeBoolToBoolean(a > b)
	case ">=":
		return nativeBoolToBoolean(a >= b)
	}
	return throw(env, tok, serrors.KindType, "unknown operator: FLOAT %s FLOAT", operator)
}

func evalDecimalInfix(operator string, a, b decimal.Decimal, tok lexer.Token, env *Environment) Object {
	switch operator {
	case "+":
		return &Decimal{Value: a.Add(b)}
	case "-":
		return &Decimal{Value: a.Sub(b)}
	case "*":
		return &Decimal{Value: a.Mul(b)}
	case "/":
		if b.IsZero() {
			return throw(env, tok, serrors.KindArithmetic, "division by zero")
		}
		return &Decimal{Value: a.Div(b)}
	case "%":
		if b.IsZero() {
			return throw(env, tok, serrors.KindArithmetic, "modulo by zero")
		}
		return &Decimal{Value: a.Mod(b)}
	case "<":
		return nativeBoolToBoolean(a.Cmp(b) < 0)
	case "<=":
		return nativeBoolToBoolean(a.Cmp(b) <= 0)
	case ">":
		return nativeBoolToBoolean(a.Cmp(b) > 0)
	case ">=":
		return nativeBoolToBoolean(a.Cmp(b) >= 0)
	}
	return throw(env, tok, serrors.KindType, "unknown operator: DECIMAL %s DECIMAL", operator)
}

func evalStringInfix(operator string, left, right *String, tok lexer.Token, env *Environment) Object {
	switch operator {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBoolean(left.Value < right.Value)
	case "<=":
		return nativeBoolToBoolean(left.Value <= right.Value)
	case ">":
		return nativeBoolToBoolean(left.Value > right.Value)
	case ">=":
		return nativeBoolToBoolean(left.Value >= right.Value)
	}
	return throw(env, tok, serrors.KindType, "unknown operator: STRING %s STRING", operator)
}

// evalConcat stringifies both operands and joins them; arrays and bytes
// concatenate structurally
func evalConcat(left, right Object, tok lexer.Token, env *Environment) Object {
	if l, ok := left.(*Array); ok {
		if r, ok := right.(*Array); ok {
			elems := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elems = append(elems, l.Elements...)
			elems = append(elems, r.Elements...)
			return &Array{Elements: elems}
		}
	}
	if l, ok := left.(*Bytes); ok {
		if r, ok := right.(*Bytes); ok {
			joined := make([]byte, 0, len(l.Value)+len(r.Value))
			joined = append(joined, l.Value...)
			joined = append(joined, r.Value...)
			return &Bytes{Value: joined}
		}
	}
	return &String{Value: left.Inspect() + right.Inspect()}
}

// evalMembership implements the in operator: element in array, key in
// dict, substring in string, byte value in bytes
func evalMembership(left, right Object, tok lexer.Token, env *Environment) Object {
	switch container := right.(type) {
	case *Array:
		for _, e := range container.Elements {
			if objectEquals(left, e) {
				return TRUE
			}
		}
		return FALSE
	case *Dict:
		key, ok := left.(*String)
		if !ok {
			return throw(env, tok, serrors.KindType, "dict membership needs a string key, got %s", left.Type())
		}
		_, found := container.Get(key.Value)
		return nativeBoolToBoolean(found)
	case *String:
		sub, ok := left.(*String)
		if !ok {
			return throw(env, tok, serrors.KindType, "string membership needs a string, got %s", left.Type())
		}
		return nativeBoolToBoolean(strings.Contains(container.Value, sub.Value))
	case *Bytes:
		b, ok := left.(*Integer)
		if !ok {
			return throw(env, tok, serrors.KindType, "bytes membership needs an integer, got %s", left.Type())
		}
		if b.Value < 0 || b.Value > 255 {
			return FALSE
		}
		return nativeBoolToBoolean(bytes.IndexByte(container.Value, byte(b.Value)) >= 0)
	}
	return throw(env, tok, serrors.KindType, "cannot test membership in %s", right.Type())
}

// objectEquals implements == across all value kinds. Numbers compare by
// value across representations; aggregates compare structurally;
// functions compare by identity.
func objectEquals(left, right Object) bool {
	if isNumeric(left) && isNumeric(right) {
		return numericEquals(left, right)
	}

	switch l := left.(type) {
	case *Boolean:
		r, ok := right.(*Boolean)
		return ok && l.Value == r.Value
	case *Null:
		_, ok := right.(*Null)
		return ok
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	case *Bytes:
		r, ok := right.(*Bytes)
		return ok && bytes.Equal(l.Value, r.Value)
	case *Array:
		r, ok := right.(*Array)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !objectEquals(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		r, ok := right.(*Dict)
		if !ok || l.Len() != r.Len() {
			return false
		}
		// Equality ignores insertion order
		for _, k := range l.Keys() {
			lv, _ := l.Get(k)
			rv, found := r.Get(k)
			if !found || !objectEquals(lv, rv) {
				return false
			}
		}
		return true
	case *StructInstance:
		r, ok := right.(*StructInstance)
		if !ok || l.TypeDesc != r.TypeDesc {
			return false
		}
		for _, k := range l.Fields.Keys() {
			lv, _ := l.GetField(k)
			rv, found := r.GetField(k)
			if !found || !objectEquals(lv, rv) {
				return false
			}
		}
		return true
	case *Exception:
		r, ok := right.(*Exception)
		return ok && l.Kind == r.Kind && l.Message == r.Message
	}
	return left == right
}

func numericEquals(left, right Object) bool {
	rank := numericRank(left)
	if r := numericRank(right); r > rank {
		rank = r
	}
	switch rank {
	case 0:
		return left.(*Integer).Value == right.(*Integer).Value
	case 1:
		a, aok := toBigInt(left)
		b, bok := toBigInt(right)
		return aok && bok && a.Cmp(b) == 0
	case 2:
		a, aok := toFloat(left)
		b, bok := toFloat(right)
		return aok && bok && a == b
	default:
		a, aok := toDecimal(left)
		b, bok := toDecimal(right)
		return aok && bok && a.Equal(b)
	}
}

// evalIndexExpression reads one element: array and bytes by position
// (negative counts from the end), string by character position, dict by
// key
func evalIndexExpression(left, index Object, tok lexer.Token, env *Environment) Object {
	switch container := left.(type) {
	case *Array:
		i, ok := index.(*Integer)
		if !ok {
			return throw(env, tok, serrors.KindType, "array index must be an integer, got %s", index.Type())
		}
		pos, ok := normalizeIndex(i.Value, len(container.Elements))
		if !ok {
			return throw(env, tok, serrors.KindIndex, "array index %d out of range for length %d",
				i.Value, len(container.Elements))
		}
		return container.Elements[pos]
	case *String:
		i, ok := index.(*Integer)
		if !ok {
			return throw(env, tok, serrors.KindType, "string index must be an integer, got %s", index.Type())
		}
		runes := []rune(container.Value)
		pos, ok := normalizeIndex(i.Value, len(runes))
		if !ok {
			return throw(env, tok, serrors.KindIndex, "string index %d out of range for length %d",
				i.Value, len(runes))
		}
		return &String{Value: string(runes[pos])}
	case *Bytes:
		i, ok := index.(*Integer)
		if !ok {
			return throw(env, tok, serrors.KindType, "bytes index must be an integer, got %s", index.Type())
		}
		pos, ok := normalizeIndex(i.Value, len(container.Value))
		if !ok {
			return throw(env, tok, serrors.KindIndex, "bytes index %d out of range for length %d",
				i.Value, len(container.Value))
		}
		return &Integer{Value: int64(container.Value[pos])}
	case *Dict:
		key, ok := index.(*String)
		if !ok {
			return throw(env, tok, serrors.KindType, "dict key must be a string, got %s", index.Type())
		}
		val, found := container.Get(key.Value)
		if !found {
			return throw(env, tok, serrors.KindKey, "key %q not found", key.Value)
		}
		return val
	}
	return throw(env, tok, serrors.KindType, "cannot index %s", left.Type())
}

// assignIndex writes one element in place
func assignIndex(left, index, val Object, tok lexer.Token, env *Environment) Object {
	switch container := left.(type) {
	case *Array:
		i, ok := index.(*Integer)
		if !ok {
			return throw(env, tok, serrors.KindType, "array index must be an integer, got %s", index.Type())
		}
		pos, ok := normalizeIndex(i.Value, len(container.Elements))
		if !ok {
			return throw(env, tok, serrors.KindIndex, "array index %d out of range for length %d",
				i.Value, len(container.Elements))
		}
		container.Elements[pos] = val
		return NULL
	case *Dict:
		key, ok := index.(*String)
		if !ok {
			return throw(env, tok, serrors.KindType, "dict key must be a string, got %s", index.Type())
		}
		container.Set(key.Value, val)
		return NULL
	}
	return throw(env, tok, serrors.KindType, "cannot assign into %s", left.Type())
}

// normalizeIndex resolves a possibly negative index against length
func normalizeIndex(i int64, length int) (int, bool) {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, false
	}
	return int(i), true
}

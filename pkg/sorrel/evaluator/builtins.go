package evaluator

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// exceptionKinds exposes one constructor per predefined exception kind,
// resolved after the scope chain and builtins
var exceptionKinds = kindConstructors()

// fault builds a raised exception from inside a builtin; builtins have
// no source token, the trace carries the position instead
func fault(env *Environment, kind serrors.Kind, format string, args ...interface{}) *Exception {
	return throw(env, lexer.Token{}, kind, format, args...)
}

func arity(env *Environment, name string, args []Object, want int) *Exception {
	if len(args) != want {
		return fault(env, serrors.KindArg, "%s takes %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

var builtins = map[string]*Builtin{
	"len": {Name: "len", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "len", args, 1); ex != nil {
			return ex
		}
		switch arg := args[0].(type) {
		case *String:
			return &Integer{Value: int64(utf8.RuneCountInString(arg.Value))}
		case *Bytes:
			return &Integer{Value: int64(len(arg.Value))}
		case *Array:
			return &Integer{Value: int64(len(arg.Elements))}
		case *Dict:
			return &Integer{Value: int64(arg.Len())}
		}
		return fault(env, serrors.KindType, "len does not support %s", typeName(args[0]))
	}},

	"type": {Name: "type", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "type", args, 1); ex != nil {
			return ex
		}
		return &String{Value: typeName(args[0])}
	}},

	"str": {Name: "str", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "str", args, 1); ex != nil {
			return ex
		}
		return &String{Value: args[0].Inspect()}
	}},

	"int": {Name: "int", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "int", args, 1); ex != nil {
			return ex
		}
		switch arg := args[0].(type) {
		case *Integer:
			return arg
		case *Float:
			if math.IsNaN(arg.Value) || arg.Value >= math.MaxInt64 || arg.Value <= math.MinInt64 {
				return fault(env, serrors.KindValue, "float %g does not fit an integer", arg.Value)
			}
			return &Integer{Value: int64(arg.Value)}
		case *Decimal:
			return &Integer{Value: arg.Value.IntPart()}
		case *BigInt:
			if !arg.Value.IsInt64() {
				return fault(env, serrors.KindValue, "%s does not fit a fixed-width integer", arg.Value.String())
			}
			return &Integer{Value: arg.Value.Int64()}
		case *Boolean:
			if arg.Value {
				return &Integer{Value: 1}
			}
			return &Integer{Value: 0}
		case *String:
			n, err := strconv.ParseInt(strings.TrimSpace(arg.Value), 10, 64)
			if err != nil {
				return fault(env, serrors.KindValue, "cannot parse %q as an integer", arg.Value)
			}
			return &Integer{Value: n}
		}
		return fault(env, serrors.KindType, "int does not support %s", typeName(args[0]))
	}},

	"float": {Name: "float", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "float", args, 1); ex != nil {
			return ex
		}
		switch arg := args[0].(type) {
		case *Float:
			return arg
		case *Integer:
			return &Float{Value: float64(arg.Value)}
		case *Decimal:
			f, _ := arg.Value.Float64()
			return &Float{Value: f}
		case *String:
			f, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
			if err != nil {
				return fault(env, serrors.KindValue, "cannot parse %q as a float", arg.Value)
			}
			return &Float{Value: f}
		}
		return fault(env, serrors.KindType, "float does not support %s", typeName(args[0]))
	}},

	"dec": {Name: "dec", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "dec", args, 1); ex != nil {
			return ex
		}
		switch arg := args[0].(type) {
		case *Decimal:
			return arg
		case *Integer:
			return &Decimal{Value: decimal.NewFromInt(arg.Value)}
		case *BigInt:
			return &Decimal{Value: decimal.NewFromBigInt(arg.Value, 0)}
		case *Float:
			return &Decimal{Value: decimal.NewFromFloat(arg.Value)}
		case *String:
			d, err := decimal.NewFromString(strings.TrimSpace(arg.Value))
			if err != nil {
				return fault(env, serrors.KindValue, "cannot parse %q as a decimal", arg.Value)
			}
			return &Decimal{Value: d}
		}
		return fault(env, serrors.KindType, "dec does not support %s", typeName(args[0]))
	}},

	"big": {Name: "big", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "big", args, 1); ex != nil {
			return ex
		}
		switch arg := args[0].(type) {
		case *BigInt:
			return arg
		case *Integer:
			return &BigInt{Value: big.NewInt(arg.Value)}
		case *String:
			n, ok := new(big.Int).SetString(strings.TrimSpace(arg.Value), 10)
			if !ok {
				return fault(env, serrors.KindValue, "cannot parse %q as a big integer", arg.Value)
			}
			return &BigInt{Value: n}
		}
		return fault(env, serrors.KindType, "big does not support %s", typeName(args[0]))
	}},

	"push": {Name: "push", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "push", args, 2); ex != nil {
			return ex
		}
		arr, ok := args[0].(*Array)
		if !ok {
			return fault(env, serrors.KindType, "push needs an array, got %s", typeName(args[0]))
		}
		// In-place append; visible through every binding of the array
		arr.Elements = append(arr.Elements, args[1])
		return arr
	}},

	"pop": {Name: "pop", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "pop", args, 1); ex != nil {
			return ex
		}
		arr, ok := args[0].(*Array)
		if !ok {
			return fault(env, serrors.KindType, "pop needs an array, got %s", typeName(args[0]))
		}
		if len(arr.Elements) == 0 {
			return fault(env, serrors.KindIndex, "pop from empty array")
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		return last
	}},

	"keys": {Name: "keys", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "keys", args, 1); ex != nil {
			return ex
		}
		dict, ok := args[0].(*Dict)
		if !ok {
			return fault(env, serrors.KindType, "keys needs a dict, got %s", typeName(args[0]))
		}
		ks := dict.Keys()
		elems := make([]Object, len(ks))
		for i, k := range ks {
			elems[i] = &String{Value: k}
		}
		return &Array{Elements: elems}
	}},

	"values": {Name: "values", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "values", args, 1); ex != nil {
			return ex
		}
		dict, ok := args[0].(*Dict)
		if !ok {
			return fault(env, serrors.KindType, "values needs a dict, got %s", typeName(args[0]))
		}
		ks := dict.Keys()
		elems := make([]Object, len(ks))
		for i, k := range ks {
			elems[i], _ = dict.Get(k)
		}
		return &Array{Elements: elems}
	}},

	"del": {Name: "del", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "del", args, 2); ex != nil {
			return ex
		}
		dict, ok := args[0].(*Dict)
		if !ok {
			return fault(env, serrors.KindType, "del needs a dict, got %s", typeName(args[0]))
		}
		key, ok := args[1].(*String)
		if !ok {
			return fault(env, serrors.KindType, "del key must be a string, got %s", typeName(args[1]))
		}
		if _, found := dict.Get(key.Value); !found {
			return fault(env, serrors.KindKey, "key %q not found", key.Value)
		}
		dict.Delete(key.Value)
		return NULL
	}},

	"range": {Name: "range", Fn: func(args []Object, env *Environment) Object {
		if len(args) < 1 || len(args) > 3 {
			return fault(env, serrors.KindArg, "range takes 1 to 3 arguments, got %d", len(args))
		}
		bounds := make([]int64, len(args))
		for i, a := range args {
			n, ok := a.(*Integer)
			if !ok {
				return fault(env, serrors.KindType, "range arguments must be integers, got %s", typeName(a))
			}
			bounds[i] = n.Value
		}
		start, stop, step := int64(0), int64(0), int64(1)
		switch len(bounds) {
		case 1:
			stop = bounds[0]
		case 2:
			start, stop = bounds[0], bounds[1]
		case 3:
			start, stop, step = bounds[0], bounds[1], bounds[2]
		}
		if step == 0 {
			return fault(env, serrors.KindValue, "range step cannot be zero")
		}
		var elems []Object
		if step > 0 {
			for i := start; i < stop; i += step {
				elems = append(elems, &Integer{Value: i})
			}
		} else {
			for i := start; i > stop; i += step {
				elems = append(elems, &Integer{Value: i})
			}
		}
		return &Array{Elements: elems}
	}},

	"log": {Name: "log", Fn: func(args []Object, env *Environment) Object {
		if logger := env.Logger(); logger != nil {
			logger.Log(inspectAll(args)...)
		}
		return NULL
	}},

	"logLine": {Name: "logLine", Fn: func(args []Object, env *Environment) Object {
		if logger := env.Logger(); logger != nil {
			logger.LogLine(inspectAll(args)...)
		}
		return NULL
	}},

	"date": {Name: "date", Fn: func(args []Object, env *Environment) Object {
		if ex := arity(env, "date", args, 1); ex != nil {
			return ex
		}
		s, ok := args[0].(*String)
		if !ok {
			return fault(env, serrors.KindType, "date needs a string, got %s", typeName(args[0]))
		}
		t, err := dateparse.ParseAny(s.Value)
		if err != nil {
			return fault(env, serrors.KindValue, "cannot parse %q as a date", s.Value)
		}
		d := NewDict()
		d.Set("year", &Integer{Value: int64(t.Year())})
		d.Set("month", &Integer{Value: int64(t.Month())})
		d.Set("day", &Integer{Value: int64(t.Day())})
		d.Set("hour", &Integer{Value: int64(t.Hour())})
		d.Set("minute", &Integer{Value: int64(t.Minute())})
		d.Set("second", &Integer{Value: int64(t.Second())})
		d.Set("unix", &Integer{Value: t.Unix()})
		d.Set("iso", &String{Value: t.Format(time.RFC3339)})
		return d
	}},
}

func inspectAll(args []Object) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = a.Inspect()
	}
	return out
}

package evaluator

import (
	"testing"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
)

func TestFunctionCalls(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"fun add(a, b)\nreturn a + b\nend\nadd(2, 3)", 5},
		{"fun double(x)\nreturn x * 2\nend\ndouble(double(3))", 12},
		{"let f = fun(x)\nreturn x + 1\nend\nf(9)", 10},
		// Implicit return of the last statement value
		{"fun last(x)\nx * 3\nend\nlast(4)", 12},
		// Bare return yields nil, loop after return never runs
		{"fun early(x)\nif x > 0\nreturn 1\nend\nreturn 2\nend\nearly(5)", 1},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected, tt.input)
	}
}

func TestNamedArgumentEquivalence(t *testing.T) {
	// All spellings of the same call bind identically
	base := "fun sub(a, b)\nreturn a - b\nend\n"
	tests := []string{
		"sub(10, 4)",
		"sub(a: 10, b: 4)",
		"sub(b: 4, a: 10)",
		"sub(10, b: 4)",
	}
	for _, call := range tests {
		testIntegerObject(t, testEval(t, base+call), 6, call)
	}
}

func TestDefaultsEvaluateAtCallTime(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"fun f(a, b = 10)\nreturn a + b\nend\nf(1)", 11},
		{"fun f(a, b = 10)\nreturn a + b\nend\nf(1, 2)", 3},
		// A default can reference parameters bound before it
		{"fun f(a, b = a * 2)\nreturn a + b\nend\nf(3)", 9},
		// Mutable defaults are rebuilt per call, never shared
		{"fun f(xs = [])\npush(xs, 1)\nreturn len(xs)\nend\nf()\nf()", 1},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected, tt.input)
	}
}

func TestVariadicParameters(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"fun f(a, *rest)\nreturn len(rest)\nend\nf(1)", 0},
		{"fun f(a, *rest)\nreturn len(rest)\nend\nf(1, 2, 3, 4)", 3},
		{"fun f(a, *rest)\nreturn rest[0]\nend\nf(1, 20, 30)", 20},
		{"fun f(**kw)\nreturn len(kw)\nend\nf(a: 1, b: 2)", 2},
		{"fun f(**kw)\nreturn kw[\"b\"]\nend\nf(a: 1, b: 2)", 2},
		{"fun f(a, *rest, **kw)\nreturn a + len(rest) + len(kw)\nend\nf(1, 2, 3, x: 9)", 4},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected, tt.input)
	}
}

func TestArgumentFaults(t *testing.T) {
	tests := []struct {
		input string
		kind  serrors.Kind
	}{
		// Missing required argument
		{"fun f(a, b)\nreturn a\nend\nf(1)", serrors.KindArg},
		// Too many positional arguments
		{"fun f(a)\nreturn a\nend\nf(1, 2)", serrors.KindArg},
		// Same parameter bound positionally and by name
		{"fun f(a, b)\nreturn a\nend\nf(1, 2, a: 3)", serrors.KindArg},
		// Unknown named argument without **kw
		{"fun f(a)\nreturn a\nend\nf(1, z: 2)", serrors.KindArg},
		// Annotation mismatch
		{"fun f(a: Int)\nreturn a\nend\nf(\"x\")", serrors.KindType},
		// Calling a non-callable
		{"let x = 5\nx(1)", serrors.KindType},
	}
	for _, tt := range tests {
		testException(t, testEval(t, tt.input), tt.kind, tt.input)
	}
}

func TestClosures(t *testing.T) {
	input := `
fun make(n)
return fun(x)
return x + n
end
end
let add5 = make(5)
let add10 = make(10)
add5(1) + add10(1)
`
	testIntegerObject(t, testEval(t, input), 17, "closure capture")

	// Each closure owns its captured environment
	independent := `
fun counter()
let n = 0
return fun()
n = n + 1
return n
end
end
let c1 = counter()
let c2 = counter()
c1()
c1()
c2()
`
	testIntegerObject(t, testEval(t, independent), 1, "independent closures")
}

func TestLanguageRecursion(t *testing.T) {
	input := `
fun fib(n)
if n < 2
return n
end
return fib(n - 1) + fib(n - 2)
end
fib(12)
`
	testIntegerObject(t, testEval(t, input), 144, "fib(12)")
}

func TestMaxCallDepth(t *testing.T) {
	input := "fun f()\nreturn f()\nend\nf()"
	testException(t, testEval(t, input), serrors.KindRuntime, "unbounded recursion")
}

package evaluator

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
)

// evalBoth runs the same program through the frame-stack engine and the
// all-recursive strategy
func evalBoth(t *testing.T, input string) (iterative, recursive Object) {
	t.Helper()
	run := func() Object {
		l := lexer.New(input)
		p := parser.New(l)
		program := p.ParseProgram()
		if len(p.Errors()) > 0 {
			t.Fatalf("parse error: %s (input %q)", p.Errors()[0], input)
		}
		return Eval(program, NewEnvironment())
	}

	iterative = run()

	useIterative = false
	defer func() { useIterative = true }()
	recursive = run()

	return iterative, recursive
}

func TestStrategyEquivalence(t *testing.T) {
	// Both evaluation strategies must produce identical results
	tests := []string{
		"1 + 2 * 3 - 4 / 2",
		"(1 + 2) * (3 + 4)",
		"let x = 10\nif x > 5\nx * 2\nelse\nx / 2\nend",
		"let sum = 0\nfor i in range(100)\nsum = sum + i\nend\nsum",
		"let i = 0\nwhile i < 50\ni = i + 1\nend\ni",
		"[1, 2, 3][1] + {a: 10}[\"a\"]",
		"fun f(a, b = 2)\nreturn a * b\nend\nf(3) + f(3, 4)",
		"\"a\" .. 1 .. \"b\" .. 2",
		"let x = nil\nx ?: 7",
		"try\nraise TypeErr(\"t\")\ncatch e\ne.kind()\nend",
	}

	for _, input := range tests {
		iter, rec := evalBoth(t, input)
		if diff := cmp.Diff(rec.Inspect(), iter.Inspect()); diff != "" {
			t.Errorf("strategies disagree for %q (-recursive +iterative):\n%s", input, diff)
		}
		if iter.Type() != rec.Type() {
			t.Errorf("strategies disagree on type for %q: %s vs %s", input, iter.Type(), rec.Type())
		}
	}
}

func TestDeeplyNestedExpressions(t *testing.T) {
	// 10,000 levels of expression nesting must not exhaust the native
	// stack when the frame-stack engine drives evaluation
	depth := 10000
	var sb strings.Builder
	sb.WriteString(strings.Repeat("(", depth))
	sb.WriteString("1")
	for i := 0; i < depth; i++ {
		sb.WriteString(" + 1)")
	}

	result := testEval(t, sb.String())
	testIntegerObject(t, result, int64(depth+1), "deeply nested arithmetic")
}

func TestDeeplyNestedConditionals(t *testing.T) {
	// Nested if statements grow machine frames, not native frames
	depth := 5000
	var sb strings.Builder
	sb.WriteString("let x = 0\n")
	for i := 0; i < depth; i++ {
		sb.WriteString("if true\n")
	}
	sb.WriteString("x = 1\n")
	for i := 0; i < depth; i++ {
		sb.WriteString("end\n")
	}
	sb.WriteString("x")

	testIntegerObject(t, testEval(t, sb.String()), 1, "deeply nested conditionals")
}

func TestLongLoops(t *testing.T) {
	// Iteration count must not grow any stack
	tests := []struct {
		input    string
		expected int64
	}{
		{"let i = 0\nwhile i < 100000\ni = i + 1\nend\ni", 100000},
		{"let sum = 0\nfor i in range(20000)\nsum = sum + 1\nend\nsum", 20000},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected, tt.input)
	}
}

func TestLongArrayLiterals(t *testing.T) {
	n := 20000
	var sb strings.Builder
	sb.WriteString("len([")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("1")
	}
	sb.WriteString("])")

	testIntegerObject(t, testEval(t, sb.String()), int64(n), "long array literal")
}

func TestMachineHandlesCallsInExpressions(t *testing.T) {
	// Calls nested inside machine-driven expressions re-enter the
	// recursive path and come back with the right value
	input := "fun inc(x)\nreturn x + 1\nend\n1 + inc(2) * inc(3)"
	testIntegerObject(t, testEval(t, input), 13, input)
}

func TestMachineLoopControl(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		// break out of a nested conditional inside a loop
		{"let i = 0\nwhile true\ni = i + 1\nif i >= 7\nif true\nbreak\nend\nend\nend\ni", 7},
		// return from inside a loop inside a function
		{"fun find(xs, want)\nfor x in xs\nif x == want\nreturn x\nend\nend\nreturn -1\nend\nfind([5, 6, 7], 6)", 6},
		{"fun find(xs, want)\nfor x in xs\nif x == want\nreturn x\nend\nend\nreturn -1\nend\nfind([5, 6, 7], 9)", -1},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected, tt.input)
	}
}

func TestMachineExceptionPropagation(t *testing.T) {
	// A fault deep inside nested machine frames unwinds cleanly
	input := "let x = 0\ntry\nlet y = 1 + (2 * (3 + (4 / 0)))\ncatch e: ArithErr\nx = 1\nend\nx"
	testIntegerObject(t, testEval(t, input), 1, input)
}

package evaluator

import (
	"strings"
	"testing"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
)

func TestRaiseAndCatch(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		// Catch-all handler
		{"let x = 0\ntry\nraise \"boom\"\nx = 1\ncatch e\nx = 2\nend\nx", 2},
		// Kind-matched handler
		{"let x = 0\ntry\nraise TypeErr(\"bad\")\ncatch e: TypeErr\nx = 1\nend\nx", 1},
		// First matching clause wins
		{"let x = 0\ntry\nraise TypeErr(\"bad\")\ncatch e: ValueErr\nx = 1\ncatch e: TypeErr\nx = 2\ncatch e\nx = 3\nend\nx", 2},
		// Err catches every kind
		{"let x = 0\ntry\nraise IndexErr(\"oops\")\ncatch e: Err\nx = 1\nend\nx", 1},
		// No fault: handlers never run
		{"let x = 0\ntry\nx = 1\ncatch e\nx = 2\nend\nx", 1},
		// Runtime faults are catchable like raised exceptions
		{"let x = 0\ntry\nlet y = 1 / 0\ncatch e: ArithErr\nx = 1\nend\nx", 1},
		{"let x = 0\ntry\nlet y = [1][9]\ncatch e: IndexErr\nx = 1\nend\nx", 1},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected, tt.input)
	}
}

func TestUnmatchedKindPropagates(t *testing.T) {
	input := "try\nraise TypeErr(\"bad\")\ncatch e: ValueErr\nend"
	testException(t, testEval(t, input), serrors.KindType, input)
}

func TestCaughtExceptionIsInspectable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"try\nraise TypeErr(\"the message\")\ncatch e\nreturn e.message()\nend", "the message"},
		{"try\nraise TypeErr(\"x\")\ncatch e\nreturn e.kind()\nend", "TypeErr"},
		{"try\nraise \"plain\"\ncatch e\nreturn e.kind()\nend", "RuntimeErr"},
	}
	for _, tt := range tests {
		result := testEval(t, tt.input)
		s, ok := result.(*String)
		if !ok {
			t.Errorf("expected String, got %T (%s) for input %q", result, result.Inspect(), tt.input)
			continue
		}
		if s.Value != tt.expected {
			t.Errorf("expected %q, got %q for input %q", tt.expected, s.Value, tt.input)
		}
	}
}

func TestEnsureRunsOnEveryPath(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		// Normal completion
		{"let x = 0\ntry\nx = 1\nensure\nx = x + 10\nend\nx", 11},
		// Caught exception
		{"let x = 0\ntry\nraise \"boom\"\ncatch e\nx = 1\nensure\nx = x + 10\nend\nx", 11},
		// Uncaught exception still runs ensure before propagating
		{"let x = 0\ntry\ntry\nraise TypeErr(\"bad\")\nensure\nx = 5\nend\ncatch e\nend\nx", 5},
		// Return through ensure
		{"fun f()\nlet x = 0\ntry\nreturn 1\nensure\nx = 9\nend\nend\nf()", 1},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected, tt.input)
	}
}

func TestEnsureRunsExactlyOnce(t *testing.T) {
	input := `
let count = 0
fun risky(n)
try
if n > 0
raise ValueErr("no")
end
ensure
count = count + 1
end
return nil
end
try
risky(1)
catch e
end
risky(0)
count
`
	testIntegerObject(t, testEval(t, input), 2, "ensure once per execution")
}

func TestStackTraceCompleteness(t *testing.T) {
	input := `
fun c()
raise ValueErr("deep")
end
fun b()
return c()
end
fun a()
return b()
end
a()
`
	ex := testException(t, testEval(t, input), serrors.KindValue, "nested trace")
	if len(ex.Stack) < 3 {
		t.Fatalf("expected at least 3 stack entries, got %d: %v", len(ex.Stack), ex.Stack)
	}
	// Innermost first
	if !strings.HasPrefix(ex.Stack[0], "c") {
		t.Errorf("expected innermost frame c, got %q", ex.Stack[0])
	}
	if !strings.HasPrefix(ex.Stack[1], "b") {
		t.Errorf("expected frame b, got %q", ex.Stack[1])
	}
	if !strings.HasPrefix(ex.Stack[2], "a") {
		t.Errorf("expected frame a, got %q", ex.Stack[2])
	}
}

func TestTraceFrozenAtRaise(t *testing.T) {
	// The trace reflects the stack when the exception was raised, not
	// where it was caught
	input := `
fun inner()
raise ValueErr("x")
end
fun outer()
try
inner()
catch e
return e.stack()
end
end
outer()
`
	result := testEval(t, input)
	arr, ok := result.(*Array)
	if !ok {
		t.Fatalf("expected Array, got %T (%s)", result, result.Inspect())
	}
	if len(arr.Elements) < 2 {
		t.Fatalf("expected at least 2 frames, got %d", len(arr.Elements))
	}
	if s := arr.Elements[0].(*String).Value; !strings.HasPrefix(s, "inner") {
		t.Errorf("expected innermost frame inner, got %q", s)
	}
}

func TestStackResetAfterCatch(t *testing.T) {
	// A fault raised after a catch carries a fresh trace with no frames
	// left over from the handled one
	input := `
fun deep()
raise ValueErr("first")
end
try
deep()
catch e
end
fun shallow()
raise ValueErr("second")
end
shallow()
`
	ex := testException(t, testEval(t, input), serrors.KindValue, "fresh trace")
	if ex.Message != "second" {
		t.Fatalf("expected second fault, got %q", ex.Message)
	}
	if len(ex.Stack) != 1 {
		t.Errorf("expected exactly 1 stack entry, got %d: %v", len(ex.Stack), ex.Stack)
	}
	if !strings.HasPrefix(ex.Stack[0], "shallow") {
		t.Errorf("expected frame shallow, got %q", ex.Stack[0])
	}
}

func TestRaiseNonRaisableFaults(t *testing.T) {
	input := "raise 42"
	testException(t, testEval(t, input), serrors.KindType, input)
}

func TestCustomRaiseFromCaughtValue(t *testing.T) {
	// Re-raising a caught exception keeps its kind and message
	input := `
try
try
raise TypeErr("original")
catch e
raise e
end
catch outer
return outer.message()
end
`
	result := testEval(t, input)
	s, ok := result.(*String)
	if !ok {
		t.Fatalf("expected String, got %T", result)
	}
	if s.Value != "original" {
		t.Errorf("expected %q, got %q", "original", s.Value)
	}
}

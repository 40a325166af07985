// Package repl implements the interactive Sorrel shell with line
// editing, history, and tab completion.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/evaluator"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

// Sorrel keywords and builtins for tab completion
var completionWords = []string{
	// Keywords
	"let", "fun", "return", "if", "elif", "else", "while", "for", "in",
	"break", "continue", "end", "try", "catch", "ensure", "raise", "type",
	"and", "or", "not", "true", "false", "nil",
	// Builtins
	"len", "type", "str", "int", "float", "dec", "big", "push", "pop",
	"keys", "values", "del", "range", "log", "logLine", "date",
	// Exception kinds
	"Err", "NameErr", "TypeErr", "ValueErr", "ArgErr", "AttrErr",
	"IndexErr", "KeyErr", "ArithErr", "RuntimeErr",
}

// Start runs the REPL until exit or Ctrl+D
func Start(in io.Reader, out io.Writer, version string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	historyFile := filepath.Join(os.TempDir(), ".sorrel_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	env := evaluator.NewEnvironment()

	fmt.Fprintf(out, "sorrel v%s\n", version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		prompt := PROMPT
		if inputBuffer.Len() > 0 {
			prompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "")
				return
			}
			fmt.Fprintf(out, "error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			return
		}
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}
		inputBuffer.Reset()

		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		l := lexer.New(fullInput)
		p := parser.New(l)
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) != 0 {
			for _, msg := range errs {
				fmt.Fprintf(out, "parse error: %s\n", msg)
			}
			continue
		}

		result := evaluator.Eval(program, env)
		if ex, ok := result.(*evaluator.Exception); ok && ex.Raised() {
			io.WriteString(out, ex.ToSorrelError().PrettyString())
			io.WriteString(out, "\n")
			continue
		}
		if result != nil && result != evaluator.NULL {
			io.WriteString(out, result.Inspect())
			io.WriteString(out, "\n")
		}
	}
}

// needsMoreInput reports whether the buffered input is an unfinished
// block or has unclosed brackets, so the REPL keeps reading lines
func needsMoreInput(input string) bool {
	depth := 0
	brackets := 0
	l := lexer.New(input)
	for {
		tok := l.NextToken()
		switch tok.Type {
		case lexer.EOF:
			return depth > 0 || brackets > 0
		case lexer.FUN, lexer.IF, lexer.WHILE, lexer.FOR, lexer.TRY, lexer.TYPE:
			depth++
		case lexer.END:
			if depth > 0 {
				depth--
			}
		case lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE:
			brackets++
		case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE:
			if brackets > 0 {
				brackets--
			}
		}
	}
}

func filterCompletions(prefix string) []string {
	// Complete on the last word so mid-expression completion works
	last := prefix
	if i := strings.LastIndexAny(prefix, " \t([{,"); i >= 0 {
		last = prefix[i+1:]
	}
	if last == "" {
		return nil
	}
	head := prefix[:len(prefix)-len(last)]
	var matches []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, last) {
			matches = append(matches, head+w)
		}
	}
	return matches
}

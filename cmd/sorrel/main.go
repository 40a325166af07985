package main

import (
	"flag"
	"fmt"
	"os"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/evaluator"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0"

var (
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	checkFlag    = flag.Bool("check", false, "Check syntax without executing")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag || *versionLongFlag {
		fmt.Printf("sorrel version %s\n", Version)
		os.Exit(0)
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		os.Exit(run(evalCode, "<eval>", false, true))
	case *checkFlag:
		for _, file := range flag.Args() {
			source, err := os.ReadFile(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "sorrel: %v\n", err)
				os.Exit(1)
			}
			if code := run(string(source), file, true, false); code != 0 {
				os.Exit(code)
			}
			fmt.Printf("%s: OK\n", file)
		}
	case len(flag.Args()) > 0:
		file := flag.Args()[0]
		source, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sorrel: %v\n", err)
			os.Exit(1)
		}
		os.Exit(run(string(source), file, false, false))
	default:
		repl.Start(os.Stdin, os.Stdout, Version)
	}
}

// run parses and optionally executes source, reporting errors to stderr.
// Returns the process exit code.
func run(source, filename string, checkOnly, printResult bool) int {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) != 0 {
		for _, msg := range errs {
			e := serrors.New(serrors.KindParse, "%s", msg)
			fmt.Fprintf(os.Stderr, "%s: %s\n", filename, e.PrettyString())
		}
		return 1
	}
	if checkOnly {
		return 0
	}

	env := evaluator.NewEnvironment()
	result := evaluator.Eval(program, env)
	if ex, ok := result.(*evaluator.Exception); ok && ex.Raised() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", filename, ex.ToSorrelError().PrettyString())
		return 1
	}
	if printResult && result != nil && result != evaluator.NULL {
		fmt.Println(result.Inspect())
	}
	return 0
}

func printHelp() {
	fmt.Println("Usage: sorrel [options] [script]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -e, --eval <code>   Evaluate code string")
	fmt.Println("  -check <files>      Check syntax without executing")
	fmt.Println("  -V, --version       Show version information")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println()
	fmt.Println("With no script, sorrel starts an interactive session.")
}

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dorktype/lice/pkg/codegen"
	"github.com/dorktype/lice/pkg/compile"
	"github.com/dorktype/lice/pkg/parser"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
lice reads a single translation unit of C from stdin and writes AT&T-syntax
x86-64 assembly, targeting the System V AMD64 ABI, to stdout. With --dump-ast
it instead prints the parsed syntax tree and performs no code generation.
`, "\n", " ")

var LiceCLI = cli.New(Description).
	WithOption(cli.NewOption("dump-ast", "Print the parsed syntax tree instead of generating assembly").
		WithType(cli.TypeBool)).
	WithAction(Handler)

// Handler reads all of stdin, runs it through the lexer/parser and (unless
// --dump-ast) the code generator,
// write the result to stdout. Any compile.Error is printed as one line to
// stderr and the process exits nonzero; success exits 0.
func Handler(args []string, options map[string]string) int {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lice: unable to read stdin: %s\n", err)
		return 1
	}

	p := parser.New(bytes.NewReader(source))
	top, err := p.ParseRun()
	if err != nil {
		reportError(err)
		return 1
	}

	if _, dumpAST := options["dump-ast"]; dumpAST {
		fmt.Fprint(os.Stdout, parser.DumpAST(top))
		return 0
	}

	out, err := codegen.Generate(top, p.Tables())
	if err != nil {
		reportError(err)
		return 1
	}
	fmt.Fprint(os.Stdout, out)
	return 0
}

func reportError(err error) {
	if ce, ok := err.(*compile.Error); ok {
		fmt.Fprintf(os.Stderr, "lice: %s\n", ce.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "lice: %s\n", err.Error())
}

func main() { os.Exit(LiceCLI.Run(os.Args, os.Stdout)) }

// Package parser implements LICE's operator-precedence expression parser
// fused with a recursive-descent declaration/statement parser.
//
// Grounded on its-hmny-nand2tetris/pkg/jack's file layout (one file per
// concern: parsing, lowering/semantics, scopes) even though that reference
// parses via goparsec combinators — this parser is hand-written (see
// DESIGN.md), so only the *organization* is kept, not the combinator
// technique.
package parser

import (
	"fmt"
	"io"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/compile"
	"github.com/dorktype/lice/pkg/lexer"
	"github.com/dorktype/lice/pkg/token"
	"github.com/dorktype/lice/pkg/types"
)

// Parser builds a typed AST from a token stream, resolving names and
// enforcing semantics as it goes.
type Parser struct {
	lex    *lexer.Lexer
	tables *ast.Tables

	curFuncName string
	curReturn   *types.Type
	curLocals   *[]*ast.LocalVar // appended to as locals are declared

	// break/continue/switch state lives in pkg/codegen; the parser only needs to know it's inside a loop
	// or switch well enough to accept break/continue/case syntactically,
	// which C does unconditionally (an unreachable break is a codegen-time
	// concern, not a parse-time one).
}

// New creates a Parser reading tokens from r.
func New(r io.Reader) *Parser {
	return &Parser{lex: lexer.New(r), tables: ast.NewTables()}
}

// Tables exposes the accumulated symbol tables (for pkg/codegen).
func (p *Parser) Tables() *ast.Tables { return p.tables }

// ParseRun parses the entire input and returns the ordered list of
// top-level declarations/functions.
func (p *Parser) ParseRun() ([]ast.Node, error) {
	var top []ast.Node
	for {
		tok, err := p.lex.Peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapLex(err)
		}
		_ = tok
		nodes, err := p.topLevelDecl()
		if err != nil {
			return nil, err
		}
		top = append(top, nodes...)
	}
	return top, nil
}

// ---------------------------------------------------------------- token IO

func wrapLex(err error) error {
	if err == io.EOF {
		return err
	}
	return compile.Errorf("lex", "%s", err.Error())
}

func (p *Parser) next() (token.Token, error) {
	t, err := p.lex.Next()
	if err != nil {
		return token.Token{}, wrapLex(err)
	}
	return t, nil
}

func (p *Parser) peek() (token.Token, error) {
	t, err := p.lex.Peek()
	if err != nil {
		return token.Token{}, wrapLex(err)
	}
	return t, nil
}

func (p *Parser) unget(t token.Token) { p.lex.Unget(t) }

func (p *Parser) errf(format string, args ...interface{}) error {
	return compile.Errorf("parse", format, args...)
}

func isPunct(t token.Token, c int) bool { return t.Kind == token.PUNCT && t.Int == c }

func (p *Parser) expectPunct(c rune) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if !isPunct(t, int(c)) {
		return p.errf("expected '%c' but got %s", c, t.String())
	}
	return nil
}

func (p *Parser) consumeIfPunct(c rune) (bool, error) {
	t, err := p.peek()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if isPunct(t, int(c)) {
		_, _ = p.next()
		return true, nil
	}
	return false, nil
}

func (p *Parser) peekIsPunct(c rune) (bool, error) {
	t, err := p.peek()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return isPunct(t, int(c)), nil
}

func (p *Parser) peekIsKeyword(kw string) (bool, error) {
	t, err := p.peek()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return t.Kind == token.IDENTIFIER && t.Text == kw, nil
}

func (p *Parser) consumeIfKeyword(kw string) (bool, error) {
	ok, err := p.peekIsKeyword(kw)
	if err != nil || !ok {
		return false, err
	}
	_, _ = p.next()
	return true, nil
}

func (p *Parser) expectIdentifier() (string, error) {
	t, err := p.next()
	if err != nil {
		return "", err
	}
	if t.Kind != token.IDENTIFIER {
		return "", p.errf("expected identifier but got %s", t.String())
	}
	return t.Text, nil
}

var keywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"struct": true, "union": true, "enum": true, "typedef": true,
	"extern": true, "static": true, "auto": true, "register": true,
	"const": true, "volatile": true, "restrict": true, "sizeof": true,
	"if": true, "else": true, "while": true, "do": true, "for": true,
	"switch": true, "case": true, "default": true, "break": true,
	"continue": true, "return": true, "goto": true,
}

func (p *Parser) isTypeStart() (bool, error) {
	t, err := p.peek()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if t.Kind != token.IDENTIFIER {
		return false, nil
	}
	if keywords[t.Text] {
		switch t.Text {
		case "void", "char", "short", "int", "long", "float", "double",
			"signed", "unsigned", "struct", "union", "enum", "typedef",
			"extern", "static", "auto", "register", "const", "volatile", "restrict":
			return true, nil
		}
		return false, nil
	}
	if _, ok := p.tables.Typedefs.Lookup(t.Text); ok {
		return true, nil
	}
	return false, nil
}

func internalErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w", compile.ICE(format, args...))
}

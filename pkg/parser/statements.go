package parser

import (
	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/token"
	"github.com/dorktype/lice/pkg/types"
)

// compoundStatement parses a `{ ... }` block, pushing its own local/tag/
// typedef scope.
func (p *Parser) compoundStatement() (ast.Node, error) {
	if err := p.expectPunct('{'); err != nil {
		return nil, err
	}
	p.tables.PushLocalScope()
	defer p.tables.PopLocalScope()

	var stmts []ast.Node
	for {
		if closed, err := p.peekIsPunct('}'); err != nil {
			return nil, err
		} else if closed {
			break
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	if err := p.expectPunct('}'); err != nil {
		return nil, err
	}
	return ast.NewCompound(stmts), nil
}

// statement dispatches on the next token to parse one of the C statement
// forms: compound, if/else, while/do/for, switch, break/continue/return,
// goto/label, or a bare expression statement.
func (p *Parser) statement() (ast.Node, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}

	if t.Kind == token.IDENTIFIER {
		switch t.Text {
		case "if":
			return p.ifStatement()
		case "while":
			return p.whileStatement()
		case "do":
			return p.doWhileStatement()
		case "for":
			return p.forStatement()
		case "switch":
			return p.switchStatement()
		case "case":
			return p.caseStatement()
		case "default":
			return p.defaultStatement()
		case "break":
			_, _ = p.next()
			if err := p.expectPunct(';'); err != nil {
				return nil, err
			}
			return ast.NewBreak(), nil
		case "continue":
			_, _ = p.next()
			if err := p.expectPunct(';'); err != nil {
				return nil, err
			}
			return ast.NewContinue(), nil
		case "return":
			return p.returnStatement()
		case "goto":
			return p.gotoStatement()
		}

		if !keywords[t.Text] {
			ident, _ := p.next()
			if colon, err := p.peekIsPunct(':'); err != nil {
				return nil, err
			} else if colon {
				_, _ = p.next()
				p.tables.Labels[ident.Text] = ident.Text
				return ast.NewLabel(ident.Text), nil
			}
			p.unget(ident)
		}
	}

	if isType, err := p.isTypeStart(); err != nil {
		return nil, err
	} else if isType {
		return p.declarationStatement()
	}

	if brace, err := p.peekIsPunct('{'); err != nil {
		return nil, err
	} else if brace {
		return p.compoundStatement()
	}

	if empty, err := p.peekIsPunct(';'); err != nil {
		return nil, err
	} else if empty {
		_, _ = p.next()
		return nil, nil
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(';'); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) ifStatement() (ast.Node, error) {
	_, _ = p.next()
	if err := p.expectPunct('('); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els ast.Node
	if ok, err := p.consumeIfKeyword("else"); err != nil {
		return nil, err
	} else if ok {
		els, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIf(cond, then, els), nil
}

func (p *Parser) whileStatement() (ast.Node, error) {
	_, _ = p.next()
	if err := p.expectPunct('('); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(cond, body), nil
}

func (p *Parser) doWhileStatement() (ast.Node, error) {
	_, _ = p.next() // 'do'
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	if ok, err := p.consumeIfKeyword("while"); err != nil {
		return nil, err
	} else if !ok {
		return nil, p.errf("expected 'while' after do-statement body")
	}
	if err := p.expectPunct('('); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}
	if err := p.expectPunct(';'); err != nil {
		return nil, err
	}
	return ast.NewDoWhile(cond, body), nil
}

// forStatement parses `for (init; cond; step) body`, all three clauses
// optional, with its own scope so a declaration in init is local to the
// loop.
func (p *Parser) forStatement() (ast.Node, error) {
	_, _ = p.next()
	p.tables.PushLocalScope()
	defer p.tables.PopLocalScope()

	if err := p.expectPunct('('); err != nil {
		return nil, err
	}

	var init ast.Node
	if semi, err := p.peekIsPunct(';'); err != nil {
		return nil, err
	} else if !semi {
		if isType, err := p.isTypeStart(); err != nil {
			return nil, err
		} else if isType {
			// declarationStatement consumes its own trailing ';'.
			init, err = p.declarationStatement()
			if err != nil {
				return nil, err
			}
		} else {
			init, err = p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(';'); err != nil {
				return nil, err
			}
		}
	} else {
		if err := p.expectPunct(';'); err != nil {
			return nil, err
		}
	}

	var cond ast.Node
	if semi, err := p.peekIsPunct(';'); err != nil {
		return nil, err
	} else if !semi {
		var err error
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(';'); err != nil {
		return nil, err
	}

	var step ast.Node
	if close, err := p.peekIsPunct(')'); err != nil {
		return nil, err
	} else if !close {
		var err error
		step, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(init, cond, step, body), nil
}

func (p *Parser) switchStatement() (ast.Node, error) {
	_, _ = p.next()
	if err := p.expectPunct('('); err != nil {
		return nil, err
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.NewSwitch(expr, body), nil
}

func (p *Parser) caseStatement() (ast.Node, error) {
	_, _ = p.next()
	v, err := p.evaluateConstant()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(':'); err != nil {
		return nil, err
	}
	return ast.NewCase(v), nil
}

func (p *Parser) defaultStatement() (ast.Node, error) {
	_, _ = p.next()
	if err := p.expectPunct(':'); err != nil {
		return nil, err
	}
	return ast.NewDefault(), nil
}

func (p *Parser) returnStatement() (ast.Node, error) {
	_, _ = p.next()
	if semi, err := p.peekIsPunct(';'); err != nil {
		return nil, err
	} else if semi {
		_, _ = p.next()
		return ast.NewReturn(nil), nil
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.curReturn != nil && p.curReturn.Tag != types.VOID {
		conv, err := p.convertAssign(p.curReturn, expr)
		if err != nil {
			return nil, err
		}
		expr = conv
	}
	if err := p.expectPunct(';'); err != nil {
		return nil, err
	}
	return ast.NewReturn(expr), nil
}

func (p *Parser) gotoStatement() (ast.Node, error) {
	_, _ = p.next()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(';'); err != nil {
		return nil, err
	}
	g := ast.NewGoto(name)
	p.tables.Gotos = append(p.tables.Gotos, g)
	return g, nil
}

// declarationStatement parses a local variable/typedef declaration.
func (p *Parser) declarationStatement() (ast.Node, error) {
	base, storage, err := p.declSpecifiers()
	if err != nil {
		return nil, err
	}

	var out []ast.Node
	for {
		name, ty, err := p.declarator(base)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, p.errf("expected declarator name")
		}

		if storage == "typedef" {
			p.tables.Typedefs.Declare(name, ty)
			if ok, err := p.consumeIfPunct(','); err != nil {
				return nil, err
			} else if ok {
				continue
			}
			if err := p.expectPunct(';'); err != nil {
				return nil, err
			}
			return wrapStatements(out), nil
		}

		lv := ast.NewLocalVar(ty, name)
		p.tables.Locals.Declare(name, lv)
		if p.curLocals != nil {
			*p.curLocals = append(*p.curLocals, lv)
		}

		var inits []ast.InitElem
		if ok, err := p.consumeIfPunct('='); err != nil {
			return nil, err
		} else if ok {
			inits, err = p.parseInitializer(ty)
			if err != nil {
				return nil, err
			}
			if ty.Tag == types.ARRAY && ty.Length < 0 {
				ty.Length = inferArrayLength(inits, ty.Pointee.Size)
				ty.Size = ty.Pointee.Size * ty.Length
			}
		}
		out = append(out, ast.NewDeclaration(lv, inits))

		if ok, err := p.consumeIfPunct(','); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		break
	}
	if err := p.expectPunct(';'); err != nil {
		return nil, err
	}
	return wrapStatements(out), nil
}

func wrapStatements(nodes []ast.Node) ast.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return ast.NewCompound(nodes)
}

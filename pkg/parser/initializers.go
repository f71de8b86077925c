package parser

import (
	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/token"
	"github.com/dorktype/lice/pkg/types"
)

// parseInitializer flattens a (possibly braced/nested) initialiser into an
// ordered list of (offset, field-type, value-expr) triples.
func (p *Parser) parseInitializer(ty *types.Type) ([]ast.InitElem, error) {
	return p.initElements(ty, 0)
}

func (p *Parser) initElements(ty *types.Type, base int) ([]ast.InitElem, error) {
	switch ty.Tag {
	case types.ARRAY:
		return p.arrayInitElements(ty, base)
	case types.STRUCTURE:
		return p.structInitElements(ty, base)
	default:
		return p.scalarInitElements(ty, base)
	}
}

func (p *Parser) arrayInitElements(ty *types.Type, base int) ([]ast.InitElem, error) {
	// char[] initialised from a string literal: one element per byte plus a
	// NUL terminator.
	if ty.Pointee.Tag == types.CHAR {
		if s, ok, err := p.tryConsumeStringLiteral(); err != nil {
			return nil, err
		} else if ok {
			elems := make([]ast.InitElem, 0, len(s)+1)
			for i := 0; i < len(s); i++ {
				elems = append(elems, ast.InitElem{Offset: base + i, Type: ty.Pointee, Value: ast.NewLiteral(ty.Pointee, int64(s[i]))})
			}
			elems = append(elems, ast.InitElem{Offset: base + len(s), Type: ty.Pointee, Value: ast.NewLiteral(ty.Pointee, 0)})
			return elems, nil
		}
	}

	if err := p.expectPunct('{'); err != nil {
		return nil, err
	}
	var elems []ast.InitElem
	idx := 0
	for {
		if closed, err := p.peekIsPunct('}'); err != nil {
			return nil, err
		} else if closed {
			break
		}
		elemBase := base + idx*ty.Pointee.Size
		sub, err := p.initElements(ty.Pointee, elemBase)
		if err != nil {
			return nil, err
		}
		elems = append(elems, sub...)
		idx++
		if ok, err := p.consumeIfPunct(','); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expectPunct('}'); err != nil {
		return nil, err
	}
	return elems, nil
}

func (p *Parser) structInitElements(ty *types.Type, base int) ([]ast.InitElem, error) {
	if err := p.expectPunct('{'); err != nil {
		return nil, err
	}
	var elems []ast.InitElem
	fi := 0
	for {
		if closed, err := p.peekIsPunct('}'); err != nil {
			return nil, err
		} else if closed {
			break
		}
		if fi >= len(ty.Fields) {
			// Extra initialisers beyond the declared fields: consume and discard
			// the expression to stay in sync with the token stream.
			if _, err := p.assignmentExpression(); err != nil {
				return nil, err
			}
		} else {
			f := ty.Fields[fi]
			sub, err := p.initElements(f.Type, base+f.Offset)
			if err != nil {
				return nil, err
			}
			elems = append(elems, sub...)
			fi++
		}
		if ok, err := p.consumeIfPunct(','); err != nil {
			return nil, err
		} else if !ok {
			break
		}
		if ty.IsUnion {
			break // only the first member of a union may be initialised
		}
	}
	if err := p.expectPunct('}'); err != nil {
		return nil, err
	}
	return elems, nil
}

func (p *Parser) scalarInitElements(ty *types.Type, base int) ([]ast.InitElem, error) {
	if braced, err := p.peekIsPunct('{'); err != nil {
		return nil, err
	} else if braced {
		_, _ = p.next()
		elems, err := p.scalarInitElements(ty, base)
		if err != nil {
			return nil, err
		}
		if ok, err := p.consumeIfPunct(','); err != nil {
			return nil, err
		} else {
			_ = ok
		}
		if err := p.expectPunct('}'); err != nil {
			return nil, err
		}
		return elems, nil
	}

	expr, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	conv, err := p.convertAssign(ty, expr)
	if err != nil {
		return nil, err
	}
	return []ast.InitElem{{Offset: base, Type: ty, Value: conv}}, nil
}

// tryConsumeStringLiteral consumes a STRING token if one is next and returns
// its decoded bytes; the literal is not added to the strings accumulator.
func (p *Parser) tryConsumeStringLiteral() (string, bool, error) {
	t, err := p.peek()
	if err != nil {
		return "", false, err
	}
	if t.Kind != token.STRING {
		return "", false, nil
	}
	_, _ = p.next()
	return t.Text, true, nil
}

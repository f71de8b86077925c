package parser

import (
	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/types"
)

// topLevelDecl parses one top-level declaration or function definition:
// `decl-specifiers declarator (= init)? (, declarator)* ;`
// or `decl-specifiers declarator function-body`.
func (p *Parser) topLevelDecl() ([]ast.Node, error) {
	base, storage, err := p.declSpecifiers()
	if err != nil {
		return nil, err
	}

	// A bare `struct Foo { ... };` / `enum { ... };` with no declarator.
	if bare, err := p.peekIsPunct(';'); err != nil {
		return nil, err
	} else if bare {
		_, _ = p.next()
		return nil, nil
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
			return out, p.expectPunct(';')
		}

		if ty.Tag == types.FUNCTION {
			if body, err := p.peekIsPunct('{'); err != nil {
				return nil, err
			} else if body {
				fn, err := p.functionDefinition(name, ty, storage == "static")
				if err != nil {
					return nil, err
				}
				return append(out, fn), nil
			}
			// Prototype declaration with no body.
			proto := ast.NewGlobalVar(ty, name, name)
			p.tables.Globals.Declare(name, proto)
			if ok, err := p.consumeIfPunct(','); err != nil {
				return nil, err
			} else if ok {
				continue
			}
			return append(out, ast.NewDeclaration(proto, nil)), p.expectPunct(';')
		}

		gv := ast.NewGlobalVar(ty, name, name)
		gv.IsStatic = storage == "static"
		p.tables.Globals.Declare(name, gv)

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
		out = append(out, ast.NewDeclaration(gv, inits))

		if ok, err := p.consumeIfPunct(','); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		break
	}
	return out, p.expectPunct(';')
}

func inferArrayLength(inits []ast.InitElem, elemSize int) int {
	max := 0
	for _, in := range inits {
		idx := in.Offset/elemSize + 1
		if idx > max {
			max = idx
		}
	}
	return max
}

// functionDefinition parses a function body and produces an *ast.Function
// with its parameter and locals lists.
func (p *Parser) functionDefinition(name string, ty *types.Type, isStatic bool) (ast.Node, error) {
	p.tables.ResetFunction()
	defer p.tables.PopLocalScope()

	prevReturn, prevName := p.curReturn, p.curFuncName
	p.curReturn, p.curFuncName = ty.Return, name
	defer func() { p.curReturn, p.curFuncName = prevReturn, prevName }()

	var locals []*ast.LocalVar
	p.curLocals = &locals

	params := make([]*ast.LocalVar, len(ty.Params))
	names := paramNamesFor(ty)
	for i, pt := range ty.Params {
		lv := ast.NewLocalVar(pt, names[i])
		params[i] = lv
		p.tables.Locals.Declare(names[i], lv)
	}

	fn := ast.NewFunction(ty, name, params, nil, nil, isStatic)
	p.tables.Globals.Declare(name, fn)

	body, err := p.compoundStatement()
	if err != nil {
		return nil, err
	}
	if err := p.resolveGotos(); err != nil {
		return nil, err
	}
	fn.Body = body
	fn.Locals = locals
	return fn, nil
}

// paramNamesFor recovers per-parameter names threaded through
// types.Type.ParamNames by parameterNamesAndTypes (declarations.go); a
// prototype with no body never reaches here, so every caller has names.
func paramNamesFor(ty *types.Type) []string {
	if len(ty.ParamNames) == len(ty.Params) {
		return ty.ParamNames
	}
	names := make([]string, len(ty.Params))
	for i := range names {
		names[i] = "_"
	}
	return names
}

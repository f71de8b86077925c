package parser

import (
	"io"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/token"
	"github.com/dorktype/lice/pkg/types"
)

// specAccumulator collects the type-specifier keywords of a
// decl-specifiers run.
type specAccumulator struct {
	voidSeen, charSeen, shortSeen, intSeen            bool
	longCount                                         int
	floatSeen, doubleSeen                             bool
	signedSeen, unsignedSeen                          bool
	aggregate                                         *types.Type // struct/union/enum-as-int result
	typedefType                                        *types.Type
	sawAny                                             bool
}

func (s *specAccumulator) resolve() (*types.Type, error) {
	if s.aggregate != nil {
		return s.aggregate, nil
	}
	if s.typedefType != nil {
		return s.typedefType, nil
	}
	if !s.sawAny {
		// Implicit int, as in traditional C; the original source allows this too.
		return types.SInt, nil
	}
	switch {
	case s.voidSeen:
		return types.Void, nil
	case s.floatSeen:
		return types.Float, nil
	case s.doubleSeen:
		if s.longCount > 0 {
			return types.LDouble, nil
		}
		return types.Double, nil
	case s.charSeen:
		if s.unsignedSeen {
			return types.UChar, nil
		}
		return types.SChar, nil
	case s.shortSeen:
		if s.unsignedSeen {
			return types.UShort, nil
		}
		return types.SShort, nil
	case s.longCount >= 2:
		if s.unsignedSeen {
			return types.ULLong, nil
		}
		return types.SLLong, nil
	case s.longCount == 1:
		if s.unsignedSeen {
			return types.ULong, nil
		}
		return types.SLong, nil
	default:
		if s.unsignedSeen {
			return types.UInt, nil
		}
		return types.SInt, nil
	}
}

// declSpecifiers parses storage-class keywords and type specifiers. const/volatile/restrict are accepted and ignored.
func (p *Parser) declSpecifiers() (*types.Type, string, error) {
	acc := specAccumulator{}
	storage := ""

loop:
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, "", err
		}
		if t.Kind != token.IDENTIFIER {
			break
		}
		switch t.Text {
		case "typedef", "extern", "static", "auto", "register":
			_, _ = p.next()
			storage = t.Text
		case "const", "volatile", "restrict":
			_, _ = p.next()
		case "void":
			_, _ = p.next()
			acc.voidSeen, acc.sawAny = true, true
		case "char":
			_, _ = p.next()
			acc.charSeen, acc.sawAny = true, true
		case "short":
			_, _ = p.next()
			acc.shortSeen, acc.sawAny = true, true
		case "int":
			_, _ = p.next()
			acc.intSeen, acc.sawAny = true, true
		case "long":
			_, _ = p.next()
			acc.longCount++
			acc.sawAny = true
		case "float":
			_, _ = p.next()
			acc.floatSeen, acc.sawAny = true, true
		case "double":
			_, _ = p.next()
			acc.doubleSeen, acc.sawAny = true, true
		case "signed":
			_, _ = p.next()
			acc.signedSeen, acc.sawAny = true, true
		case "unsigned":
			_, _ = p.next()
			acc.unsignedSeen, acc.sawAny = true, true
		case "struct":
			_, _ = p.next()
			ty, err := p.structOrUnionSpecifier(false)
			if err != nil {
				return nil, "", err
			}
			acc.aggregate, acc.sawAny = ty, true
		case "union":
			_, _ = p.next()
			ty, err := p.structOrUnionSpecifier(true)
			if err != nil {
				return nil, "", err
			}
			acc.aggregate, acc.sawAny = ty, true
		case "enum":
			_, _ = p.next()
			if err := p.enumSpecifier(); err != nil {
				return nil, "", err
			}
			acc.intSeen, acc.sawAny = true, true
		default:
			if acc.sawAny {
				break loop
			}
			if ty, ok := p.tables.Typedefs.Lookup(t.Text); ok {
				_, _ = p.next()
				acc.typedefType, acc.sawAny = ty, true
			} else {
				break loop
			}
		}
	}

	ty, err := acc.resolve()
	if err != nil {
		return nil, "", err
	}
	return ty, storage, nil
}

// declarator parses `* ... (direct-declarator) postfix*`.
// Postfix clauses bind tighter than '*' prefixes, exactly as in C; the
// parenthesised-declarator / placeholder-backpatch technique below is the
// standard way to express that in a recursive descent parser.
func (p *Parser) declarator(base *types.Type) (string, *types.Type, error) {
	ty := base
	for {
		ok, err := p.consumeIfPunct('*')
		if err != nil {
			return "", nil, err
		}
		if !ok {
			break
		}
		ty = types.Pointer(ty)
		for {
			q, err := p.peek()
			if err != nil {
				break
			}
			if q.Kind == token.IDENTIFIER && (q.Text == "const" || q.Text == "volatile" || q.Text == "restrict") {
				_, _ = p.next()
				continue
			}
			break
		}
	}

	if paren, err := p.peekIsPunct('('); err != nil {
		return "", nil, err
	} else if paren {
		// Could be a parenthesised declarator, e.g. `(*f)(int)`, or a
		// parameter list belonging directly to ty if what follows isn't a
		// valid inner declarator start. We only ever call declarator() for
		// actual declarators, so treat '(' here as a nested declarator.
		_, _ = p.next()
		placeholder := &types.Type{}
		name, inner, err := p.declarator(placeholder)
		if err != nil {
			return "", nil, err
		}
		if err := p.expectPunct(')'); err != nil {
			return "", nil, err
		}
		outer, err := p.typeSuffix(ty)
		if err != nil {
			return "", nil, err
		}
		*placeholder = *outer
		return name, inner, nil
	}

	name := ""
	t, err := p.peek()
	if err == nil && t.Kind == token.IDENTIFIER && !keywords[t.Text] {
		_, _ = p.next()
		name = t.Text
	}

	outer, err := p.typeSuffix(ty)
	if err != nil {
		return "", nil, err
	}
	return name, outer, nil
}

// typeSuffix consumes zero or more postfix `[size]`/`(params)` clauses.
func (p *Parser) typeSuffix(base *types.Type) (*types.Type, error) {
	if ok, err := p.peekIsPunct('['); err != nil {
		return nil, err
	} else if ok {
		_, _ = p.next()
		length := -1
		if closed, err := p.peekIsPunct(']'); err != nil {
			return nil, err
		} else if !closed {
			n, err := p.evaluateConstant()
			if err != nil {
				return nil, err
			}
			length = int(n)
		}
		if err := p.expectPunct(']'); err != nil {
			return nil, err
		}
		inner, err := p.typeSuffix(base)
		if err != nil {
			return nil, err
		}
		return types.Array(inner, length), nil
	}

	if ok, err := p.peekIsPunct('('); err != nil {
		return nil, err
	} else if ok {
		_, _ = p.next()
		names, params, variadic, err := p.parameterNamesAndTypes()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(')'); err != nil {
			return nil, err
		}
		return types.FunctionNamed(base, names, params, variadic), nil
	}

	return base, nil
}

// parameterNamesAndTypes parses a comma-separated parameter list, keeping
// names, used for function definitions that need *ast.LocalVar parameters.
func (p *Parser) parameterNamesAndTypes() ([]string, []*types.Type, bool, error) {
	var names []string
	var types_ []*types.Type
	if closed, err := p.peekIsPunct(')'); err != nil {
		return nil, nil, false, err
	} else if closed {
		return names, types_, false, nil
	}
	for {
		t, err := p.peek()
		if err != nil {
			return nil, nil, false, err
		}
		if t.Kind == token.ELLIPSIS {
			_, _ = p.next()
			return names, types_, true, nil
		}
		base, _, err := p.declSpecifiers()
		if err != nil {
			return nil, nil, false, err
		}
		name, ty, err := p.declarator(base)
		if err != nil {
			return nil, nil, false, err
		}
		names = append(names, name)
		types_ = append(types_, types.Decay(ty))
		if ok, err := p.consumeIfPunct(','); err != nil {
			return nil, nil, false, err
		} else if !ok {
			break
		}
	}
	return names, types_, false, nil
}

func (p *Parser) structOrUnionSpecifier(isUnion bool) (*types.Type, error) {
	tagName := ""
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t.Kind == token.IDENTIFIER && !keywords[t.Text] {
		_, _ = p.next()
		tagName = t.Text
	}

	hasBody, err := p.peekIsPunct('{')
	if err != nil {
		return nil, err
	}

	tagTable := p.tables.StructTags
	if isUnion {
		tagTable = p.tables.UnionTags
	}

	if !hasBody {
		if tagName == "" {
			return nil, p.errf("expected tag or '{' after struct/union")
		}
		if ty, ok := tagTable.Lookup(tagName); ok {
			return ty, nil
		}
		// Forward reference: install an incomplete stub, completed later.
		stub := &types.Type{Tag: types.STUB, TagName: tagName}
		tagTable.Declare(tagName, stub)
		return stub, nil
	}

	_, _ = p.next() // consume '{'
	if tagName != "" {
		if _, ok := tagTable.LookupLocal(tagName); ok {
			return nil, p.errf("redefinition of struct/union tag '%s'", tagName)
		}
	}

	fields, size, err := p.structFieldList(isUnion)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct('}'); err != nil {
		return nil, err
	}

	ty := types.Structure(fields, size, isUnion, tagName)
	if tagName != "" {
		tagTable.Declare(tagName, ty)
	}
	return ty, nil
}

// structFieldList lays out struct/union fields, splicing anonymous nested
// struct/union members into the enclosing field table.
func (p *Parser) structFieldList(isUnion bool) ([]types.Field, int, error) {
	var fields []types.Field
	offset := 0
	maxAlign := 1
	maxSize := 0

	for {
		if closed, err := p.peekIsPunct('}'); err != nil {
			return nil, 0, err
		} else if closed {
			break
		}

		base, _, err := p.declSpecifiers()
		if err != nil {
			return nil, 0, err
		}

		// Anonymous nested struct/union member: `struct { int a; };`
		if base.Tag == types.STRUCTURE && base.TagName == "" {
			if anon, err := p.peekIsPunct(';'); err == nil && anon {
				_, _ = p.next()
				align := types.FieldAlignment(base)
				off := types.Align(offset, align)
				if isUnion {
					off = 0
				}
				for _, f := range base.Fields {
					fields = append(fields, types.Field{Name: f.Name, Type: f.Type, Offset: off + f.Offset})
				}
				if align > maxAlign {
					maxAlign = align
				}
				if sz := off + base.Size; sz > maxSize {
					maxSize = sz
				}
				if !isUnion {
					offset = off + base.Size
				}
				continue
			}
		}

		for {
			name, ty, err := p.declarator(base)
			if err != nil {
				return nil, 0, err
			}
			align := types.FieldAlignment(ty)
			off := types.Align(offset, align)
			if isUnion {
				off = 0
			}
			fields = append(fields, types.Field{Name: name, Type: ty, Offset: off})
			if align > maxAlign {
				maxAlign = align
			}
			sz := off + ty.Size
			if sz > maxSize {
				maxSize = sz
			}
			if !isUnion {
				offset = off + ty.Size
			}

			if ok, err := p.consumeIfPunct(','); err != nil {
				return nil, 0, err
			} else if !ok {
				break
			}
		}
		if err := p.expectPunct(';'); err != nil {
			return nil, 0, err
		}
	}

	total := maxSize
	if isUnion {
		total = maxSize
	}
	total = types.Align(total, maxAlign)
	return fields, total, nil
}

// enumSpecifier parses `enum [tag] { A, B = const, ... }` and installs each
// enumerator as a constant int in the current environment.
func (p *Parser) enumSpecifier() error {
	t, err := p.peek()
	if err != nil {
		return err
	}
	if t.Kind == token.IDENTIFIER && !keywords[t.Text] {
		_, _ = p.next()
	}
	hasBody, err := p.peekIsPunct('{')
	if err != nil {
		return err
	}
	if !hasBody {
		return nil // reference to a previously defined enum tag: nothing further to do
	}
	_, _ = p.next()

	var next int64
	for {
		if closed, err := p.peekIsPunct('}'); err != nil {
			return err
		} else if closed {
			break
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		value := next
		if ok, err := p.consumeIfPunct('='); err != nil {
			return err
		} else if ok {
			v, err := p.evaluateConstant()
			if err != nil {
				return err
			}
			value = v
		}
		next = value + 1

		lit := ast.NewLiteral(types.SInt, value)
		p.declareConstant(name, lit)

		if ok, err := p.consumeIfPunct(','); err != nil {
			return err
		} else if !ok {
			break
		}
	}
	return p.expectPunct('}')
}

func (p *Parser) declareConstant(name string, lit *ast.Literal) {
	if p.tables.Locals != nil {
		p.tables.Locals.Declare(name, lit)
	} else {
		p.tables.Globals.Declare(name, lit)
	}
}

package parser

import (
	"io"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/token"
	"github.com/dorktype/lice/pkg/types"
)

// expression parses the comma operator: `assignment-expr (',' assignment-expr)*`.
func (p *Parser) expression() (ast.Node, error) {
	left, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	for {
		ok, err := p.consumeIfPunct(',')
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := p.assignmentExpression()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(right.Type(), ast.BinOp(','), left, right)
	}
}

// assignmentExpression handles `=` and the compound-assignment operators by
// desugaring `x op= y` to `x = x op y`.
func (p *Parser) assignmentExpression() (ast.Node, error) {
	left, err := p.conditionalExpression()
	if err != nil {
		return nil, err
	}

	t, err := p.peek()
	if err != nil {
		if err == io.EOF {
			return left, nil
		}
		return nil, err
	}

	if isPunct(t, '=') {
		if !ast.IsLvalue(left) {
			return nil, p.errf("assignment target is not an lvalue")
		}
		_, _ = p.next()
		right, err := p.assignmentExpression()
		if err != nil {
			return nil, err
		}
		rhs, err := p.convertAssign(left.Type(), right)
		if err != nil {
			return nil, err
		}
		return ast.NewAssign(left.Type(), left, rhs), nil
	}

	if op, ok := compoundOps[t.Kind]; ok {
		if !ast.IsLvalue(left) {
			return nil, p.errf("assignment target is not an lvalue")
		}
		_, _ = p.next()
		right, err := p.assignmentExpression()
		if err != nil {
			return nil, err
		}
		rop := byte(op)
		if op == ast.BinOp(token.LSHIFT) || op == ast.BinOp(token.RSHIFT) {
			rop = '&' // shifts take integer operands only, as in shiftExpression
		}
		resultTy, err := types.ResultType(rop, left.Type(), right.Type())
		if err != nil {
			return nil, p.errf("%s", err.Error())
		}
		combined := ast.NewBinary(resultTy, op, castToFloating(resultTy, left), castToFloating(resultTy, right))
		rhs, err := p.convertAssign(left.Type(), combined)
		if err != nil {
			return nil, err
		}
		return ast.NewAssign(left.Type(), left, rhs), nil
	}

	return left, nil
}

var compoundOps = map[token.Kind]ast.BinOp{
	token.COMPOUND_ADD:    ast.BinOp('+'),
	token.COMPOUND_SUB:    ast.BinOp('-'),
	token.COMPOUND_MUL:    ast.BinOp('*'),
	token.COMPOUND_DIV:    ast.BinOp('/'),
	token.COMPOUND_MOD:    ast.BinOp('%'),
	token.COMPOUND_AND:    ast.BinOp('&'),
	token.COMPOUND_OR:     ast.BinOp('|'),
	token.COMPOUND_XOR:    ast.BinOp('^'),
	token.COMPOUND_LSHIFT: ast.BinOp(token.LSHIFT),
	token.COMPOUND_RSHIFT: ast.BinOp(token.RSHIFT),
}

// convertAssign checks/applies an implicit conversion of value to target,
// inserting an explicit Cast node for arithmetic conversions.
func (p *Parser) convertAssign(target *types.Type, value ast.Node) (ast.Node, error) {
	vt := types.Decay(value.Type())
	if target.Tag == types.STRUCTURE || vt.Tag == types.STRUCTURE {
		return value, nil // struct copy: codegen moves Size bytes, no scalar conversion
	}
	if sameScalarType(target, vt) {
		return value, nil
	}
	if target.Tag == types.POINTER && vt.Tag == types.POINTER {
		return ast.NewCast(target, value), nil
	}
	if (types.IsArith(target) || target.Tag == types.POINTER) && (types.IsArith(vt) || vt.Tag == types.POINTER) {
		return ast.NewCast(target, value), nil
	}
	return nil, p.errf("incompatible types in assignment: %s and %s", target.Tag, vt.Tag)
}

func sameScalarType(a, b *types.Type) bool {
	return a.Tag == b.Tag && a.Size == b.Size && a.Signed == b.Signed
}

// castToFloating wraps n in an explicit Cast to common when common is a
// floating type and n does not already evaluate as one. genArith and
// genComparison assume a floating operand is already sitting in %xmm0; the
// usual arithmetic conversions otherwise promote only the result's declared
// type, leaving an int operand evaluated into %rax with nothing to convert
// it. Left alone for non-floating common types (pointer arithmetic in
// particular must not have its integer operand cast to the pointer type).
func castToFloating(common *types.Type, n ast.Node) ast.Node {
	if !types.IsFloating(common) || types.IsFloating(types.Decay(n.Type())) {
		return n
	}
	return ast.NewCast(common, n)
}

// nullPointerAdjust lets `ptr == 0`/`ptr != 0` (and the reverse operand
// order) through types.ResultType, which otherwise only accepts pointer
// compared against pointer. A null pointer constant is an integer constant
// expression that folds to 0; it is recast to the pointer's type so the two
// operands compare as like pointers.
func nullPointerAdjust(left, right ast.Node) (ast.Node, ast.Node) {
	lt, rt := types.Decay(left.Type()), types.Decay(right.Type())
	switch {
	case lt.Tag == types.POINTER && rt.Tag != types.POINTER && isNullConstant(right):
		return left, ast.NewCast(lt, right)
	case rt.Tag == types.POINTER && lt.Tag != types.POINTER && isNullConstant(left):
		return ast.NewCast(rt, left), right
	}
	return left, right
}

func isNullConstant(n ast.Node) bool {
	if !types.IsInteger(types.Decay(n.Type())) {
		return false
	}
	v, err := foldConstant(n)
	return err == nil && v == 0
}

// conditionalExpression parses the ternary operator.
func (p *Parser) conditionalExpression() (ast.Node, error) {
	cond, err := p.logicalOrExpression()
	if err != nil {
		return nil, err
	}
	ok, err := p.consumeIfPunct('?')
	if err != nil {
		return nil, err
	}
	if !ok {
		return cond, nil
	}
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(':'); err != nil {
		return nil, err
	}
	els, err := p.conditionalExpression()
	if err != nil {
		return nil, err
	}
	resultTy, err := ternaryResultType(then.Type(), els.Type())
	if err != nil {
		return nil, p.errf("%s", err.Error())
	}
	return ast.NewTernary(resultTy, cond, then, els), nil
}

func ternaryResultType(a, b *types.Type) (*types.Type, error) {
	a, b = types.Decay(a), types.Decay(b)
	if a.Tag == types.POINTER || b.Tag == types.POINTER {
		if a.Tag == types.POINTER {
			return a, nil
		}
		return b, nil
	}
	if !types.IsArith(a) || !types.IsArith(b) {
		return a, nil
	}
	return types.ResultType('+', a, b)
}

// binExprLevel is one entry of the binary-operator precedence table:
// lower precedence values bind looser.
type binExprLevel struct {
	ops  map[token.Kind]ast.BinOp
	next func(*Parser) (ast.Node, error)
}

func (p *Parser) logicalOrExpression() (ast.Node, error) {
	return p.leftAssocLogical(token.OROR, ast.BinOp(token.OROR), (*Parser).logicalAndExpression)
}

func (p *Parser) logicalAndExpression() (ast.Node, error) {
	return p.leftAssocLogical(token.ANDAND, ast.BinOp(token.ANDAND), (*Parser).bitOrExpression)
}

// leftAssocLogical handles && and || specially: their result type is always
// int and the operands are not required to share a type.
func (p *Parser) leftAssocLogical(tk token.Kind, op ast.BinOp, next func(*Parser) (ast.Node, error)) (ast.Node, error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		if t.Kind != tk {
			return left, nil
		}
		_, _ = p.next()
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(types.SInt, op, left, right)
	}
}

func (p *Parser) bitOrExpression() (ast.Node, error) {
	return p.binaryLevel('|', p.bitXorExpression)
}
func (p *Parser) bitXorExpression() (ast.Node, error) {
	return p.binaryLevel('^', p.bitAndExpression)
}
func (p *Parser) bitAndExpression() (ast.Node, error) {
	return p.binaryLevel('&', p.equalityExpression)
}

func (p *Parser) equalityExpression() (ast.Node, error) {
	left, err := p.relationalExpression()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		var op ast.BinOp
		switch {
		case t.Kind == token.EQUAL:
			op = ast.BinOp(token.EQUAL)
		case t.Kind == token.NEQUAL:
			op = ast.BinOp(token.NEQUAL)
		default:
			return left, nil
		}
		_, _ = p.next()
		right, err := p.relationalExpression()
		if err != nil {
			return nil, err
		}
		left, right = nullPointerAdjust(left, right)
		opTy, err := types.ResultType('=', types.Decay(left.Type()), types.Decay(right.Type()))
		if err != nil {
			return nil, p.errf("%s", err.Error())
		}
		left = ast.NewBinary(types.SInt, op, castToFloating(opTy, left), castToFloating(opTy, right))
	}
}

func (p *Parser) relationalExpression() (ast.Node, error) {
	left, err := p.shiftExpression()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		var op ast.BinOp
		matched := true
		switch {
		case isPunct(t, '<'):
			op = ast.BinOp('<')
		case isPunct(t, '>'):
			op = ast.BinOp('>')
		case t.Kind == token.LEQUAL:
			op = ast.BinOp(token.LEQUAL)
		case t.Kind == token.GEQUAL:
			op = ast.BinOp(token.GEQUAL)
		default:
			matched = false
		}
		if !matched {
			return left, nil
		}
		_, _ = p.next()
		right, err := p.shiftExpression()
		if err != nil {
			return nil, err
		}
		opTy, err := types.ResultType('<', types.Decay(left.Type()), types.Decay(right.Type()))
		if err != nil {
			return nil, p.errf("%s", err.Error())
		}
		left = ast.NewBinary(types.SInt, op, castToFloating(opTy, left), castToFloating(opTy, right))
	}
}

func (p *Parser) shiftExpression() (ast.Node, error) {
	left, err := p.additiveExpression()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		var op ast.BinOp
		switch t.Kind {
		case token.LSHIFT:
			op = ast.BinOp(token.LSHIFT)
		case token.RSHIFT:
			op = ast.BinOp(token.RSHIFT)
		default:
			return left, nil
		}
		_, _ = p.next()
		right, err := p.additiveExpression()
		if err != nil {
			return nil, err
		}
		resultTy, err := types.ResultType('&', left.Type(), right.Type())
		if err != nil {
			return nil, p.errf("%s", err.Error())
		}
		left = ast.NewBinary(resultTy, op, castToFloating(resultTy, left), castToFloating(resultTy, right))
	}
}

func (p *Parser) additiveExpression() (ast.Node, error) {
	left, err := p.multiplicativeExpression()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		var c byte
		switch {
		case isPunct(t, '+'):
			c = '+'
		case isPunct(t, '-'):
			c = '-'
		default:
			return left, nil
		}
		_, _ = p.next()
		right, err := p.multiplicativeExpression()
		if err != nil {
			return nil, err
		}
		resultTy, err := types.ResultType(c, left.Type(), right.Type())
		if err != nil {
			return nil, p.errf("%s", err.Error())
		}
		left = ast.NewBinary(resultTy, ast.BinOp(c), castToFloating(resultTy, left), castToFloating(resultTy, right))
	}
}

func (p *Parser) multiplicativeExpression() (ast.Node, error) {
	left, err := p.castExpression()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		var c byte
		switch {
		case isPunct(t, '*'):
			c = '*'
		case isPunct(t, '/'):
			c = '/'
		case isPunct(t, '%'):
			c = '%'
		default:
			return left, nil
		}
		_, _ = p.next()
		right, err := p.castExpression()
		if err != nil {
			return nil, err
		}
		resultTy, err := types.ResultType(c, left.Type(), right.Type())
		if err != nil {
			return nil, p.errf("%s", err.Error())
		}
		left = ast.NewBinary(resultTy, ast.BinOp(c), castToFloating(resultTy, left), castToFloating(resultTy, right))
	}
}

func (p *Parser) binaryLevel(c byte, next func() (ast.Node, error)) (ast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		ok, err := p.consumeIfPunct(rune(c))
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		resultTy, err := types.ResultType(c, left.Type(), right.Type())
		if err != nil {
			return nil, p.errf("%s", err.Error())
		}
		left = ast.NewBinary(resultTy, ast.BinOp(c), castToFloating(resultTy, left), castToFloating(resultTy, right))
	}
}

// castExpression handles `(type-name) cast-expression`, distinguishing a
// cast from a parenthesised expression by whether a type starts right after
// the '('.
func (p *Parser) castExpression() (ast.Node, error) {
	if open, err := p.peekIsPunct('('); err != nil {
		return nil, err
	} else if open {
		paren, _ := p.next()
		isType, err := p.isTypeStart()
		if err != nil {
			return nil, err
		}
		if isType {
			ty, err := p.typeName()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(')'); err != nil {
				return nil, err
			}
			operand, err := p.castExpression()
			if err != nil {
				return nil, err
			}
			return ast.NewCast(ty, operand), nil
		}
		p.unget(paren)
	}
	return p.unaryExpression()
}

// typeName parses an abstract type: decl-specifiers plus an optional
// abstract declarator.
func (p *Parser) typeName() (*types.Type, error) {
	base, _, err := p.declSpecifiers()
	if err != nil {
		return nil, err
	}
	_, ty, err := p.declarator(base)
	if err != nil {
		return nil, err
	}
	return ty, nil
}

func (p *Parser) unaryExpression() (ast.Node, error) {
	t, err := p.peek()
	if err != nil {
		if err == io.EOF {
			return nil, p.errf("unexpected end of input in expression")
		}
		return nil, err
	}

	if t.Kind == token.INCREMENT || t.Kind == token.DECREMENT {
		_, _ = p.next()
		operand, err := p.unaryExpression()
		if err != nil {
			return nil, err
		}
		if !ast.IsLvalue(operand) {
			return nil, p.errf("increment/decrement target is not an lvalue")
		}
		if t.Kind == token.INCREMENT {
			return ast.NewPreInc(operand.Type(), operand), nil
		}
		return ast.NewPreDec(operand.Type(), operand), nil
	}

	if t.Kind == token.IDENTIFIER && t.Text == "sizeof" {
		_, _ = p.next()
		return p.sizeofExpression()
	}

	if t.Kind == token.PUNCT {
		switch t.Int {
		case '+':
			_, _ = p.next()
			operand, err := p.castExpression()
			if err != nil {
				return nil, err
			}
			return ast.NewUnary(promoteUnary(operand.Type()), ast.UnaryPlus, operand), nil
		case '-':
			_, _ = p.next()
			operand, err := p.castExpression()
			if err != nil {
				return nil, err
			}
			return ast.NewUnary(promoteUnary(operand.Type()), ast.UnaryNeg, operand), nil
		case '!':
			_, _ = p.next()
			operand, err := p.castExpression()
			if err != nil {
				return nil, err
			}
			return ast.NewUnary(types.SInt, ast.UnaryNot, operand), nil
		case '~':
			_, _ = p.next()
			operand, err := p.castExpression()
			if err != nil {
				return nil, err
			}
			if types.IsFloating(operand.Type()) {
				return nil, p.errf("operator '~' does not accept floating operands")
			}
			return ast.NewUnary(promoteUnary(operand.Type()), ast.UnaryBNot, operand), nil
		case '*':
			_, _ = p.next()
			operand, err := p.castExpression()
			if err != nil {
				return nil, err
			}
			pt := types.Decay(operand.Type())
			if pt.Tag != types.POINTER {
				return nil, p.errf("cannot dereference non-pointer type %s", pt.Tag)
			}
			return ast.NewDereference(pt.Pointee, operand), nil
		case '&':
			_, _ = p.next()
			operand, err := p.castExpression()
			if err != nil {
				return nil, err
			}
			if !ast.IsLvalue(operand) {
				return nil, p.errf("cannot take address of non-lvalue")
			}
			return ast.NewAddress(types.Pointer(operand.Type()), operand), nil
		}
	}

	return p.postfixExpression()
}

func promoteUnary(t *types.Type) *types.Type {
	r, err := types.ResultType('+', t, t)
	if err != nil {
		return t
	}
	return r
}

// sizeofExpression handles both `sizeof ( type-name )` and
// `sizeof unary-expression`, without evaluating the operand in the latter
// case.
func (p *Parser) sizeofExpression() (ast.Node, error) {
	if open, err := p.peekIsPunct('('); err != nil {
		return nil, err
	} else if open {
		paren, _ := p.next()
		isType, err := p.isTypeStart()
		if err != nil {
			return nil, err
		}
		if isType {
			ty, err := p.typeName()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(')'); err != nil {
				return nil, err
			}
			return ast.NewLiteral(types.ULong, int64(ty.Size)), nil
		}
		p.unget(paren)
	}
	operand, err := p.unaryExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewLiteral(types.ULong, int64(operand.Type().Size)), nil
}

func (p *Parser) postfixExpression() (ast.Node, error) {
	left, err := p.primaryExpression()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return left, nil
			}
			return nil, err
		}
		if t.Kind != token.PUNCT && t.Kind != token.INCREMENT && t.Kind != token.DECREMENT && t.Kind != token.ARROW {
			return left, nil
		}

		switch {
		case isPunct(t, '['):
			_, _ = p.next()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(']'); err != nil {
				return nil, err
			}
			left, err = p.indexInto(left, idx)
			if err != nil {
				return nil, err
			}
		case isPunct(t, '('):
			_, _ = p.next()
			left, err = p.finishCall(left)
			if err != nil {
				return nil, err
			}
		case isPunct(t, '.'):
			_, _ = p.next()
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			left, err = p.fieldAccess(left, name)
			if err != nil {
				return nil, err
			}
		case t.Kind == token.ARROW:
			_, _ = p.next()
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			base := types.Decay(left.Type())
			if base.Tag != types.POINTER {
				return nil, p.errf("'->' requires a pointer operand")
			}
			deref := ast.NewDereference(base.Pointee, left)
			left, err = p.fieldAccess(deref, name)
			if err != nil {
				return nil, err
			}
		case t.Kind == token.INCREMENT:
			_, _ = p.next()
			if !ast.IsLvalue(left) {
				return nil, p.errf("increment target is not an lvalue")
			}
			left = ast.NewPostInc(left.Type(), left)
		case t.Kind == token.DECREMENT:
			_, _ = p.next()
			if !ast.IsLvalue(left) {
				return nil, p.errf("decrement target is not an lvalue")
			}
			left = ast.NewPostDec(left.Type(), left)
		default:
			return left, nil
		}
	}
}

// indexInto desugars `a[i]` to `*(a + i)`, decaying an array operand to a
// pointer to its first element first.
func (p *Parser) indexInto(base, idx ast.Node) (ast.Node, error) {
	ptr := decayToPointerValue(base)
	ptrTy := types.Decay(ptr.Type())
	if ptrTy.Tag != types.POINTER {
		return nil, p.errf("subscripted value is not an array or pointer")
	}
	if !types.IsInteger(idx.Type()) {
		return nil, p.errf("array subscript is not an integer")
	}
	sum := ast.NewBinary(ptrTy, ast.BinOp('+'), ptr, idx)
	return ast.NewDereference(ptrTy.Pointee, sum), nil
}

func decayToPointerValue(n ast.Node) ast.Node {
	if n.Type().Tag == types.ARRAY {
		return ast.NewAddress(types.Pointer(n.Type().Pointee), n)
	}
	return n
}

func (p *Parser) fieldAccess(target ast.Node, name string) (ast.Node, error) {
	st := target.Type()
	if st.Tag != types.STRUCTURE {
		return nil, p.errf("request for member '%s' in something not a struct/union", name)
	}
	f, ok := types.LookupField(st, name)
	if !ok {
		return nil, p.errf("struct/union has no member named '%s'", name)
	}
	return ast.NewFieldRef(target, name, f), nil
}

// finishCall parses a call's argument list after '(' has been consumed.
// callee must be an identifier naming a declared function; LICE has no
// function pointers.
func (p *Parser) finishCall(callee ast.Node) (ast.Node, error) {
	name, ok := callee.(*identRef)
	if !ok {
		return nil, p.errf("called object is not a function")
	}

	var args []ast.Node
	if closed, err := p.peekIsPunct(')'); err != nil {
		return nil, err
	} else if !closed {
		for {
			arg, err := p.assignmentExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if ok, err := p.consumeIfPunct(','); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
	}
	if err := p.expectPunct(')'); err != nil {
		return nil, err
	}
	if len(args) > 6 {
		return nil, p.errf("call to '%s' has more than 6 arguments", name.name)
	}

	fn, declared := p.tables.Globals.Lookup(name.name)
	var retType *types.Type = types.SInt
	var paramTypes []*types.Type
	variadic := false
	if declared {
		if ft := fn.Type(); ft.Tag == types.FUNCTION {
			retType = ft.Return
			paramTypes = ft.Params
			variadic = ft.Variadic
		}
	}

	converted := make([]ast.Node, len(args))
	for i, a := range args {
		if i < len(paramTypes) {
			c, err := p.convertAssign(paramTypes[i], a)
			if err != nil {
				return nil, err
			}
			converted[i] = c
		} else {
			converted[i] = a
		}
	}

	return ast.NewCall(retType, name.name, converted, paramTypes, variadic), nil
}

// identRef is a placeholder wrapper used only to carry an unresolved
// function name through postfixExpression to finishCall; it never survives
// into the final AST (finishCall always unwraps it into an *ast.Call, and a
// bare identRef reaching anywhere else is a parse error).
type identRef struct {
	name string
}

func (i *identRef) Kind() ast.Kind        { return ast.KindCall }
func (i *identRef) Type() *types.Type     { return types.SInt }

func (p *Parser) primaryExpression() (ast.Node, error) {
	t, err := p.next()
	if err != nil {
		if err == io.EOF {
			return nil, p.errf("unexpected end of input in expression")
		}
		return nil, err
	}

	switch t.Kind {
	case token.NUMBER:
		return parseNumberLiteral(t.Text, p)
	case token.CHAR:
		return ast.NewLiteral(types.SInt, int64(t.Int)), nil
	case token.STRING:
		label := p.tables.NewLabel()
		s := ast.NewString(t.Text, label, types.Array(types.SChar, len(t.Text)+1))
		p.tables.Strings = append(p.tables.Strings, s)
		return s, nil
	case token.IDENTIFIER:
		if next, err := p.peek(); err == nil && isPunct(next, '(') {
			return &identRef{name: t.Text}, nil
		}
		if v, ok := p.tables.LookupVariable(t.Text); ok {
			return v, nil
		}
		return nil, p.errf("use of undeclared identifier '%s'", t.Text)
	case token.PUNCT:
		if t.Int == '(' {
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(')'); err != nil {
				return nil, err
			}
			return expr, nil
		}
	}
	return nil, p.errf("unexpected token %s in expression", t.String())
}

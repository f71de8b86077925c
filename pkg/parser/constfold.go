package parser

import (
	"errors"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/token"
	"github.com/dorktype/lice/pkg/types"
)

var (
	errNotConstant = errors.New("expression is not an integer constant expression")
	errDivByZero   = errors.New("division by zero in constant expression")
)

// maskToType truncates/sign-extends v to fit t's integer width, matching
// the representation codegen would produce.
func maskToType(v int64, t *types.Type) int64 {
	if t.Size <= 0 || t.Size >= 8 {
		return v
	}
	bits := uint(t.Size * 8)
	mask := uint64(1)<<bits - 1
	u := uint64(v) & mask
	if t.Signed && u&(1<<(bits-1)) != 0 {
		u |= ^mask
	}
	return int64(u)
}

// evaluateConstant parses a conditional-expression and folds it to an int64
// at parse time, used for array bounds, enumerators and case labels.
func (p *Parser) evaluateConstant() (int64, error) {
	expr, err := p.conditionalExpression()
	if err != nil {
		return 0, err
	}
	return foldConstant(expr)
}

func foldConstant(n ast.Node) (int64, error) {
	switch v := n.(type) {
	case *ast.Literal:
		return v.Value, nil
	case *ast.Unary:
		operand, err := foldConstant(v.Operand)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case ast.UnaryNot:
			if operand == 0 {
				return 1, nil
			}
			return 0, nil
		case ast.UnaryBNot:
			return ^operand, nil
		case ast.UnaryNeg:
			return -operand, nil
		case ast.UnaryPlus:
			return operand, nil
		}
	case *ast.Binary:
		l, err := foldConstant(v.Left)
		if err != nil {
			return 0, err
		}
		r, err := foldConstant(v.Right)
		if err != nil {
			return 0, err
		}
		return foldBinary(v.Op, l, r)
	case *ast.Cast:
		val, err := foldConstant(v.Operand)
		if err != nil {
			return 0, err
		}
		return maskToType(val, v.Type()), nil
	case *ast.Ternary:
		cond, err := foldConstant(v.Cond)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return foldConstant(v.Then)
		}
		return foldConstant(v.Else)
	}
	return 0, errNotConstant
}

func foldBinary(op ast.BinOp, l, r int64) (int64, error) {
	switch byte(op) {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, errDivByZero
		}
		return l / r, nil
	case '%':
		if r == 0 {
			return 0, errDivByZero
		}
		return l % r, nil
	case '&':
		return l & r, nil
	case '|':
		return l | r, nil
	case '^':
		return l ^ r, nil
	case '<':
		return boolToInt(l < r), nil
	case '>':
		return boolToInt(l > r), nil
	}
	switch op {
	case ast.BinOp(token.EQUAL):
		return boolToInt(l == r), nil
	case ast.BinOp(token.NEQUAL):
		return boolToInt(l != r), nil
	case ast.BinOp(token.LEQUAL):
		return boolToInt(l <= r), nil
	case ast.BinOp(token.GEQUAL):
		return boolToInt(l >= r), nil
	case ast.BinOp(token.LSHIFT):
		return l << uint(r), nil
	case ast.BinOp(token.RSHIFT):
		return l >> uint(r), nil
	case ast.BinOp(token.ANDAND):
		return boolToInt(l != 0 && r != 0), nil
	case ast.BinOp(token.OROR):
		return boolToInt(l != 0 || r != 0), nil
	}
	return 0, errNotConstant
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

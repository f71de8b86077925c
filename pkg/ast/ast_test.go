package ast_test

import (
	"testing"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/types"
)

func TestExpressionNodesCarryNonNilType(t *testing.T) {
	nodes := []ast.Node{
		ast.NewLiteral(types.SInt, 42),
		ast.NewFloatLiteral(types.Double, 3.5, ".L0"),
		ast.NewString("hi", ".L1", types.Array(types.SChar, 3)),
		ast.NewLocalVar(types.SInt, "x"),
		ast.NewGlobalVar(types.SInt, "g", "g"),
	}
	for _, n := range nodes {
		if n.Type() == nil {
			t.Errorf("%T: Type() = nil, want non-nil", n)
		}
	}
}

func TestStatementNodesCarryVoidType(t *testing.T) {
	nodes := []ast.Node{
		ast.NewIf(nil, nil, nil),
		ast.NewWhile(nil, nil),
		ast.NewFor(nil, nil, nil, nil),
		ast.NewBreak(),
		ast.NewContinue(),
		ast.NewReturn(nil),
		ast.NewCompound(nil),
		ast.NewLabel("done"),
	}
	for _, n := range nodes {
		if n.Type() != types.Void {
			t.Errorf("%T: Type() = %v, want types.Void", n, n.Type())
		}
	}
}

func TestGlobalVarStaticFlag(t *testing.T) {
	gv := ast.NewGlobalVar(types.SInt, "counter", "counter")
	if gv.IsStatic {
		t.Error("NewGlobalVar must default IsStatic to false")
	}
	gv.IsStatic = true
	if !gv.IsStatic {
		t.Error("IsStatic should be settable after construction, as pkg/parser does for `static` storage")
	}
}

func TestIsLvalue(t *testing.T) {
	lvalues := []ast.Node{
		ast.NewLocalVar(types.SInt, "x"),
		ast.NewGlobalVar(types.SInt, "g", "g"),
		ast.NewDereference(types.SInt, ast.NewLocalVar(types.Pointer(types.SInt), "p")),
		ast.NewFieldRef(ast.NewLocalVar(types.SInt, "s"), "f", types.Field{Name: "f", Type: types.SInt}),
	}
	for _, n := range lvalues {
		if !ast.IsLvalue(n) {
			t.Errorf("%T should be an lvalue", n)
		}
	}

	notLvalues := []ast.Node{
		ast.NewLiteral(types.SInt, 1),
		ast.NewBinary(types.SInt, ast.BinOp('+'), ast.NewLiteral(types.SInt, 1), ast.NewLiteral(types.SInt, 2)),
		ast.NewCall(types.SInt, "f", nil, nil, false),
	}
	for _, n := range notLvalues {
		if ast.IsLvalue(n) {
			t.Errorf("%T should not be an lvalue", n)
		}
	}
}

func TestUnaryOpConstantsAreDistinct(t *testing.T) {
	seen := map[ast.UnaryOp]bool{}
	for _, op := range []ast.UnaryOp{ast.UnaryNot, ast.UnaryBNot, ast.UnaryNeg, ast.UnaryPlus} {
		if seen[op] {
			t.Errorf("UnaryOp %d used by more than one constant", op)
		}
		seen[op] = true
	}
}

func TestFieldRefInheritsFieldType(t *testing.T) {
	field := types.Field{Name: "y", Type: types.Double, Offset: 8}
	ref := ast.NewFieldRef(ast.NewLocalVar(types.SInt, "p"), "y", field)
	if ref.Type() != types.Double {
		t.Errorf("FieldRef.Type() = %v, want the field's own type", ref.Type())
	}
	if ref.Field.Offset != 8 {
		t.Errorf("FieldRef.Field.Offset = %d, want 8", ref.Field.Offset)
	}
}

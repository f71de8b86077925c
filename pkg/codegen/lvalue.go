package codegen

import (
	"fmt"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/types"
)

// genAddressOf computes n's address into %rax. Valid for every node
// ast.IsLvalue accepts, plus array/struct-typed expressions more generally
// (genExpr routes those here directly) and string literals.
func (g *Generator) genAddressOf(n ast.Node) error {
	switch v := n.(type) {
	case *ast.LocalVar:
		g.asm("\tlea %d(%%rbp), %%rax\n", v.Offset)
		return nil
	case *ast.GlobalVar:
		g.asm("\tlea %s(%%rip), %%rax\n", v.Label)
		return nil
	case *ast.Str:
		g.asm("\tlea %s(%%rip), %%rax\n", v.Label)
		return nil
	case *ast.Dereference:
		return g.genExpr(v.Operand)
	case *ast.FieldRef:
		if err := g.genAddressOf(v.Target); err != nil {
			return err
		}
		if v.Field.Offset != 0 {
			g.asm("\tadd $%d, %%rax\n", v.Field.Offset)
		}
		return nil
	case *ast.Assign:
		if v.Lhs.Type().Tag == types.STRUCTURE {
			return g.genStructAssign(v)
		}
	}
	return internalErrorf("codegen: cannot take the address of node kind %d", n.Kind())
}

// genAssign lowers `lhs = rhs`, dispatching to the right store path by the
// lvalue's shape. Struct-typed assignment copies the aggregate's bytes
// rather than a scalar register.
func (g *Generator) genAssign(a *ast.Assign) error {
	if a.Lhs.Type().Tag == types.STRUCTURE {
		return g.genStructAssign(a)
	}

	switch lhs := a.Lhs.(type) {
	case *ast.LocalVar:
		if err := g.genExpr(a.Rhs); err != nil {
			return err
		}
		g.store(fmt.Sprintf("%d(%%rbp)", lhs.Offset), lhs.Type())
		return nil
	case *ast.GlobalVar:
		if err := g.genExpr(a.Rhs); err != nil {
			return err
		}
		g.store(fmt.Sprintf("%s(%%rip)", lhs.Label), lhs.Type())
		return nil
	case *ast.Dereference:
		if err := g.genExpr(lhs.Operand); err != nil {
			return err
		}
		g.pushInt()
		if err := g.genExpr(a.Rhs); err != nil {
			return err
		}
		g.popIntTo("r11")
		g.store("(%r11)", a.Lhs.Type())
		return nil
	case *ast.FieldRef:
		if err := g.genAddressOf(lhs); err != nil {
			return err
		}
		g.pushInt()
		if err := g.genExpr(a.Rhs); err != nil {
			return err
		}
		g.popIntTo("r11")
		g.store("(%r11)", a.Lhs.Type())
		return nil
	}
	return internalErrorf("codegen: assignment to non-lvalue node kind %d", a.Lhs.Kind())
}

// genStructAssign copies a struct/union by value with a rep movsb loop,
// leaving the destination's address in %rax as the assignment expression's
// value (C allows `a = b = c;` even for aggregates).
func (g *Generator) genStructAssign(a *ast.Assign) error {
	if err := g.genAddressOf(a.Lhs); err != nil {
		return err
	}
	g.pushInt()
	if err := g.genExpr(a.Rhs); err != nil { // struct-typed Rhs already yields its address
		return err
	}
	g.asm("\tmov %%rax, %%rsi\n")
	g.popIntTo("rdi")
	g.asm("\tmov %%rdi, %%r11\n")
	g.asm("\tmov $%d, %%rcx\n\tcld\n\trep movsb\n", a.Lhs.Type().Size)
	g.asm("\tmov %%r11, %%rax\n")
	return nil
}

package codegen

import (
	"fmt"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/token"
	"github.com/dorktype/lice/pkg/types"
)

// genExpr lowers n, leaving the result in %rax (integer/pointer) or %xmm0
// (floating). Array- and struct-typed expressions instead leave their
// address in %rax, the convention genAddressOf and the assignment paths in
// lvalue.go both rely on.
func (g *Generator) genExpr(n ast.Node) error {
	if n == nil {
		return internalErrorf("nil expression node reached codegen")
	}
	if t := n.Type(); t != nil && (t.Tag == types.ARRAY || t.Tag == types.STRUCTURE) {
		return g.genAddressOf(n)
	}

	switch v := n.(type) {
	case *ast.Literal:
		g.asm("\tmov $%d, %%rax\n", v.Value)
		return nil
	case *ast.FloatLiteral:
		g.asm("\tmovsd %s(%%rip), %%xmm0\n", v.Label)
		return nil
	case *ast.Str:
		g.asm("\tlea %s(%%rip), %%rax\n", v.Label)
		return nil
	case *ast.LocalVar:
		g.load(fmt.Sprintf("%d(%%rbp)", v.Offset), v.Type())
		return nil
	case *ast.GlobalVar:
		g.load(fmt.Sprintf("%s(%%rip)", v.Label), v.Type())
		return nil
	case *ast.Dereference:
		if err := g.genExpr(v.Operand); err != nil {
			return err
		}
		g.load("(%rax)", v.Type())
		return nil
	case *ast.FieldRef:
		if err := g.genAddressOf(v); err != nil {
			return err
		}
		g.load("(%rax)", v.Type())
		return nil
	case *ast.Address:
		return g.genAddressOf(v.Operand)
	case *ast.Call:
		return g.genCall(v)
	case *ast.Cast:
		return g.genCast(v)
	case *ast.Ternary:
		return g.genTernary(v)
	case *ast.Binary:
		return g.genBinary(v)
	case *ast.Assign:
		return g.genAssign(v)
	case *ast.Unary:
		return g.genUnary(v)
	case *ast.PreInc:
		return g.genIncDec(v.Operand, true, true)
	case *ast.PreDec:
		return g.genIncDec(v.Operand, false, true)
	case *ast.PostInc:
		return g.genIncDec(v.Operand, true, false)
	case *ast.PostDec:
		return g.genIncDec(v.Operand, false, false)
	}
	return internalErrorf("codegen: unhandled expression node kind %d", n.Kind())
}

// genBranchIfFalsy evaluates n and jumps to label if the result is zero
// (falsy), handling floating operands via ucomisd against zero rather than
// an integer test.
func (g *Generator) genBranchIfFalsy(n ast.Node, label string) error {
	if err := g.genExpr(n); err != nil {
		return err
	}
	if types.IsFloating(types.Decay(n.Type())) {
		g.asm("\tpxor %%xmm1, %%xmm1\n\tucomisd %%xmm1, %%xmm0\n\tje %s\n", label)
		return nil
	}
	g.asm("\ttest %%rax, %%rax\n\tje %s\n", label)
	return nil
}

// genBranchIfTruthy is genBranchIfFalsy's complement, used by do-while and
// the `||` operator.
func (g *Generator) genBranchIfTruthy(n ast.Node, label string) error {
	if err := g.genExpr(n); err != nil {
		return err
	}
	if types.IsFloating(types.Decay(n.Type())) {
		g.asm("\tpxor %%xmm1, %%xmm1\n\tucomisd %%xmm1, %%xmm0\n\tjne %s\n", label)
		return nil
	}
	g.asm("\ttest %%rax, %%rax\n\tjne %s\n", label)
	return nil
}

func (g *Generator) genBinary(b *ast.Binary) error {
	switch b.Op {
	case ast.BinOp(token.ANDAND):
		return g.genLogicalAnd(b)
	case ast.BinOp(token.OROR):
		return g.genLogicalOr(b)
	case ast.BinOp(','):
		if err := g.genExpr(b.Left); err != nil {
			return err
		}
		return g.genExpr(b.Right)
	case ast.BinOp('<'), ast.BinOp('>'), ast.BinOp(token.LEQUAL), ast.BinOp(token.GEQUAL),
		ast.BinOp(token.EQUAL), ast.BinOp(token.NEQUAL):
		return g.genComparison(b)
	}
	return g.genArith(b)
}

func (g *Generator) genLogicalAnd(b *ast.Binary) error {
	falseLbl, end := g.newLabel(), g.newLabel()
	if err := g.genBranchIfFalsy(b.Left, falseLbl); err != nil {
		return err
	}
	if err := g.genBranchIfFalsy(b.Right, falseLbl); err != nil {
		return err
	}
	g.asm("\tmov $1, %%rax\n\tjmp %s\n", end)
	g.asm("%s:\n\tmov $0, %%rax\n", falseLbl)
	g.asm("%s:\n", end)
	return nil
}

func (g *Generator) genLogicalOr(b *ast.Binary) error {
	trueLbl, end := g.newLabel(), g.newLabel()
	if err := g.genBranchIfTruthy(b.Left, trueLbl); err != nil {
		return err
	}
	if err := g.genBranchIfTruthy(b.Right, trueLbl); err != nil {
		return err
	}
	g.asm("\tmov $0, %%rax\n\tjmp %s\n", end)
	g.asm("%s:\n\tmov $1, %%rax\n", trueLbl)
	g.asm("%s:\n", end)
	return nil
}

// genArith lowers the remaining binary operators: integer/floating
// arithmetic, bitwise ops, shifts, and pointer +/- with the scale-by-
// pointee-size adjustment C requires.
func (g *Generator) genArith(b *ast.Binary) error {
	if types.IsFloating(b.Type()) {
		if err := g.genExpr(b.Left); err != nil {
			return err
		}
		g.pushXmm()
		if err := g.genExpr(b.Right); err != nil {
			return err
		}
		g.asm("\tmovsd %%xmm0, %%xmm1\n")
		g.popXmm()
		op, ok := floatOps[b.Op]
		if !ok {
			return internalErrorf("codegen: invalid floating binary operator %d", b.Op)
		}
		g.asm("\t%s %%xmm1, %%xmm0\n", op)
		return nil
	}

	lt, rt := types.Decay(b.Left.Type()), types.Decay(b.Right.Type())
	if (b.Op == ast.BinOp('+') || b.Op == ast.BinOp('-')) && (lt.Tag == types.POINTER || rt.Tag == types.POINTER) {
		return g.genPointerArith(b, lt, rt)
	}

	if err := g.genExpr(b.Left); err != nil {
		return err
	}
	g.pushInt()
	if err := g.genExpr(b.Right); err != nil {
		return err
	}
	g.asm("\tmov %%rax, %%rcx\n")
	g.popInt() // %rax = left, %rcx = right

	switch b.Op {
	case ast.BinOp('+'):
		g.asm("\tadd %%rcx, %%rax\n")
	case ast.BinOp('-'):
		g.asm("\tsub %%rcx, %%rax\n")
	case ast.BinOp('*'):
		g.asm("\timul %%rcx, %%rax\n")
	case ast.BinOp('/'):
		if b.Type().Signed {
			g.asm("\tcqto\n\tidiv %%rcx\n")
		} else {
			g.asm("\txor %%rdx, %%rdx\n\tdiv %%rcx\n")
		}
	case ast.BinOp('%'):
		if b.Type().Signed {
			g.asm("\tcqto\n\tidiv %%rcx\n\tmov %%rdx, %%rax\n")
		} else {
			g.asm("\txor %%rdx, %%rdx\n\tdiv %%rcx\n\tmov %%rdx, %%rax\n")
		}
	case ast.BinOp('&'):
		g.asm("\tand %%rcx, %%rax\n")
	case ast.BinOp('|'):
		g.asm("\tor %%rcx, %%rax\n")
	case ast.BinOp('^'):
		g.asm("\txor %%rcx, %%rax\n")
	case ast.BinOp(token.LSHIFT):
		g.asm("\tshl %%cl, %%rax\n")
	case ast.BinOp(token.RSHIFT):
		if b.Left.Type().Signed {
			g.asm("\tsar %%cl, %%rax\n")
		} else {
			g.asm("\tshr %%cl, %%rax\n")
		}
	default:
		return internalErrorf("codegen: invalid integer binary operator %d", b.Op)
	}
	return nil
}

var floatOps = map[ast.BinOp]string{
	ast.BinOp('+'): "addsd",
	ast.BinOp('-'): "subsd",
	ast.BinOp('*'): "mulsd",
	ast.BinOp('/'): "divsd",
}

func (g *Generator) genPointerArith(b *ast.Binary, lt, rt *types.Type) error {
	if err := g.genExpr(b.Left); err != nil {
		return err
	}
	g.pushInt()
	if err := g.genExpr(b.Right); err != nil {
		return err
	}
	g.asm("\tmov %%rax, %%rcx\n")
	g.popInt() // %rax = left, %rcx = right

	switch {
	case lt.Tag == types.POINTER && rt.Tag == types.POINTER:
		// ptr - ptr, scaled by element size.
		g.asm("\tsub %%rcx, %%rax\n")
		if size := lt.Pointee.Size; size > 1 {
			g.asm("\tcqto\n\tmov $%d, %%rcx\n\tidiv %%rcx\n", size)
		}
		return nil
	case lt.Tag == types.POINTER:
		if size := lt.Pointee.Size; size > 1 {
			g.asm("\timul $%d, %%rcx\n", size)
		}
		if b.Op == ast.BinOp('+') {
			g.asm("\tadd %%rcx, %%rax\n")
		} else {
			g.asm("\tsub %%rcx, %%rax\n")
		}
		return nil
	default: // int + ptr
		if size := rt.Pointee.Size; size > 1 {
			g.asm("\timul $%d, %%rax\n", size)
		}
		g.asm("\tadd %%rcx, %%rax\n")
		return nil
	}
}

func (g *Generator) genComparison(b *ast.Binary) error {
	lt, rt := types.Decay(b.Left.Type()), types.Decay(b.Right.Type())
	floating := types.IsFloating(lt) || types.IsFloating(rt)

	if floating {
		if err := g.genExpr(b.Left); err != nil {
			return err
		}
		g.pushXmm()
		if err := g.genExpr(b.Right); err != nil {
			return err
		}
		g.asm("\tmovsd %%xmm0, %%xmm1\n")
		g.popXmm()
		g.asm("\tucomisd %%xmm1, %%xmm0\n")
		set, ok := floatSetCC[b.Op]
		if !ok {
			return internalErrorf("codegen: invalid comparison operator %d", b.Op)
		}
		g.asm("\t%s %%al\n\tmovzbl %%al, %%eax\n", set)
		return nil
	}

	if err := g.genExpr(b.Left); err != nil {
		return err
	}
	g.pushInt()
	if err := g.genExpr(b.Right); err != nil {
		return err
	}
	g.asm("\tmov %%rax, %%rcx\n")
	g.popInt()
	g.asm("\tcmp %%rcx, %%rax\n")

	unsigned := lt.Tag == types.POINTER || rt.Tag == types.POINTER || !lt.Signed || !rt.Signed
	table := signedSetCC
	if unsigned {
		table = unsignedSetCC
	}
	set, ok := table[b.Op]
	if !ok {
		return internalErrorf("codegen: invalid comparison operator %d", b.Op)
	}
	g.asm("\t%s %%al\n\tmovzbl %%al, %%eax\n", set)
	return nil
}

var signedSetCC = map[ast.BinOp]string{
	ast.BinOp('<'):            "setl",
	ast.BinOp('>'):             "setg",
	ast.BinOp(token.LEQUAL):    "setle",
	ast.BinOp(token.GEQUAL):    "setge",
	ast.BinOp(token.EQUAL):     "sete",
	ast.BinOp(token.NEQUAL):    "setne",
}

var unsignedSetCC = map[ast.BinOp]string{
	ast.BinOp('<'):            "setb",
	ast.BinOp('>'):             "seta",
	ast.BinOp(token.LEQUAL):    "setbe",
	ast.BinOp(token.GEQUAL):    "setae",
	ast.BinOp(token.EQUAL):     "sete",
	ast.BinOp(token.NEQUAL):    "setne",
}

var floatSetCC = map[ast.BinOp]string{
	ast.BinOp('<'):            "setb",
	ast.BinOp('>'):             "seta",
	ast.BinOp(token.LEQUAL):    "setbe",
	ast.BinOp(token.GEQUAL):    "setae",
	ast.BinOp(token.EQUAL):     "sete",
	ast.BinOp(token.NEQUAL):    "setne",
}

func (g *Generator) genTernary(t *ast.Ternary) error {
	elseLbl, end := g.newLabel(), g.newLabel()
	if err := g.genBranchIfFalsy(t.Cond, elseLbl); err != nil {
		return err
	}
	if err := g.genExpr(t.Then); err != nil {
		return err
	}
	g.convert(types.Decay(t.Then.Type()), t.Type())
	g.asm("\tjmp %s\n", end)
	g.asm("%s:\n", elseLbl)
	if err := g.genExpr(t.Else); err != nil {
		return err
	}
	g.convert(types.Decay(t.Else.Type()), t.Type())
	g.asm("%s:\n", end)
	return nil
}

func (g *Generator) genCast(c *ast.Cast) error {
	if err := g.genExpr(c.Operand); err != nil {
		return err
	}
	g.convert(types.Decay(c.Operand.Type()), c.Type())
	return nil
}

// convert rewrites the value already in %rax/%xmm0 from from's
// representation to to's.
func (g *Generator) convert(from, to *types.Type) {
	if from == nil || to == nil || from.Tag == types.STRUCTURE || to.Tag == types.STRUCTURE {
		return
	}
	fromFloat, toFloat := types.IsFloating(from), types.IsFloating(to)
	switch {
	case !fromFloat && !toFloat:
		g.truncateExtend(to)
	case fromFloat && toFloat:
		if from.Size == 8 && to.Size == 4 {
			g.asm("\tcvtsd2ss %%xmm0, %%xmm0\n\tcvtss2sd %%xmm0, %%xmm0\n")
		}
	case !fromFloat && toFloat:
		g.asm("\tcvtsi2sd %%rax, %%xmm0\n")
		if to.Size == 4 {
			g.asm("\tcvtsd2ss %%xmm0, %%xmm0\n\tcvtss2sd %%xmm0, %%xmm0\n")
		}
	case fromFloat && !toFloat:
		g.asm("\tcvttsd2si %%xmm0, %%rax\n")
		g.truncateExtend(to)
	}
}

func (g *Generator) truncateExtend(to *types.Type) {
	switch to.Size {
	case 1:
		if to.Signed {
			g.asm("\tmovsbq %%al, %%rax\n")
		} else {
			g.asm("\tmovzbq %%al, %%rax\n")
		}
	case 2:
		if to.Signed {
			g.asm("\tmovswq %%ax, %%rax\n")
		} else {
			g.asm("\tmovzwq %%ax, %%rax\n")
		}
	case 4:
		if to.Signed {
			g.asm("\tmovslq %%eax, %%rax\n")
		} else {
			g.asm("\tmov %%eax, %%eax\n")
		}
	}
}

func (g *Generator) genUnary(u *ast.Unary) error {
	if err := g.genExpr(u.Operand); err != nil {
		return err
	}
	floating := types.IsFloating(u.Operand.Type())
	switch u.Op {
	case ast.UnaryPlus:
		return nil
	case ast.UnaryNeg:
		if floating {
			g.asm("\tpxor %%xmm1, %%xmm1\n\tsubsd %%xmm0, %%xmm1\n\tmovsd %%xmm1, %%xmm0\n")
		} else {
			g.asm("\tneg %%rax\n")
		}
		return nil
	case ast.UnaryBNot:
		g.asm("\tnot %%rax\n")
		return nil
	case ast.UnaryNot:
		if floating {
			g.asm("\tpxor %%xmm1, %%xmm1\n\tucomisd %%xmm1, %%xmm0\n\tsete %%al\n\tmovzbl %%al, %%eax\n")
		} else {
			g.asm("\ttest %%rax, %%rax\n\tsete %%al\n\tmovzbl %%al, %%eax\n")
		}
		return nil
	}
	return internalErrorf("codegen: invalid unary operator %d", u.Op)
}

// genIncDec lowers ++/--, pre or post, scaling the step by the pointee size
// for pointer operands.
func (g *Generator) genIncDec(operand ast.Node, increment, pre bool) error {
	floating := types.IsFloating(operand.Type())

	switch v := operand.(type) {
	case *ast.LocalVar:
		return g.incDecMem(fmt.Sprintf("%d(%%rbp)", v.Offset), operand.Type(), increment, pre, floating)
	case *ast.GlobalVar:
		return g.incDecMem(fmt.Sprintf("%s(%%rip)", v.Label), operand.Type(), increment, pre, floating)
	case *ast.Dereference, *ast.FieldRef:
		if err := g.genAddressOf(operand); err != nil {
			return err
		}
		g.asm("\tmov %%rax, %%r11\n")
		return g.incDecMem("(%r11)", operand.Type(), increment, pre, floating)
	}
	return internalErrorf("codegen: increment/decrement of non-lvalue node kind %d", operand.Kind())
}

func (g *Generator) incDecMem(mem string, t *types.Type, increment, pre, floating bool) error {
	g.load(mem, t)
	if !pre {
		if floating {
			g.pushXmm()
		} else {
			g.pushInt()
		}
	}
	g.applyDelta(t, increment, floating)
	g.store(mem, t)
	if !pre {
		if floating {
			g.popXmm()
		} else {
			g.popInt()
		}
	}
	return nil
}

func (g *Generator) applyDelta(t *types.Type, increment, floating bool) {
	if floating {
		g.asm("\tmov $1, %%rax\n\tcvtsi2sd %%rax, %%xmm1\n")
		if increment {
			g.asm("\taddsd %%xmm1, %%xmm0\n")
		} else {
			g.asm("\tsubsd %%xmm1, %%xmm0\n")
		}
		return
	}
	step := 1
	if t.Tag == types.POINTER {
		step = t.Pointee.Size
	}
	if increment {
		g.asm("\tadd $%d, %%rax\n", step)
	} else {
		g.asm("\tsub $%d, %%rax\n", step)
	}
}

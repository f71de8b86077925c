package codegen

import (
	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/types"
)

// genCall lowers a function call: arguments are classified
// integer-vs-floating by the callee's declared parameter types (falling
// back to the argument's own promoted type past the last declared
// parameter, for variadic calls), evaluated left-to-right onto the
// gen_stack, then popped into ABI registers in reverse order immediately
// before the call so no argument's evaluation can clobber another's
// register.
func (g *Generator) genCall(c *ast.Call) error {
	if len(c.Args) > len(intArgRegs) {
		return internalErrorf("codegen: call to '%s' has more arguments than the System V integer/floating register files support", c.Name)
	}

	floating := make([]bool, len(c.Args))
	floatCount, intCount := 0, 0
	for i, a := range c.Args {
		t := types.Decay(a.Type())
		if i < len(c.ParamTypes) {
			t = c.ParamTypes[i]
		}
		floating[i] = types.IsFloating(t)
		if floating[i] {
			floatCount++
		} else {
			intCount++
		}
	}
	if floatCount > len(fltArgRegs) {
		return internalErrorf("codegen: call to '%s' passes more floating arguments than available xmm registers", c.Name)
	}

	for i, a := range c.Args {
		if err := g.genExpr(a); err != nil {
			return err
		}
		if floating[i] {
			g.pushXmm()
		} else {
			g.pushInt()
		}
	}

	intPos, fltPos := intCount-1, floatCount-1
	for i := len(c.Args) - 1; i >= 0; i-- {
		if floating[i] {
			g.popXmmTo(fltArgRegs[fltPos])
			fltPos--
		} else {
			g.popIntTo(intArgRegs[intPos])
			intPos--
		}
	}

	if c.Variadic {
		g.asm("\tmov $%d, %%eax\n", floatCount)
	}

	padded := g.alignCall()
	g.asm("\tcall %s\n", c.Name)
	g.unalignCall(padded)
	return nil
}

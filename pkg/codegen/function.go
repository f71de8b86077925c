package codegen

import (
	"fmt"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/types"
)

// genFunction lowers one function definition: prologue (frame layout +
// parameter spill), body, epilogue.
func (g *Generator) genFunction(fn *ast.Function) error {
	g.stack = 0
	g.curFunc = fn.Name

	g.asm("\t.text\n")
	if !fn.IsStatic {
		g.asm("\t.global %s\n", fn.Name)
	}
	g.asm("%s:\n", fn.Name)
	g.asm("\tpush %%rbp\n")
	g.asm("\tmov %%rsp, %%rbp\n")

	offset := 0
	for _, p := range fn.Params {
		offset += roundUp8(p.Type().Size)
		p.Offset = -offset
	}
	for _, lv := range fn.Locals {
		offset += roundUp8(lv.Type().Size)
		lv.Offset = -offset
	}
	// Frame adjustment is exactly the sum of rounded param/local sizes. This
	// can leave %rsp short of a 16-byte boundary by 8 bytes whenever that sum
	// is itself not a multiple of 16. gen_stack counts only the pushes made
	// after this point, so alignCall's per-call parity check does not correct
	// for it; this is the same approximation the original LICE makes.
	if offset > 0 {
		g.asm("\tsub $%d, %%rsp\n", offset)
	}

	intIdx, fltIdx := 0, 0
	for _, p := range fn.Params {
		mem := fmt.Sprintf("%d(%%rbp)", p.Offset)
		if types.IsFloating(p.Type()) {
			g.storeFromReg(mem, p.Type(), fltArgRegs[fltIdx], true)
			fltIdx++
		} else {
			g.storeFromReg(mem, p.Type(), intArgRegs[intIdx], false)
			intIdx++
		}
	}

	if err := g.genStatement(fn.Body); err != nil {
		return err
	}

	g.asm("\tleave\n\tret\n")
	return nil
}

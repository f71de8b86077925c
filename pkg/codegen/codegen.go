// Package codegen lowers a parsed translation unit (pkg/ast) to AT&T-syntax
// x86-64 assembly for System V AMD64.
//
// Grounded on its-hmny-nand2tetris/pkg/asm/codegen.go's shape: a single
// generator struct holding the program plus a running output buffer, one
// exported Generate entry point, and a table of small per-construct
// functions dispatched by a type switch rather than a visitor hierarchy.
// Break/continue/switch label bookkeeping is adapted from
// pkg/utils/stack.go's generic Stack[T], used here in place of hand-rolled
// label slices.
package codegen

import (
	"fmt"
	"strings"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/compile"
	"github.com/dorktype/lice/pkg/types"
	"github.com/dorktype/lice/pkg/utils"
)

// intArgRegs and fltArgRegs are the System V AMD64 integer/floating argument
// registers, in ABI order.
var intArgRegs = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var fltArgRegs = [8]string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

// switchFrame records the label assigned to every case/default reachable
// from one switch statement's direct body, keyed by AST node identity.
type switchFrame struct {
	labels map[ast.Node]string
}

// Generator walks a translation unit's functions and globals, emitting
// assembly text. gen_stack is a single push/pop counter, reset at each
// function entry:
// tracking alignment per basic block would be more robust, but this
// simpler counter is what is implemented here, with its known imprecision.
type Generator struct {
	b strings.Builder

	stack        int // gen_stack: bytes pushed since the last known-aligned point
	labelCounter int
	curFunc      string

	breakLabels    utils.Stack[string]
	continueLabels utils.Stack[string]
	switches       utils.Stack[switchFrame]
}

// Generate lowers top (in declaration order) plus the string/float literal
// tables accumulated during parsing into a complete assembly listing.
func Generate(top []ast.Node, tables *ast.Tables) (string, error) {
	g := &Generator{}

	for _, n := range top {
		if fn, ok := n.(*ast.Function); ok {
			if err := g.genFunction(fn); err != nil {
				return "", err
			}
		}
	}

	if err := g.genGlobals(top); err != nil {
		return "", err
	}
	g.genStrings(tables.Strings)
	g.genFloats(tables.Floats)

	return g.b.String(), nil
}

func (g *Generator) asm(format string, args ...interface{}) {
	fmt.Fprintf(&g.b, format, args...)
}

// newLabel allocates a fresh internal control-flow label. Prefixed "c"
// (".Lc<n>") to stay disjoint from the ".L<n>" string/float labels pkg/parser
// hands out from the same translation unit's ast.Tables.NewLabel, since the
// two counters are independent.
func (g *Generator) newLabel() string {
	l := fmt.Sprintf(".Lc%d", g.labelCounter)
	g.labelCounter++
	return l
}

// userLabel mangles a source-level goto target into one unique per function,
// since C scopes labels per function but the emitted assembly is one flat
// namespace.
func (g *Generator) userLabel(name string) string {
	return fmt.Sprintf(".Luser_%s_%s", g.curFunc, name)
}

func roundUp8(n int) int { return (n + 7) &^ 7 }

// ---------------------------------------------------------------- gen_stack

func (g *Generator) pushInt() {
	g.asm("\tpush %%rax\n")
	g.stack += 8
}

func (g *Generator) popInt() {
	g.asm("\tpop %%rax\n")
	g.stack -= 8
}

func (g *Generator) popIntTo(reg string) {
	g.asm("\tpop %%%s\n", reg)
	g.stack -= 8
}

func (g *Generator) pushXmm() {
	g.asm("\tsub $8, %%rsp\n\tmovsd %%xmm0, (%%rsp)\n")
	g.stack += 8
}

func (g *Generator) popXmm() {
	g.asm("\tmovsd (%%rsp), %%xmm0\n\tadd $8, %%rsp\n")
	g.stack -= 8
}

func (g *Generator) popXmmTo(reg string) {
	g.asm("\tmovsd (%%rsp), %%%s\n\tadd $8, %%rsp\n", reg)
	g.stack -= 8
}

// alignCall pads the stack to a 16-byte boundary before a call when
// gen_stack says it is currently off; it returns whether padding was
// emitted so the matching call site can restore it.
func (g *Generator) alignCall() bool {
	if g.stack%16 != 0 {
		g.asm("\tsub $8, %%rsp\n")
		g.stack += 8
		return true
	}
	return false
}

func (g *Generator) unalignCall(padded bool) {
	if padded {
		g.asm("\tadd $8, %%rsp\n")
		g.stack -= 8
	}
}

// ------------------------------------------------------------- load/store

// load reads the value at mem into %rax (integer/pointer) or %xmm0
// (floating), applying the sign/zero-extension or single/double-precision
// conversion appropriate to t's size.
func (g *Generator) load(mem string, t *types.Type) {
	if types.IsFloating(t) {
		if t.Tag == types.FLOAT {
			g.asm("\tcvtss2sd %s, %%xmm0\n", mem)
		} else {
			g.asm("\tmovsd %s, %%xmm0\n", mem)
		}
		return
	}
	switch t.Size {
	case 1:
		if t.Signed {
			g.asm("\tmovsbq %s, %%rax\n", mem)
		} else {
			g.asm("\tmovzbq %s, %%rax\n", mem)
		}
	case 2:
		if t.Signed {
			g.asm("\tmovswq %s, %%rax\n", mem)
		} else {
			g.asm("\tmovzwq %s, %%rax\n", mem)
		}
	case 4:
		if t.Signed {
			g.asm("\tmovslq %s, %%rax\n", mem)
		} else {
			g.asm("\tmov %s, %%eax\n", mem)
		}
	default:
		g.asm("\tmov %s, %%rax\n", mem)
	}
}

// store writes %rax (integer/pointer) or %xmm0 (floating) to mem, sized to t.
func (g *Generator) store(mem string, t *types.Type) {
	if types.IsFloating(t) {
		if t.Tag == types.FLOAT {
			g.asm("\tcvtsd2ss %%xmm0, %%xmm0\n\tmovss %%xmm0, %s\n", mem)
		} else {
			g.asm("\tmovsd %%xmm0, %s\n", mem)
		}
		return
	}
	switch t.Size {
	case 1:
		g.asm("\tmov %%al, %s\n", mem)
	case 2:
		g.asm("\tmov %%ax, %s\n", mem)
	case 4:
		g.asm("\tmov %%eax, %s\n", mem)
	default:
		g.asm("\tmov %%rax, %s\n", mem)
	}
}

// storeFromReg spills an ABI argument register directly to mem without
// routing through %rax/%xmm0, used only for the prologue's parameter spill.
func (g *Generator) storeFromReg(mem string, t *types.Type, reg string, floating bool) {
	if floating {
		g.asm("\tmovsd %%%s, %s\n", reg, mem)
		return
	}
	g.asm("\tmov %%%s, %s\n", reg, mem)
}

func internalErrorf(format string, args ...interface{}) error {
	return compile.ICE(format, args...)
}

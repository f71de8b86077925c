package codegen

import (
	"fmt"

	"github.com/dorktype/lice/pkg/ast"
)

// genStatement lowers one statement node. Anything not recognised as a
// dedicated statement form is an expression evaluated for side effect only,
// matching how pkg/parser.statement hands back bare expressions untouched.
func (g *Generator) genStatement(n ast.Node) error {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ast.Compound:
		for _, s := range v.Statements {
			if err := g.genStatement(s); err != nil {
				return err
			}
		}
		return nil
	case *ast.If:
		return g.genIf(v)
	case *ast.While:
		return g.genWhile(v)
	case *ast.DoWhile:
		return g.genDoWhile(v)
	case *ast.For:
		return g.genFor(v)
	case *ast.Switch:
		return g.genSwitch(v)
	case *ast.Case:
		top, err := g.switches.Top()
		if err != nil {
			return internalErrorf("codegen: case label outside of a switch")
		}
		lbl, ok := top.labels[ast.Node(v)]
		if !ok {
			return internalErrorf("codegen: case label not registered by its enclosing switch")
		}
		g.asm("%s:\n", lbl)
		return nil
	case *ast.Default:
		top, err := g.switches.Top()
		if err != nil {
			return internalErrorf("codegen: default label outside of a switch")
		}
		lbl, ok := top.labels[ast.Node(v)]
		if !ok {
			return internalErrorf("codegen: default label not registered by its enclosing switch")
		}
		g.asm("%s:\n", lbl)
		return nil
	case *ast.Break:
		lbl, err := g.breakLabels.Top()
		if err != nil {
			return internalErrorf("codegen: break statement outside of a loop or switch")
		}
		g.asm("\tjmp %s\n", lbl)
		return nil
	case *ast.Continue:
		lbl, err := g.continueLabels.Top()
		if err != nil {
			return internalErrorf("codegen: continue statement outside of a loop")
		}
		g.asm("\tjmp %s\n", lbl)
		return nil
	case *ast.Return:
		if v.Value != nil {
			if err := g.genExpr(v.Value); err != nil {
				return err
			}
		}
		g.asm("\tleave\n\tret\n")
		return nil
	case *ast.Goto:
		g.asm("\tjmp %s\n", g.userLabel(v.Where))
		return nil
	case *ast.Label:
		g.asm("%s:\n", g.userLabel(v.Name))
		return nil
	case *ast.Declaration:
		return g.genLocalDeclaration(v)
	}
	// Bare expression statement: evaluate for effect, discard the result.
	return g.genExpr(n)
}

func (g *Generator) genLocalDeclaration(d *ast.Declaration) error {
	lv, ok := d.Var.(*ast.LocalVar)
	if !ok {
		return nil
	}
	for _, e := range d.Inits {
		if err := g.genExpr(e.Value); err != nil {
			return err
		}
		g.store(fmt.Sprintf("%d(%%rbp)", lv.Offset+e.Offset), e.Type)
	}
	return nil
}

func (g *Generator) genIf(v *ast.If) error {
	if v.Else == nil {
		end := g.newLabel()
		if err := g.genBranchIfFalsy(v.Cond, end); err != nil {
			return err
		}
		if err := g.genStatement(v.Then); err != nil {
			return err
		}
		g.asm("%s:\n", end)
		return nil
	}

	elseLbl, end := g.newLabel(), g.newLabel()
	if err := g.genBranchIfFalsy(v.Cond, elseLbl); err != nil {
		return err
	}
	if err := g.genStatement(v.Then); err != nil {
		return err
	}
	g.asm("\tjmp %s\n", end)
	g.asm("%s:\n", elseLbl)
	if err := g.genStatement(v.Else); err != nil {
		return err
	}
	g.asm("%s:\n", end)
	return nil
}

func (g *Generator) genWhile(v *ast.While) error {
	start, end := g.newLabel(), g.newLabel()
	g.continueLabels.Push(start)
	g.breakLabels.Push(end)
	defer g.continueLabels.Pop()
	defer g.breakLabels.Pop()

	g.asm("%s:\n", start)
	if err := g.genBranchIfFalsy(v.Cond, end); err != nil {
		return err
	}
	if err := g.genStatement(v.Body); err != nil {
		return err
	}
	g.asm("\tjmp %s\n", start)
	g.asm("%s:\n", end)
	return nil
}

func (g *Generator) genDoWhile(v *ast.DoWhile) error {
	start, step, end := g.newLabel(), g.newLabel(), g.newLabel()
	g.continueLabels.Push(step)
	g.breakLabels.Push(end)
	defer g.continueLabels.Pop()
	defer g.breakLabels.Pop()

	g.asm("%s:\n", start)
	if err := g.genStatement(v.Body); err != nil {
		return err
	}
	g.asm("%s:\n", step)
	if err := g.genBranchIfTruthy(v.Cond, start); err != nil {
		return err
	}
	g.asm("%s:\n", end)
	return nil
}

func (g *Generator) genFor(v *ast.For) error {
	start, step, end := g.newLabel(), g.newLabel(), g.newLabel()

	if v.Init != nil {
		if err := g.genStatement(v.Init); err != nil {
			return err
		}
	}

	g.continueLabels.Push(step)
	g.breakLabels.Push(end)
	defer g.continueLabels.Pop()
	defer g.breakLabels.Pop()

	g.asm("%s:\n", start)
	if v.Cond != nil {
		if err := g.genBranchIfFalsy(v.Cond, end); err != nil {
			return err
		}
	}
	if err := g.genStatement(v.Body); err != nil {
		return err
	}
	g.asm("%s:\n", step)
	if v.Step != nil {
		if err := g.genExpr(v.Step); err != nil {
			return err
		}
	}
	g.asm("\tjmp %s\n", start)
	g.asm("%s:\n", end)
	return nil
}

// collectCaseEntry is one case/default reachable from a switch's direct
// body (walking through nested blocks/if/loops but not into a nested
// switch, whose cases belong to it instead).
type collectCaseEntry struct {
	node      ast.Node
	isDefault bool
	value     int64
}

func collectCases(n ast.Node, out *[]collectCaseEntry) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ast.Compound:
		for _, s := range v.Statements {
			collectCases(s, out)
		}
	case *ast.If:
		collectCases(v.Then, out)
		collectCases(v.Else, out)
	case *ast.For:
		collectCases(v.Body, out)
	case *ast.While:
		collectCases(v.Body, out)
	case *ast.DoWhile:
		collectCases(v.Body, out)
	case *ast.Case:
		*out = append(*out, collectCaseEntry{node: v, value: v.Value})
	case *ast.Default:
		*out = append(*out, collectCaseEntry{node: v, isDefault: true})
	}
}

// genSwitch lowers a switch to a Duff's-device-style dispatch: the body is
// emitted once, inline, with a `jmp dispatch` ahead of it so it is reached
// only by jumping directly to a matching case/default label; the dispatch
// block (a linear cmp/je chain) follows the body.
func (g *Generator) genSwitch(v *ast.Switch) error {
	var entries []collectCaseEntry
	collectCases(v.Body, &entries)

	labels := make(map[ast.Node]string, len(entries))
	for _, e := range entries {
		labels[e.node] = g.newLabel()
	}
	dispatch, end := g.newLabel(), g.newLabel()

	g.switches.Push(switchFrame{labels: labels})
	g.breakLabels.Push(end)
	defer g.switches.Pop()
	defer g.breakLabels.Pop()

	if err := g.genExpr(v.Expr); err != nil {
		return err
	}
	g.asm("\tjmp %s\n", dispatch)
	if err := g.genStatement(v.Body); err != nil {
		return err
	}
	g.asm("\tjmp %s\n", end)

	g.asm("%s:\n", dispatch)
	var defaultLbl string
	for _, e := range entries {
		if e.isDefault {
			defaultLbl = labels[e.node]
			continue
		}
		g.asm("\tcmp $%d, %%eax\n\tje %s\n", e.value, labels[e.node])
	}
	if defaultLbl != "" {
		g.asm("\tjmp %s\n", defaultLbl)
	} else {
		g.asm("\tjmp %s\n", end)
	}
	g.asm("%s:\n", end)
	return nil
}

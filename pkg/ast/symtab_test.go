package ast_test

import (
	"testing"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/types"
)

func TestScopeShadowing(t *testing.T) {
	outer := ast.NewScope[*types.Type](nil)
	outer.Declare("x", types.SInt)

	inner := ast.NewScope[*types.Type](outer)
	inner.Declare("x", types.Double)

	if v, ok := inner.Lookup("x"); !ok || v != types.Double {
		t.Errorf("inner.Lookup(x) = %v, %v, want Double, true", v, ok)
	}
	if v, ok := outer.Lookup("x"); !ok || v != types.SInt {
		t.Errorf("outer.Lookup(x) = %v, %v, want SInt, true (shadowing must not affect the parent)", v, ok)
	}
}

func TestScopeLookupLocalDoesNotChaseParent(t *testing.T) {
	outer := ast.NewScope[*types.Type](nil)
	outer.Declare("x", types.SInt)
	inner := ast.NewScope[*types.Type](outer)

	if _, ok := inner.LookupLocal("x"); ok {
		t.Error("LookupLocal must not find a parent-scope declaration")
	}
	if _, ok := inner.Lookup("x"); !ok {
		t.Error("Lookup must find a parent-scope declaration")
	}
}

func TestTablesPushPopLocalScope(t *testing.T) {
	tabs := ast.NewTables()
	tabs.Globals.Declare("g", ast.NewGlobalVar(types.SInt, "g", "g"))

	tabs.PushLocalScope()
	local := ast.NewLocalVar(types.SInt, "x")
	tabs.Locals.Declare("x", local)

	tabs.PushLocalScope() // nested compound statement
	tabs.Locals.Declare("y", ast.NewLocalVar(types.SInt, "y"))

	if _, ok := tabs.LookupVariable("x"); !ok {
		t.Error("a variable from an enclosing local scope must still resolve")
	}
	if _, ok := tabs.LookupVariable("g"); !ok {
		t.Error("a global must resolve when no local shadows it")
	}

	tabs.PopLocalScope()
	if _, ok := tabs.Locals.LookupLocal("y"); ok {
		t.Error("y should not survive PopLocalScope")
	}
	if v, ok := tabs.LookupVariable("x"); !ok || v != local {
		t.Error("x should still resolve after popping only the inner compound scope")
	}

	tabs.PopLocalScope()
	if tabs.Locals != nil {
		t.Error("popping the function's own scope should leave Locals nil")
	}
}

func TestLocalShadowsGlobal(t *testing.T) {
	tabs := ast.NewTables()
	g := ast.NewGlobalVar(types.SInt, "v", "v")
	tabs.Globals.Declare("v", g)

	tabs.PushLocalScope()
	l := ast.NewLocalVar(types.SInt, "v")
	tabs.Locals.Declare("v", l)

	got, ok := tabs.LookupVariable("v")
	if !ok || got != ast.Node(l) {
		t.Error("LookupVariable must prefer a local declaration over a same-named global")
	}
}

func TestNewLabelIsUniqueAndSequential(t *testing.T) {
	tabs := ast.NewTables()
	first := tabs.NewLabel()
	second := tabs.NewLabel()
	if first == second {
		t.Errorf("NewLabel returned the same label twice: %q", first)
	}
	if first != ".L0" || second != ".L1" {
		t.Errorf("NewLabel() sequence = %q, %q, want .L0, .L1", first, second)
	}
}

func TestResetFunctionClearsLabelsAndGotos(t *testing.T) {
	tabs := ast.NewTables()
	tabs.Labels["loop"] = ".Luser_f_loop"
	tabs.Gotos = append(tabs.Gotos, ast.NewGoto("loop"))

	tabs.ResetFunction()

	if len(tabs.Labels) != 0 {
		t.Errorf("Labels = %v, want empty after ResetFunction", tabs.Labels)
	}
	if tabs.Gotos != nil {
		t.Errorf("Gotos = %v, want nil after ResetFunction", tabs.Gotos)
	}
	if tabs.Locals == nil {
		t.Error("ResetFunction should push a fresh local scope")
	}
}

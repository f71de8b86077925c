package parser_test

import (
	"strings"
	"testing"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/parser"
	"github.com/dorktype/lice/pkg/types"
)

func parse(t *testing.T, src string) []ast.Node {
	t.Helper()
	p := parser.New(strings.NewReader(src))
	top, err := p.ParseRun()
	if err != nil {
		t.Fatalf("ParseRun(%q) error = %v", src, err)
	}
	return top
}

func TestParseFunctionDefinition(t *testing.T) {
	top := parse(t, `int add(int a, int b) { return a + b; }`)
	if len(top) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(top))
	}
	fn, ok := top[0].(*ast.Function)
	if !ok {
		t.Fatalf("top[0] = %T, want *ast.Function", top[0])
	}
	if fn.Name != "add" {
		t.Errorf("Name = %q, want %q", fn.Name, "add")
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("Params = %+v, want [a b]", fn.Params)
	}
	body, ok := fn.Body.(*ast.Compound)
	if !ok || len(body.Statements) != 1 {
		t.Fatalf("Body = %+v, want a single-statement compound", fn.Body)
	}
	if _, ok := body.Statements[0].(*ast.Return); !ok {
		t.Errorf("Body.Statements[0] = %T, want *ast.Return", body.Statements[0])
	}
}

func TestParseGlobalDeclarationWithInitializer(t *testing.T) {
	top := parse(t, `int counter = 42;`)
	if len(top) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(top))
	}
	decl, ok := top[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("top[0] = %T, want *ast.Declaration", top[0])
	}
	gv, ok := decl.Var.(*ast.GlobalVar)
	if !ok || gv.Name != "counter" {
		t.Fatalf("decl.Var = %+v, want GlobalVar named counter", decl.Var)
	}
	if len(decl.Inits) != 1 {
		t.Fatalf("got %d initializer elements, want 1", len(decl.Inits))
	}
	lit, ok := decl.Inits[0].Value.(*ast.Literal)
	if !ok || lit.Value != 42 {
		t.Errorf("initializer = %+v, want literal 42", decl.Inits[0].Value)
	}
}

func TestParseStaticGlobalSetsIsStatic(t *testing.T) {
	top := parse(t, `static int hidden;`)
	decl := top[0].(*ast.Declaration)
	gv := decl.Var.(*ast.GlobalVar)
	if !gv.IsStatic {
		t.Error("a `static` global must set GlobalVar.IsStatic")
	}
}

func TestParseIfElse(t *testing.T) {
	top := parse(t, `
int classify(int x) {
	if (x < 0) {
		return -1;
	} else {
		return 1;
	}
}
`)
	fn := top[0].(*ast.Function)
	body := fn.Body.(*ast.Compound)
	ifStmt, ok := body.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("statement = %T, want *ast.If", body.Statements[0])
	}
	if ifStmt.Else == nil {
		t.Error("the else branch should be present")
	}
}

func TestParseForLoopWithBreakAndContinue(t *testing.T) {
	top := parse(t, `
int sum(int n) {
	int total = 0;
	for (int i = 0; i < n; i = i + 1) {
		if (i == 5) continue;
		if (i == 10) break;
		total = total + i;
	}
	return total;
}
`)
	fn := top[0].(*ast.Function)
	body := fn.Body.(*ast.Compound)
	var forLoop *ast.For
	for _, s := range body.Statements {
		if f, ok := s.(*ast.For); ok {
			forLoop = f
		}
	}
	if forLoop == nil {
		t.Fatal("expected a for loop among the function's statements")
	}
	if forLoop.Init == nil || forLoop.Cond == nil || forLoop.Step == nil {
		t.Error("a fully-specified for loop must carry Init, Cond and Step")
	}
}

func TestParseSwitchWithFallthroughCases(t *testing.T) {
	top := parse(t, `
int f(int x) {
	switch (x) {
	case 1:
	case 2:
		return 10;
	default:
		return 0;
	}
}
`)
	fn := top[0].(*ast.Function)
	body := fn.Body.(*ast.Compound)
	sw, ok := body.Statements[0].(*ast.Switch)
	if !ok {
		t.Fatalf("statement = %T, want *ast.Switch", body.Statements[0])
	}
	if sw.Expr == nil || sw.Body == nil {
		t.Error("a switch must carry both a controlling expression and a body")
	}
}

func TestParseStructFieldAccess(t *testing.T) {
	top := parse(t, `
struct point { int x; int y; };
int getX(struct point p) {
	return p.x;
}
`)
	if len(top) != 1 {
		t.Fatalf("got %d top-level nodes, want 1 (the bare struct decl yields no node)", len(top))
	}
	fn, ok := top[0].(*ast.Function)
	if !ok {
		t.Fatalf("top[0] = %T, want *ast.Function", top[0])
	}
	body := fn.Body.(*ast.Compound)
	ret := body.Statements[0].(*ast.Return)
	field, ok := ret.Value.(*ast.FieldRef)
	if !ok {
		t.Fatalf("return value = %T, want *ast.FieldRef", ret.Value)
	}
	if field.Name != "x" {
		t.Errorf("FieldRef.Name = %q, want %q", field.Name, "x")
	}
}

func TestParsePointerDeclarationAndDereference(t *testing.T) {
	top := parse(t, `
int deref(int *p) {
	return *p;
}
`)
	fn := top[0].(*ast.Function)
	if fn.Params[0].Type().Tag != types.POINTER {
		t.Fatalf("param type = %s, want pointer", fn.Params[0].Type().Tag)
	}
	body := fn.Body.(*ast.Compound)
	ret := body.Statements[0].(*ast.Return)
	if _, ok := ret.Value.(*ast.Dereference); !ok {
		t.Errorf("return value = %T, want *ast.Dereference", ret.Value)
	}
}

func TestParseEnumConstantsFoldToLiterals(t *testing.T) {
	top := parse(t, `
enum { RED, GREEN, BLUE = 10 };
int f() {
	return BLUE;
}
`)
	fn := top[0].(*ast.Function)
	body := fn.Body.(*ast.Compound)
	ret := body.Statements[0].(*ast.Return)
	lit, ok := ret.Value.(*ast.Literal)
	if !ok {
		t.Fatalf("BLUE did not fold to a literal: got %T", ret.Value)
	}
	if lit.Value != 10 {
		t.Errorf("BLUE = %d, want 10", lit.Value)
	}
}

func TestParseTypedefIsVisibleAsATypeName(t *testing.T) {
	top := parse(t, `
typedef int myint;
myint f() {
	myint x = 5;
	return x;
}
`)
	fn, ok := top[0].(*ast.Function)
	if !ok {
		t.Fatalf("top[0] = %T, want *ast.Function", top[0])
	}
	if fn.Type().Return.Tag != types.INT {
		t.Errorf("return type tag = %s, want int", fn.Type().Return.Tag)
	}
}

func TestMixedIntFloatArithmeticInsertsCast(t *testing.T) {
	top := parse(t, `
double f() {
	double x = 2.0;
	int n = 3;
	return x + n;
}`)
	fn := top[0].(*ast.Function)
	body := fn.Body.(*ast.Compound)
	ret := body.Statements[len(body.Statements)-1].(*ast.Return)
	bin, ok := ret.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("return value = %T, want *ast.Binary", ret.Value)
	}
	if _, ok := bin.Right.(*ast.Cast); !ok {
		t.Fatalf("right operand = %T, want *ast.Cast promoting n to double", bin.Right)
	}
}

func TestPointerComparedAgainstZeroIsNotAnError(t *testing.T) {
	top := parse(t, `
int f(int *p) {
	return p == 0;
}`)
	fn := top[0].(*ast.Function)
	body := fn.Body.(*ast.Compound)
	ret := body.Statements[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("return value = %T, want *ast.Binary", ret.Value)
	}
	if _, ok := bin.Right.(*ast.Cast); !ok {
		t.Fatalf("right operand = %T, want *ast.Cast promoting the null constant to pointer type", bin.Right)
	}
}

func TestParseUndeclaredIdentifierIsAnError(t *testing.T) {
	p := parser.New(strings.NewReader(`int f() { return undeclared_name; }`))
	if _, err := p.ParseRun(); err == nil {
		t.Error("referencing an undeclared identifier should fail to parse")
	}
}

func TestDumpASTIsDeterministic(t *testing.T) {
	top := parse(t, `int f(int x) { return x + 1; }`)
	first := parser.DumpAST(top)
	second := parser.DumpAST(top)
	if first != second {
		t.Error("DumpAST must be deterministic across repeated calls on the same tree")
	}
	if !strings.Contains(first, "(function f") {
		t.Errorf("DumpAST output = %q, want it to mention the function name", first)
	}
}

package codegen_test

import (
	"strings"
	"testing"

	"github.com/dorktype/lice/pkg/codegen"
	"github.com/dorktype/lice/pkg/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(strings.NewReader(src))
	top, err := p.ParseRun()
	if err != nil {
		t.Fatalf("ParseRun(%q) error = %v", src, err)
	}
	out, err := codegen.Generate(top, p.Tables())
	if err != nil {
		t.Fatalf("Generate(%q) error = %v", src, err)
	}
	return out
}

func TestFunctionPrologueAndEpilogue(t *testing.T) {
	out := generate(t, `int answer() { return 42; }`)
	for _, want := range []string{
		".global answer",
		"answer:",
		"push %rbp",
		"mov %rsp, %rbp",
		"leave",
		"ret",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestStaticFunctionHasNoGlobalDirective(t *testing.T) {
	out := generate(t, `static int hidden() { return 1; }`)
	if strings.Contains(out, ".global hidden") {
		t.Error("a static function must not get a .global directive")
	}
}

func TestArithmeticEmitsExpectedInstructions(t *testing.T) {
	out := generate(t, `int add(int a, int b) { return a + b; }`)
	if !strings.Contains(out, "add %rcx, %rax") {
		t.Errorf("expected an add instruction in output:\n%s", out)
	}
}

func TestParameterSpillUsesABIRegisters(t *testing.T) {
	out := generate(t, `int add(int a, int b) { return a + b; }`)
	if !strings.Contains(out, "%rdi") || !strings.Contains(out, "%rsi") {
		t.Errorf("expected the first two integer parameters spilled from rdi/rsi:\n%s", out)
	}
}

func TestFloatingParameterUsesXmmRegister(t *testing.T) {
	out := generate(t, `double halve(double x) { return x; }`)
	if !strings.Contains(out, "%xmm0") {
		t.Errorf("expected a floating parameter spilled from xmm0:\n%s", out)
	}
}

func TestMixedIntFloatArithmeticConvertsIntOperand(t *testing.T) {
	out := generate(t, `
double f() {
	double x = 2.0;
	int n = 3;
	return x + n;
}`)
	if !strings.Contains(out, "cvtsi2sd") {
		t.Errorf("expected the int operand to be converted to double before addsd:\n%s", out)
	}
	if !strings.Contains(out, "addsd") {
		t.Errorf("expected a floating add:\n%s", out)
	}
}

func TestMixedIntFloatComparisonConvertsIntOperand(t *testing.T) {
	out := generate(t, `
int f() {
	double x = 1.5;
	int n = 2;
	return n < x;
}`)
	if !strings.Contains(out, "cvtsi2sd") {
		t.Errorf("expected the int operand to be converted to double before ucomisd:\n%s", out)
	}
	if !strings.Contains(out, "ucomisd") {
		t.Errorf("expected a floating comparison:\n%s", out)
	}
}

func TestIfElseEmitsBranchAndLabels(t *testing.T) {
	out := generate(t, `
int classify(int x) {
	if (x < 0) {
		return -1;
	} else {
		return 1;
	}
}`)
	if !strings.Contains(out, ".Lc") {
		t.Errorf("expected at least one internal control-flow label:\n%s", out)
	}
	if !strings.Contains(out, "jmp") {
		t.Errorf("expected a jmp around the else branch:\n%s", out)
	}
}

func TestSwitchEmitsDispatchChain(t *testing.T) {
	out := generate(t, `
int f(int x) {
	switch (x) {
	case 1: return 10;
	case 2: return 20;
	default: return 0;
	}
}`)
	if !strings.Contains(out, "cmp $1, %eax") || !strings.Contains(out, "cmp $2, %eax") {
		t.Errorf("expected a cmp/je dispatch chain for each case:\n%s", out)
	}
}

func TestLoopEmitsBackwardJump(t *testing.T) {
	out := generate(t, `
int sum(int n) {
	int total = 0;
	int i = 0;
	while (i < n) {
		total = total + i;
		i = i + 1;
	}
	return total;
}`)
	if strings.Count(out, "jmp") == 0 {
		t.Errorf("expected a backward jmp closing the while loop:\n%s", out)
	}
}

func TestFunctionCallPushesAndPopsArguments(t *testing.T) {
	out := generate(t, `
int add(int a, int b) { return a + b; }
int main() { return add(1, 2); }`)
	if !strings.Contains(out, "call add") {
		t.Errorf("expected a call to add:\n%s", out)
	}
	if !strings.Contains(out, "pop %rdi") || !strings.Contains(out, "pop %rsi") {
		t.Errorf("expected the pushed arguments popped into rdi/rsi:\n%s", out)
	}
}

func TestGlobalDataSection(t *testing.T) {
	out := generate(t, `int counter = 7;`)
	if !strings.Contains(out, ".data") || !strings.Contains(out, "counter:") {
		t.Errorf("expected a .data section with a counter label:\n%s", out)
	}
	if !strings.Contains(out, "7") {
		t.Errorf("expected the initializer value 7 to appear:\n%s", out)
	}
}

func TestUninitializedGlobalUsesLcomm(t *testing.T) {
	out := generate(t, `int uninitialized;`)
	if !strings.Contains(out, ".lcomm uninitialized") {
		t.Errorf("expected .lcomm for an uninitialized global:\n%s", out)
	}
}

func TestStringLiteralEmitsStringDirective(t *testing.T) {
	out := generate(t, `
int f() {
	char *s = "hi";
	return 0;
}`)
	if !strings.Contains(out, `.string "hi"`) {
		t.Errorf("expected a .string directive for the literal:\n%s", out)
	}
}

func TestComparisonIsUnsignedWhenEitherOperandIsUnsigned(t *testing.T) {
	out := generate(t, `int f(int a, unsigned int b) { return a < b; }`)
	if !strings.Contains(out, "setb") {
		t.Errorf("expected the unsigned setb, not the signed setl, since b is unsigned:\n%s", out)
	}
	if strings.Contains(out, "setl") {
		t.Errorf("signed setl should not appear when either operand is unsigned:\n%s", out)
	}
}

func TestStringLiteralHighByteEscapesToOctal(t *testing.T) {
	out := generate(t, `
int f() {
	char *s = "\xFF\377";
	return 0;
}`)
	if !strings.Contains(out, `\377\377`) {
		t.Errorf("expected both high-byte escapes to render as octal \\377:\n%s", out)
	}
	if strings.Contains(out, "\xc3\xbf") {
		t.Errorf("string directive must not contain a UTF-8 reencoding of the byte:\n%s", out)
	}
}

func TestStructAssignmentUsesRepMovsb(t *testing.T) {
	out := generate(t, `
struct point { int x; int y; };
int f() {
	struct point a;
	struct point b;
	a = b;
	return 0;
}`)
	if !strings.Contains(out, "rep movsb") {
		t.Errorf("expected a rep movsb struct copy:\n%s", out)
	}
}

package codegen

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dorktype/lice/pkg/ast"
	"github.com/dorktype/lice/pkg/compile"
	"github.com/dorktype/lice/pkg/types"
)

// genGlobals emits every top-level global variable's storage. Prototype-only declarations carry no
// storage and are skipped.
func (g *Generator) genGlobals(top []ast.Node) error {
	for _, n := range top {
		d, ok := n.(*ast.Declaration)
		if !ok {
			continue
		}
		gv, ok := d.Var.(*ast.GlobalVar)
		if !ok {
			continue
		}
		if gv.Type().Tag == types.FUNCTION {
			continue
		}
		if len(d.Inits) == 0 {
			g.asm("\t.lcomm %s, %d\n", gv.Label, gv.Type().Size)
			continue
		}
		g.asm("\t.data\n")
		if !gv.IsStatic {
			g.asm("\t.global %s\n", gv.Label)
		}
		g.asm("%s:\n", gv.Label)
		if err := g.genInitData(d.Inits, gv.Type().Size); err != nil {
			return err
		}
	}
	return nil
}

// genInitData emits total bytes of initialised data, each flattened
// InitElem placed at its Offset and zero-filled gaps between them
// (initializers.go has already flattened nested aggregates down to scalar
// leaves, so no recursion into nested structure is needed here).
func (g *Generator) genInitData(inits []ast.InitElem, total int) error {
	sorted := append([]ast.InitElem(nil), inits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	cursor := 0
	for _, e := range sorted {
		if e.Offset > cursor {
			g.asm("\t.zero %d\n", e.Offset-cursor)
		}
		if err := g.emitInitValue(e); err != nil {
			return err
		}
		cursor = e.Offset + e.Type.Size
	}
	if cursor < total {
		g.asm("\t.zero %d\n", total-cursor)
	}
	return nil
}

func sizeDirective(size int) (string, bool) {
	switch size {
	case 1:
		return ".byte", true
	case 2:
		return ".word", true
	case 4:
		return ".long", true
	case 8:
		return ".quad", true
	}
	return "", false
}

func (g *Generator) emitInitValue(e ast.InitElem) error {
	if types.IsFloating(e.Type) {
		v, err := foldFloat(e.Value)
		if err != nil {
			return err
		}
		if e.Type.Size == 4 {
			g.asm("\t.long %d\n", uint64(math.Float32bits(float32(v))))
		} else {
			g.asm("\t.quad %d\n", uint64(math.Float64bits(v)))
		}
		return nil
	}
	if e.Type.Tag == types.POINTER {
		sym, disp, err := symbolRef(e.Value)
		if err != nil {
			return err
		}
		if disp == 0 {
			g.asm("\t.quad %s\n", sym)
		} else {
			g.asm("\t.quad %s+%d\n", sym, disp)
		}
		return nil
	}
	directive, ok := sizeDirective(e.Type.Size)
	if !ok {
		return compile.Errorf("codegen", "unsupported initializer size %d", e.Type.Size)
	}
	v, err := foldInt(e.Value)
	if err != nil {
		return err
	}
	g.asm("\t%s %d\n", directive, v)
	return nil
}

// genStrings emits every string literal collected while parsing, one
// `.string` directive per label.
func (g *Generator) genStrings(strs []*ast.Str) {
	if len(strs) == 0 {
		return
	}
	g.asm("\t.data\n")
	for _, s := range strs {
		g.asm("%s:\n\t.string %s\n", s.Label, gasQuote(s.Value))
	}
}

// gasQuote renders s as a GAS string literal, byte for byte: s.Value holds
// the raw decoded bytes of the source string (not necessarily valid UTF-8),
// so this walks it by index rather than ranging over runes. Printable ASCII
// passes through; '"', '\\', '\n', '\t' and '\r' get their usual escapes; everything else
// (control characters and bytes >= 0x80) is emitted as a 3-digit octal
// escape, which GAS accepts unambiguously regardless of what follows.
func gasQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c >= 0x20 && c < 0x7f:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\%03o`, c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// genFloats emits every floating-point literal collected while parsing as
// two .long directives carrying its IEEE-754 double bit pattern.
func (g *Generator) genFloats(floats []*ast.FloatLiteral) {
	if len(floats) == 0 {
		return
	}
	g.asm("\t.data\n")
	for _, f := range floats {
		bits := math.Float64bits(f.Value)
		lo := uint32(bits)
		hi := uint32(bits >> 32)
		g.asm("\t.align 8\n%s:\n\t.long %d\n\t.long %d\n", f.Label, lo, hi)
	}
}

// symbolRef resolves a global-scope pointer initializer to the symbol (and
// constant byte displacement) it denotes: &global, &global.field, or a
// bare string/array decaying to its address. This is a deliberately small
// constant-address evaluator, not a general constant-folder.
func symbolRef(n ast.Node) (string, int, error) {
	switch v := n.(type) {
	case *ast.Cast:
		return symbolRef(v.Operand)
	case *ast.Address:
		return addressOfSymbol(v.Operand)
	case *ast.GlobalVar:
		if v.Type().Tag == types.ARRAY {
			return v.Label, 0, nil
		}
		return "", 0, compile.Errorf("codegen", "initializer referencing '%s' is not a compile-time constant", v.Name)
	case *ast.Str:
		return v.Label, 0, nil
	}
	return "", 0, compile.Errorf("codegen", "unsupported constant pointer initializer")
}

func addressOfSymbol(n ast.Node) (string, int, error) {
	switch v := n.(type) {
	case *ast.GlobalVar:
		return v.Label, 0, nil
	case *ast.FieldRef:
		base, disp, err := addressOfSymbol(v.Target)
		if err != nil {
			return "", 0, err
		}
		return base, disp + v.Field.Offset, nil
	}
	return "", 0, compile.Errorf("codegen", "unsupported address-of target in constant initializer")
}

// foldInt evaluates a compile-time-constant integer initializer expression.
// Global initializers must be constant in C; this covers the literal,
// cast, unary, and binary forms the parser's own initializer handling can
// produce.
func foldInt(n ast.Node) (int64, error) {
	switch v := n.(type) {
	case *ast.Literal:
		return v.Value, nil
	case *ast.Cast:
		iv, err := foldInt(v.Operand)
		if err != nil {
			return 0, err
		}
		return maskToType(iv, v.Type()), nil
	case *ast.Unary:
		operand, err := foldInt(v.Operand)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case ast.UnaryNeg:
			return -operand, nil
		case ast.UnaryBNot:
			return ^operand, nil
		case ast.UnaryNot:
			if operand == 0 {
				return 1, nil
			}
			return 0, nil
		case ast.UnaryPlus:
			return operand, nil
		}
	case *ast.Binary:
		l, err := foldInt(v.Left)
		if err != nil {
			return 0, err
		}
		r, err := foldInt(v.Right)
		if err != nil {
			return 0, err
		}
		return foldIntBinary(v.Op, l, r)
	}
	return 0, compile.Errorf("codegen", "initializer is not a compile-time constant")
}

func foldIntBinary(op ast.BinOp, l, r int64) (int64, error) {
	switch op {
	case ast.BinOp('+'):
		return l + r, nil
	case ast.BinOp('-'):
		return l - r, nil
	case ast.BinOp('*'):
		return l * r, nil
	case ast.BinOp('/'):
		if r == 0 {
			return 0, compile.Errorf("codegen", "division by zero in constant initializer")
		}
		return l / r, nil
	case ast.BinOp('%'):
		if r == 0 {
			return 0, compile.Errorf("codegen", "division by zero in constant initializer")
		}
		return l % r, nil
	case ast.BinOp('&'):
		return l & r, nil
	case ast.BinOp('|'):
		return l | r, nil
	case ast.BinOp('^'):
		return l ^ r, nil
	}
	return 0, compile.Errorf("codegen", "unsupported operator in constant initializer")
}

func maskToType(v int64, t *types.Type) int64 {
	bits := uint(t.Size * 8)
	if bits == 0 || bits >= 64 {
		return v
	}
	mask := int64(1)<<bits - 1
	v &= mask
	if t.Signed && v&(int64(1)<<(bits-1)) != 0 {
		v -= int64(1) << bits
	}
	return v
}

// foldFloat evaluates a compile-time-constant floating initializer.
func foldFloat(n ast.Node) (float64, error) {
	switch v := n.(type) {
	case *ast.FloatLiteral:
		return v.Value, nil
	case *ast.Literal:
		return float64(v.Value), nil
	case *ast.Cast:
		return foldFloat(v.Operand)
	case *ast.Unary:
		f, err := foldFloat(v.Operand)
		if err != nil {
			return 0, err
		}
		if v.Op == ast.UnaryNeg {
			return -f, nil
		}
		return f, nil
	}
	return 0, compile.Errorf("codegen", "floating initializer is not a compile-time constant")
}

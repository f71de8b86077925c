package parser

import (
	"fmt"
	"strings"

	"github.com/dorktype/lice/pkg/ast"
)

// DumpAST renders a parsed translation unit as parenthesised s-expressions
// for `--dump-ast`. Traversal is purely structural (no map iteration), so
// repeated runs on the same input produce byte-identical output.
func DumpAST(top []ast.Node) string {
	var b strings.Builder
	for _, n := range top {
		writeNode(&b, n)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeNode(b *strings.Builder, n ast.Node) {
	if n == nil {
		b.WriteString("(nil)")
		return
	}
	switch v := n.(type) {
	case *ast.Literal:
		fmt.Fprintf(b, "(literal %s %d)", v.Type().Tag, v.Value)
	case *ast.FloatLiteral:
		fmt.Fprintf(b, "(float %s %g)", v.Type().Tag, v.Value)
	case *ast.Str:
		fmt.Fprintf(b, "(string %q)", v.Value)
	case *ast.LocalVar:
		fmt.Fprintf(b, "(local %s)", v.Name)
	case *ast.GlobalVar:
		fmt.Fprintf(b, "(global %s)", v.Name)
	case *ast.Call:
		b.WriteString("(call ")
		b.WriteString(v.Name)
		for _, a := range v.Args {
			b.WriteByte(' ')
			writeNode(b, a)
		}
		b.WriteByte(')')
	case *ast.Function:
		fmt.Fprintf(b, "(function %s (", v.Name)
		for i, p := range v.Params {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(p.Name)
		}
		b.WriteString(") ")
		writeNode(b, v.Body)
		b.WriteByte(')')
	case *ast.Declaration:
		b.WriteString("(decl ")
		writeNode(b, v.Var)
		for _, init := range v.Inits {
			fmt.Fprintf(b, " (init %d ", init.Offset)
			writeNode(b, init.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case *ast.Address:
		b.WriteString("(addr ")
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.Dereference:
		b.WriteString("(deref ")
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.FieldRef:
		b.WriteString("(field ")
		writeNode(b, v.Target)
		fmt.Fprintf(b, " %s)", v.Name)
	case *ast.Ternary:
		b.WriteString("(?: ")
		writeNode(b, v.Cond)
		b.WriteByte(' ')
		writeNode(b, v.Then)
		b.WriteByte(' ')
		writeNode(b, v.Else)
		b.WriteByte(')')
	case *ast.Cast:
		fmt.Fprintf(b, "(cast %s ", v.Type().Tag)
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.Binary:
		fmt.Fprintf(b, "(binop %d ", int(v.Op))
		writeNode(b, v.Left)
		b.WriteByte(' ')
		writeNode(b, v.Right)
		b.WriteByte(')')
	case *ast.Assign:
		b.WriteString("(= ")
		writeNode(b, v.Lhs)
		b.WriteByte(' ')
		writeNode(b, v.Rhs)
		b.WriteByte(')')
	case *ast.Unary:
		fmt.Fprintf(b, "(unop %d ", int(v.Op))
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.PreInc:
		b.WriteString("(++pre ")
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.PreDec:
		b.WriteString("(--pre ")
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.PostInc:
		b.WriteString("(post++ ")
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.PostDec:
		b.WriteString("(post-- ")
		writeNode(b, v.Operand)
		b.WriteByte(')')
	case *ast.If:
		b.WriteString("(if ")
		writeNode(b, v.Cond)
		b.WriteByte(' ')
		writeNode(b, v.Then)
		if v.Else != nil {
			b.WriteByte(' ')
			writeNode(b, v.Else)
		}
		b.WriteByte(')')
	case *ast.For:
		b.WriteString("(for ")
		writeNode(b, v.Init)
		b.WriteByte(' ')
		writeNode(b, v.Cond)
		b.WriteByte(' ')
		writeNode(b, v.Step)
		b.WriteByte(' ')
		writeNode(b, v.Body)
		b.WriteByte(')')
	case *ast.While:
		b.WriteString("(while ")
		writeNode(b, v.Cond)
		b.WriteByte(' ')
		writeNode(b, v.Body)
		b.WriteByte(')')
	case *ast.DoWhile:
		b.WriteString("(do-while ")
		writeNode(b, v.Cond)
		b.WriteByte(' ')
		writeNode(b, v.Body)
		b.WriteByte(')')
	case *ast.Switch:
		b.WriteString("(switch ")
		writeNode(b, v.Expr)
		b.WriteByte(' ')
		writeNode(b, v.Body)
		b.WriteByte(')')
	case *ast.Case:
		fmt.Fprintf(b, "(case %d)", v.Value)
	case *ast.Default:
		b.WriteString("(default)")
	case *ast.Return:
		b.WriteString("(return")
		if v.Value != nil {
			b.WriteByte(' ')
			writeNode(b, v.Value)
		}
		b.WriteByte(')')
	case *ast.Break:
		b.WriteString("(break)")
	case *ast.Continue:
		b.WriteString("(continue)")
	case *ast.Compound:
		b.WriteString("(block")
		for _, s := range v.Statements {
			b.WriteByte(' ')
			writeNode(b, s)
		}
		b.WriteByte(')')
	case *ast.Goto:
		fmt.Fprintf(b, "(goto %s)", v.Label)
	case *ast.Label:
		fmt.Fprintf(b, "(label %s)", v.Name)
	default:
		b.WriteString("(unknown)")
	}
}

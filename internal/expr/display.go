package expr

import (
	"fmt"
	"strings"
)

// FormatDisplay serializes a tree to display (typeset) notation.
//
// Mapping: power forms become superscripts, sqrt becomes a radical,
// abs becomes bars, floor/ceiling become bracket glyphs, the named
// functions become operator commands, and comparison operators become
// their typeset commands. Multi-character identifiers are wrapped in a
// grouping command so they survive round-tripping.
func FormatDisplay(n Node) string {
	var b strings.Builder
	writeDisplay(&b, n, 0)
	return b.String()
}

// displayOps maps infix operators to their typeset spellings.
var displayOps = map[Op]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: `\times`,
	OpDiv: `\div`,
	OpMod: `\bmod`,
	OpEq:  "=",
	OpNe:  `\neq`,
	OpLt:  "<",
	OpLe:  `\leq`,
	OpGt:  ">",
	OpGe:  `\geq`,
}

func writeDisplay(b *strings.Builder, n Node, parentPrec int) {
	switch node := n.(type) {
	case Variable:
		writeDisplayName(b, node.Name)
	case Number:
		b.WriteString(formatNumber(node.Value))
	case Neg:
		b.WriteByte('-')
		writeDisplay(b, node.Operand, 5)
	case Group:
		b.WriteByte('(')
		writeDisplay(b, node.Inner, 0)
		b.WriteByte(')')
	case Binary:
		if node.Op == OpPow {
			writeSuperscript(b, node.Left, node.Right)
			return
		}
		prec := node.Op.precedence()
		needParens := prec < parentPrec
		if needParens {
			b.WriteByte('(')
		}
		writeDisplay(b, node.Left, leftPrec(node.Op))
		fmt.Fprintf(b, " %s ", displayOps[node.Op])
		writeDisplay(b, node.Right, rightPrec(node.Op))
		if needParens {
			b.WriteByte(')')
		}
	case Call:
		writeDisplayCall(b, node, parentPrec)
	}
}

func writeDisplayCall(b *strings.Builder, node Call, parentPrec int) {
	switch node.Func {
	case "pow":
		if len(node.Args) == 2 {
			writeSuperscript(b, node.Args[0], node.Args[1])
			return
		}
	case "sqrt":
		if len(node.Args) == 1 {
			b.WriteString(`\sqrt{`)
			writeDisplay(b, node.Args[0], 0)
			b.WriteByte('}')
			return
		}
	case "abs":
		if len(node.Args) == 1 {
			b.WriteString(`\left|`)
			writeDisplay(b, node.Args[0], 0)
			b.WriteString(`\right|`)
			return
		}
	case "floor":
		if len(node.Args) == 1 {
			b.WriteString(`\lfloor `)
			writeDisplay(b, node.Args[0], 0)
			b.WriteString(` \rfloor`)
			return
		}
	case "ceil":
		if len(node.Args) == 1 {
			b.WriteString(`\lceil `)
			writeDisplay(b, node.Args[0], 0)
			b.WriteString(` \rceil`)
			return
		}
	case "exp":
		if len(node.Args) == 1 {
			b.WriteString("e^{")
			writeDisplay(b, node.Args[0], 0)
			b.WriteByte('}')
			return
		}
	case "log10":
		b.WriteString(`\log_{10}`)
		writeDisplayArgs(b, node.Args)
		return
	case "min", "max", "sin", "cos", "tan", "ln":
		b.WriteByte('\\')
		b.WriteString(node.Func)
		writeDisplayArgs(b, node.Args)
		return
	case "contains":
		// Membership reads "element in sequence" in typeset form.
		if len(node.Args) == 2 {
			needParens := parentPrec > 1
			if needParens {
				b.WriteByte('(')
			}
			writeDisplay(b, node.Args[1], 2)
			b.WriteString(` \in `)
			writeDisplay(b, node.Args[0], 2)
			if needParens {
				b.WriteByte(')')
			}
			return
		}
	}
	// Fallback for arity mismatches and unmapped names.
	b.WriteString(`\operatorname{`)
	b.WriteString(node.Func)
	b.WriteByte('}')
	writeDisplayArgs(b, node.Args)
}

func writeDisplayArgs(b *strings.Builder, args []Node) {
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeDisplay(b, arg, 0)
	}
	b.WriteByte(')')
}

// writeSuperscript renders base^{exponent}, parenthesizing a compound
// base so the superscript visibly applies to the whole of it.
func writeSuperscript(b *strings.Builder, base, exponent Node) {
	if isDisplayLeaf(base) {
		writeDisplay(b, base, 4)
	} else {
		b.WriteByte('(')
		writeDisplay(b, base, 0)
		b.WriteByte(')')
	}
	b.WriteString("^{")
	writeDisplay(b, exponent, 0)
	b.WriteByte('}')
}

func isDisplayLeaf(n Node) bool {
	switch n.(type) {
	case Variable, Number, Group:
		return true
	}
	return false
}

// writeDisplayName emits an identifier, wrapping multi-character names
// in the grouping command so they parse back as one name.
func writeDisplayName(b *strings.Builder, name string) {
	if len(name) == 1 {
		b.WriteString(name)
		return
	}
	b.WriteString(`\mathit{`)
	b.WriteString(name)
	b.WriteByte('}')
}

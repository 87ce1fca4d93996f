package expr

import (
	"fmt"
	"strings"
)

// FormatLinear serializes a tree back to linear notation.
//
// Operands are parenthesized only where precedence demands it.
// Exponentiation with a non-literal operand is rendered as an explicit
// pow() call instead of the infix caret, so the regenerated text stays
// valid across both notation styles.
func FormatLinear(n Node) string {
	var b strings.Builder
	writeLinear(&b, n, 0)
	return b.String()
}

func writeLinear(b *strings.Builder, n Node, parentPrec int) {
	switch node := n.(type) {
	case Variable:
		b.WriteString(node.Name)
	case Number:
		b.WriteString(formatNumber(node.Value))
	case Neg:
		b.WriteByte('-')
		writeLinear(b, node.Operand, 5)
	case Group:
		b.WriteByte('(')
		writeLinear(b, node.Inner, 0)
		b.WriteByte(')')
	case Call:
		b.WriteString(node.Func)
		b.WriteByte('(')
		for i, arg := range node.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeLinear(b, arg, 0)
		}
		b.WriteByte(')')
	case Binary:
		if node.Op == OpPow && (!isLiteral(node.Left) || !isLiteral(node.Right)) {
			b.WriteString("pow(")
			writeLinear(b, node.Left, 0)
			b.WriteString(", ")
			writeLinear(b, node.Right, 0)
			b.WriteByte(')')
			return
		}
		prec := node.Op.precedence()
		needParens := prec < parentPrec
		if needParens {
			b.WriteByte('(')
		}
		writeLinear(b, node.Left, leftPrec(node.Op))
		fmt.Fprintf(b, " %s ", node.Op)
		writeLinear(b, node.Right, rightPrec(node.Op))
		if needParens {
			b.WriteByte(')')
		}
	}
}

// leftPrec and rightPrec encode associativity: a left-associative
// operator's right child must bind strictly tighter, and vice versa.
func leftPrec(op Op) int {
	if op.rightAssoc() {
		return op.precedence() + 1
	}
	return op.precedence()
}

func rightPrec(op Op) int {
	if op.rightAssoc() {
		return op.precedence()
	}
	return op.precedence() + 1
}

// isLiteral reports whether n is a bare numeric literal (possibly
// negated). Exponentiation keeps its infix form only between literals.
func isLiteral(n Node) bool {
	switch node := n.(type) {
	case Number:
		return true
	case Neg:
		_, ok := node.Operand.(Number)
		return ok
	}
	return false
}

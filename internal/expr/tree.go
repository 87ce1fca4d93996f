// Package expr models formula expressions as one canonical tagged tree
// with independent parsers and serializers for the linear (host-style)
// and display (typeset) notations.
//
// Keeping a single tree with two serializer/parser pairs makes adding a
// notation additive instead of combinatorial, and removes chained
// string-rewrite fragility.
package expr

import "strconv"

// Node is a sealed interface over the expression node kinds.
// Only Variable, Number, Binary, Call, and Group implement it.
type Node interface {
	exprNode()
}

// Variable references a scope binding by name.
type Variable struct {
	Name string
}

func (Variable) exprNode() {}

// Number is a numeric literal.
type Number struct {
	Value float64
}

func (Number) exprNode() {}

// Binary applies an infix operator to two operands.
type Binary struct {
	Op    Op
	Left  Node
	Right Node
}

func (Binary) exprNode() {}

// Call invokes a standard library function with parsed arguments.
type Call struct {
	Func string
	Args []Node
}

func (Call) exprNode() {}

// Group is an explicitly parenthesized subexpression. Preserved in the
// tree so serialization keeps the author's grouping.
type Group struct {
	Inner Node
}

func (Group) exprNode() {}

// Neg is unary minus. Modeled as a distinct node because a leading "-"
// is not a binary operator and re-serializes differently.
type Neg struct {
	Operand Node
}

func (Neg) exprNode() {}

// Op enumerates the infix operators of the formula language.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"
	OpPow Op = "^"

	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// precedence returns the binding power of an operator. Higher binds
// tighter. Comparisons bind loosest so "a + 1 > b" parses naturally.
func (o Op) precedence() int {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return 1
	case OpAdd, OpSub:
		return 2
	case OpMul, OpDiv, OpMod:
		return 3
	case OpPow:
		return 4
	}
	return 0
}

// rightAssoc reports whether the operator associates to the right.
// Exponentiation is the only right-associative operator.
func (o Op) rightAssoc() bool {
	return o == OpPow
}

// IsComparison reports whether the operator yields a boolean.
func (o Op) IsComparison() bool {
	return o.precedence() == 1
}

// Funcs lists the recognized standard library function names, ordered
// longest-first so the scanner can match greedily.
var Funcs = []string{
	"contains",
	"log10",
	"floor",
	"round",
	"sqrt",
	"ceil",
	"abs",
	"min",
	"max",
	"sin",
	"cos",
	"tan",
	"pow",
	"exp",
	"ln",
}

// IsFunc reports whether name is a recognized function.
func IsFunc(name string) bool {
	for _, f := range Funcs {
		if f == name {
			return true
		}
	}
	return false
}

// formatNumber renders a numeric literal without a trailing ".0" for
// integral values, matching how authors write them.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Package eval executes an algorithm's ordered steps against an
// initialized variable scope.
//
// Expressions are compiled once into the canonical tree (internal/expr)
// and interpreted against an explicit binding environment; no code is
// built from text at evaluation time.
package eval

import (
	"fmt"
	"math"

	"github.com/shoalcove/scalegen/internal/expr"
)

// EvalExpr parses and evaluates one linear-notation expression against
// a scope. Assignment form is not accepted here; callers split it
// first.
func EvalExpr(text string, sc *Scope) (Value, error) {
	tree, err := expr.ParseLinear(text)
	if err != nil {
		return nil, err
	}
	return EvalTree(tree, sc)
}

// EvalTree interprets an expression tree against a scope.
func EvalTree(n expr.Node, sc *Scope) (Value, error) {
	switch node := n.(type) {
	case expr.Number:
		return Number(node.Value), nil
	case expr.Variable:
		v, ok := sc.Lookup(node.Name)
		if !ok {
			return nil, fmt.Errorf("unresolved identifier %q", node.Name)
		}
		return v, nil
	case expr.Group:
		return EvalTree(node.Inner, sc)
	case expr.Neg:
		v, err := EvalTree(node.Operand, sc)
		if err != nil {
			return nil, err
		}
		x, err := AsNumber(v)
		if err != nil {
			return nil, err
		}
		return Number(-x), nil
	case expr.Call:
		return evalCall(node, sc)
	case expr.Binary:
		return evalBinary(node, sc)
	default:
		return nil, fmt.Errorf("unknown expression node %T", n)
	}
}

func evalCall(node expr.Call, sc *Scope) (Value, error) {
	fn, ok := stdlib[node.Func]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", node.Func)
	}
	if len(node.Args) < fn.minArgs || (fn.maxArgs >= 0 && len(node.Args) > fn.maxArgs) {
		return nil, fmt.Errorf("%s: wrong argument count %d", node.Func, len(node.Args))
	}
	args := make([]Value, len(node.Args))
	for i, argNode := range node.Args {
		v, err := EvalTree(argNode, sc)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn.apply(args)
}

func evalBinary(node expr.Binary, sc *Scope) (Value, error) {
	left, err := EvalTree(node.Left, sc)
	if err != nil {
		return nil, err
	}
	right, err := EvalTree(node.Right, sc)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case expr.OpEq:
		return Bool(Equal(left, right)), nil
	case expr.OpNe:
		return Bool(!Equal(left, right)), nil
	}

	l, err := AsNumber(left)
	if err != nil {
		return nil, err
	}
	r, err := AsNumber(right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case expr.OpAdd:
		return Number(l + r), nil
	case expr.OpSub:
		return Number(l - r), nil
	case expr.OpMul:
		return Number(l * r), nil
	case expr.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return Number(l / r), nil
	case expr.OpMod:
		if r == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return Number(math.Mod(l, r)), nil
	case expr.OpPow:
		return Number(math.Pow(l, r)), nil
	case expr.OpLt:
		return Bool(l < r), nil
	case expr.OpLe:
		return Bool(l <= r), nil
	case expr.OpGt:
		return Bool(l > r), nil
	case expr.OpGe:
		return Bool(l >= r), nil
	default:
		return nil, fmt.Errorf("unknown operator %q", node.Op)
	}
}

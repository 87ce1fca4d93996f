package eval

import (
	"fmt"
	"math"
)

// builtin is one standard library function. MaxArgs of -1 means
// variadic.
type builtin struct {
	minArgs int
	maxArgs int
	apply   func(args []Value) (Value, error)
}

// stdlib is the read-only function library every scope can call.
var stdlib = map[string]builtin{
	"pow":   numeric2("pow", math.Pow),
	"min":   variadicFold("min", math.Min),
	"max":   variadicFold("max", math.Max),
	"sqrt":  numeric1("sqrt", math.Sqrt),
	"abs":   numeric1("abs", math.Abs),
	"floor": numeric1("floor", math.Floor),
	"ceil":  numeric1("ceil", math.Ceil),
	"round": numeric1("round", math.Round),
	"sin":   numeric1("sin", math.Sin),
	"cos":   numeric1("cos", math.Cos),
	"tan":   numeric1("tan", math.Tan),
	"ln":    numeric1("ln", math.Log),
	"log10": numeric1("log10", math.Log10),
	"exp":   numeric1("exp", math.Exp),
	"contains": {
		minArgs: 2,
		maxArgs: 2,
		apply: func(args []Value) (Value, error) {
			list, ok := args[0].(List)
			if !ok {
				return nil, fmt.Errorf("contains: first argument must be a sequence, got %s", Format(args[0]))
			}
			for _, elem := range list {
				if Equal(elem, args[1]) {
					return Bool(true), nil
				}
			}
			return Bool(false), nil
		},
	},
}

func numeric1(name string, fn func(float64) float64) builtin {
	return builtin{
		minArgs: 1,
		maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			x, err := AsNumber(args[0])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return Number(fn(x)), nil
		},
	}
}

func numeric2(name string, fn func(float64, float64) float64) builtin {
	return builtin{
		minArgs: 2,
		maxArgs: 2,
		apply: func(args []Value) (Value, error) {
			x, err := AsNumber(args[0])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			y, err := AsNumber(args[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return Number(fn(x, y)), nil
		},
	}
}

func variadicFold(name string, fn func(float64, float64) float64) builtin {
	return builtin{
		minArgs: 1,
		maxArgs: -1,
		apply: func(args []Value) (Value, error) {
			acc, err := AsNumber(args[0])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			for _, arg := range args[1:] {
				x, err := AsNumber(arg)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				acc = fn(acc, x)
			}
			return Number(acc), nil
		},
	}
}

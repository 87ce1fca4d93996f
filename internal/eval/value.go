package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shoalcove/scalegen/internal/model"
)

// Value is a sealed interface over the evaluator's runtime values.
// Only Number, String, Bool, and List implement it. Colors stay
// textual; there is no arithmetic on them.
type Value interface {
	evalValue()
}

// Number is a numeric runtime value.
type Number float64

func (Number) evalValue() {}

// String is a textual runtime value. Color variables resolve to
// String as well.
type String string

func (String) evalValue() {}

// Bool is a boolean runtime value.
type Bool bool

func (Bool) evalValue() {}

// List is an ordered sequence, produced from bracketed list literals.
type List []Value

func (List) evalValue() {}

// Format renders a value the way it is stored on a generated token.
func Format(v Value) string {
	switch val := v.(type) {
	case Number:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case String:
		return string(val)
	case Bool:
		return strconv.FormatBool(bool(val))
	case List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Format(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// AsNumber coerces a value to float64 for arithmetic.
func AsNumber(v Value) (float64, error) {
	switch val := v.(type) {
	case Number:
		return float64(val), nil
	case Bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case String:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", string(val))
		}
		return n, nil
	default:
		return 0, fmt.Errorf("value %s is not numeric", Format(v))
	}
}

// Equal compares two values for the "==" and "!=" operators. Numbers
// compare numerically, everything else by formatted text.
func Equal(a, b Value) bool {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if aok && bok {
		return an == bn
	}
	return Format(a) == Format(b)
}

// ParseTyped parses a raw variable value per its declared type.
//
// Numbers parse as floats, booleans accept "true"/"1", and a string
// that looks like a bracketed list literal becomes an ordered List.
// Anything else stays textual, including colors.
func ParseTyped(t model.VarType, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case model.VarTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		return Number(n), nil
	case model.VarTypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "1":
			return Bool(true), nil
		default:
			return Bool(false), nil
		}
	case model.VarTypeString, model.VarTypeColor:
		if isListLiteral(raw) {
			return parseListLiteral(raw), nil
		}
		return String(raw), nil
	default:
		return nil, fmt.Errorf("invalid variable type %q", t)
	}
}

func isListLiteral(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// parseListLiteral splits "[a, b, c]" into an ordered List. Elements
// that parse as numbers become Number, the rest stay String.
func parseListLiteral(s string) List {
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return List{}
	}
	parts := strings.Split(body, ",")
	list := make(List, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), `"'`))
		if n, err := strconv.ParseFloat(part, 64); err == nil {
			list = append(list, Number(n))
			continue
		}
		list = append(list, String(part))
	}
	return list
}

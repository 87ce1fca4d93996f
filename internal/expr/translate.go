package expr

import (
	"fmt"
	"strings"
)

// ToDisplay converts linear notation to display notation by parsing
// and re-serializing through the canonical tree. Assignment form is
// handled by translating the right-hand side and re-joining.
func ToDisplay(text string) (string, error) {
	if ident, rhs, ok := SplitAssignment(text); ok {
		display, err := ToDisplay(rhs)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		writeDisplayName(&b, ident)
		return b.String() + " = " + display, nil
	}
	tree, err := ParseLinear(text)
	if err != nil {
		return "", fmt.Errorf("translate %q: %w", text, err)
	}
	return FormatDisplay(tree), nil
}

// FromDisplay converts display notation back to linear notation.
//
// Only semantic round-trip is guaranteed: unary minus, nested powers,
// and variable-operand exponentiation may re-serialize to a different
// but equivalent spelling (notably pow() instead of a caret).
func FromDisplay(display string) (string, error) {
	tree, err := ParseDisplay(display)
	if err != nil {
		return "", fmt.Errorf("translate %q: %w", display, err)
	}
	// A top-level "=" between an identifier and an expression is the
	// display mirror of assignment form, not an equality test.
	if bin, ok := tree.(Binary); ok && bin.Op == OpEq {
		if v, ok := bin.Left.(Variable); ok {
			return v.Name + " = " + FormatLinear(bin.Right), nil
		}
	}
	return FormatLinear(tree), nil
}

// SplitAssignment splits "ident = expr" linear text into its parts.
// Returns ok=false for pure expressions; "==", "<=", ">=", and "!="
// never count as assignment.
func SplitAssignment(text string) (ident, rhs string, ok bool) {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(text) && text[i+1] == '=' {
				i++ // skip "=="
				continue
			}
			if i > 0 && (text[i-1] == '=' || text[i-1] == '<' || text[i-1] == '>' || text[i-1] == '!') {
				continue
			}
			left := strings.TrimSpace(text[:i])
			right := strings.TrimSpace(text[i+1:])
			if !isIdentText(left) || right == "" {
				return "", "", false
			}
			return left, right, true
		}
	}
	return "", "", false
}

func isIdentText(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

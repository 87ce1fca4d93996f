package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDisplay_PureExpression(t *testing.T) {
	display, err := ToDisplay("base * 2")
	require.NoError(t, err)
	assert.Equal(t, `\mathit{base} \times 2`, display)
}

func TestToDisplay_AssignmentForm(t *testing.T) {
	display, err := ToDisplay("size = base * pow(2, n)")
	require.NoError(t, err)
	assert.Equal(t, `\mathit{size} = \mathit{base} \times 2^{n}`, display)
}

func TestToDisplay_ParseFailure(t *testing.T) {
	_, err := ToDisplay("base *")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "translate")
}

func TestFromDisplay_PureExpression(t *testing.T) {
	linear, err := FromDisplay(`\mathit{base} \times 2`)
	require.NoError(t, err)
	assert.Equal(t, "base * 2", linear)
}

func TestFromDisplay_AssignmentMirror(t *testing.T) {
	// A top-level "=" with an identifier left-hand side is assignment
	// form, not an equality comparison.
	linear, err := FromDisplay(`\mathit{size} = \mathit{base} \times 2^{n}`)
	require.NoError(t, err)
	assert.Equal(t, "size = base * pow(2, n)", linear)
}

func TestFromDisplay_EqualityStaysComparison(t *testing.T) {
	linear, err := FromDisplay(`2 = \mathit{base}`)
	require.NoError(t, err)
	assert.Equal(t, "2 == base", linear)
}

func TestTranslate_SemanticRoundTrip(t *testing.T) {
	// Linear -> display -> linear. Text may be respelled (caret to
	// pow) but a second round trip is a fixed point.
	cases := []string{
		"size = base * pow(2, n)",
		"base * ratio + offset",
		"sqrt(x + 1) / 2",
		"min(a, max(b, c))",
		"contains(sizes, x)",
		"value = abs(a - b)",
	}
	for _, linear := range cases {
		t.Run(linear, func(t *testing.T) {
			display, err := ToDisplay(linear)
			require.NoError(t, err)
			back, err := FromDisplay(display)
			require.NoError(t, err)
			assert.Equal(t, linear, back)
		})
	}
}

func TestSplitAssignment(t *testing.T) {
	cases := []struct {
		text  string
		ident string
		rhs   string
		ok    bool
	}{
		{"size = base * 2", "size", "base * 2", true},
		{"x=1", "x", "1", true},
		{"base * 2", "", "", false},
		{"a == b", "", "", false},
		{"a <= b", "", "", false},
		{"a >= b", "", "", false},
		{"a != b", "", "", false},
		{"a + b = c", "", "", false},
		{"size =", "", "", false},
		{"min(a, b) == 1", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			ident, rhs, ok := SplitAssignment(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.ident, ident)
			assert.Equal(t, tc.rhs, rhs)
		})
	}
}

func TestSplitAssignment_IgnoresParenthesized(t *testing.T) {
	// An "=" inside parens is never the assignment split point. The
	// formula language has no parenthesized "=", so no split happens.
	_, _, ok := SplitAssignment("f(a = b)")
	assert.False(t, ok)
}

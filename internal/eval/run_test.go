package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoalcove/scalegen/internal/model"
)

// sizeAlgorithm builds a two-formula algorithm where the second step
// reads the first step's assignment.
func sizeAlgorithm() *model.Algorithm {
	return &model.Algorithm{
		ID:   "alg-1",
		Name: "Sizing",
		Variables: []model.Variable{
			{Name: "base", Type: model.VarTypeNumber, DefaultValue: "16"},
		},
		Formulas: []model.Formula{
			{ID: "f1", Name: "size", Expression: "size = base * pow(2, n)"},
			{ID: "f2", Name: "padded", Expression: "size + 4"},
		},
		Conditions: []model.Condition{
			{ID: "c1", Name: "in_range", Expression: "size <= 64"},
		},
		Steps: []model.Step{
			{Type: model.StepFormula, RefID: "f1"},
			{Type: model.StepCondition, RefID: "c1"},
			{Type: model.StepFormula, RefID: "f2"},
		},
	}
}

func TestRun_AssignmentPropagates(t *testing.T) {
	ec, err := Run(sizeAlgorithm(), 1, nil, nil)
	require.NoError(t, err)

	// f1 binds size=32, f2 reads it.
	assert.Equal(t, Number(32), ec.Results["size"])
	assert.Equal(t, Number(36), ec.Results["padded"])
	assert.Equal(t, Number(36), ec.Final)
	assert.Equal(t, "36", ec.FinalText)
}

func TestRun_ConditionDoesNotTouchFinal(t *testing.T) {
	alg := sizeAlgorithm()
	// End on the condition so the last formula result stays final.
	alg.Steps = []model.Step{
		{Type: model.StepFormula, RefID: "f1"},
		{Type: model.StepCondition, RefID: "c1"},
	}

	ec, err := Run(alg, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Number(16), ec.Final)
	assert.Equal(t, Bool(true), ec.Results["in_range"])
}

func TestRun_IterationBinding(t *testing.T) {
	for n, want := range map[int]float64{-1: 8, 0: 16, 1: 32, 2: 64} {
		ec, err := Run(sizeAlgorithm(), n, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, Number(want), ec.Results["size"], "iteration %d", n)
	}
}

func TestRun_OverridesWin(t *testing.T) {
	ec, err := Run(sizeAlgorithm(), 0, map[string]Value{"base": Number(10)}, nil)
	require.NoError(t, err)
	assert.Equal(t, Number(10), ec.Results["size"])
}

func TestRun_ModeContextResolution(t *testing.T) {
	alg := sizeAlgorithm()
	alg.Variables[0].ModeBased = true
	alg.Variables[0].DimensionID = "density"
	alg.Variables[0].ModeValues = map[string]string{"compact": "4", "comfortable": "8"}

	ec, err := Run(alg, 0, nil, map[string]string{"density": "compact"})
	require.NoError(t, err)
	assert.Equal(t, Number(4), ec.Results["size"])

	// A mode without a table entry falls back to the default.
	ec, err = Run(alg, 0, nil, map[string]string{"density": "spacious"})
	require.NoError(t, err)
	assert.Equal(t, Number(16), ec.Results["size"])

	// No mode chosen for the dimension: default again.
	ec, err = Run(alg, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Number(16), ec.Results["size"])
}

func TestRun_StepErrorAbortsRun(t *testing.T) {
	alg := sizeAlgorithm()
	alg.Formulas[0].Expression = "size = base / 0"

	_, err := Run(alg, 0, nil, nil)
	require.Error(t, err)

	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "size", serr.Step)
	assert.Contains(t, serr.Error(), "division by zero")
}

func TestRun_NonFiniteResultFails(t *testing.T) {
	alg := sizeAlgorithm()
	alg.Formulas[0].Expression = "size = pow(10, 1000) * pow(10, 1000)"

	_, err := Run(alg, 0, nil, nil)
	require.Error(t, err)

	var serr *StepError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "non-finite")
}

func TestRun_ValidationErrorBlocksExecution(t *testing.T) {
	alg := sizeAlgorithm()
	alg.Steps = append(alg.Steps, model.Step{Type: model.StepFormula, RefID: "nope"})

	_, err := Run(alg, 0, nil, nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestRun_WarningsDoNotBlock(t *testing.T) {
	alg := sizeAlgorithm()
	alg.Formulas[1].Expression = "size ^ 1"

	_, err := Run(alg, 0, nil, nil)
	require.NoError(t, err)
}

func TestInitScope_BadDefaultValue(t *testing.T) {
	alg := sizeAlgorithm()
	alg.Variables[0].DefaultValue = "not-a-number"

	_, err := InitScope(alg, 0, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `variable "base"`)
}

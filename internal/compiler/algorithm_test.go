package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoalcove/scalegen/internal/model"
)

func compileAt(t *testing.T, src, path string) cue.Value {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath(path))
}

const spacingCUE = `
algorithm: spacing: {
	id: "alg-spacing"
	variables: [
		{
			name: "base"
			type: "number"
			default: "16"
		},
		{
			name: "ratio"
			type: "number"
			default: "2"
			mode_based: true
			dimension: "density"
			mode_values: {
				compact: "1.5"
				comfortable: "2"
			}
		},
	]
	formulas: [
		{
			id: "f1"
			name: "size"
			expression: "size = base * pow(ratio, n)"
		},
		{
			id: "f2"
			expression: "size + 4"
		},
	]
	conditions: [
		{
			id: "c1"
			name: "positive"
			expression: "size > 0"
		},
	]
	steps: [
		{type: "formula", ref: "f1"},
		{type: "condition", ref: "c1"},
		{type: "formula", ref: "f2"},
	]
	generation: {
		range: {start: -1, end: 2, step: 1}
		mapping: {
			policy: "tshirt"
			new_taxonomy: "Spacing sizes"
			extra_marker: "X"
		}
		bulk: {
			token_type: "dimension"
			tags: ["spacing", "core"]
			taxonomies: [
				{taxonomy: "t-cat", term: "tm-spacing"},
			]
		}
	}
}
`

func TestCompileAlgorithm_Full(t *testing.T) {
	alg, err := CompileAlgorithm(compileAt(t, spacingCUE, "algorithm.spacing"))
	require.NoError(t, err)

	assert.Equal(t, "alg-spacing", alg.ID)
	assert.Equal(t, "spacing", alg.Name, "name defaults to the struct label")

	require.Len(t, alg.Variables, 2)
	ratio := alg.Variables[1]
	assert.True(t, ratio.ModeBased)
	assert.Equal(t, "density", ratio.DimensionID)
	assert.Equal(t, map[string]string{"compact": "1.5", "comfortable": "2"}, ratio.ModeValues)

	require.Len(t, alg.Formulas, 2)
	assert.Equal(t, "size", alg.Formulas[0].Name)
	assert.Equal(t, "f2", alg.Formulas[1].Name, "formula name falls back to id")

	require.Len(t, alg.Steps, 3)
	assert.Equal(t, model.StepCondition, alg.Steps[1].Type)

	require.NotNil(t, alg.Generation)
	assert.Equal(t, model.IterationRange{Start: -1, End: 2, Step: 1}, alg.Generation.Range)
	assert.Equal(t, model.ScaleTshirt, alg.Generation.Mapping.Policy)
	assert.Equal(t, "Spacing sizes", alg.Generation.Mapping.NewTaxonomyName)
	assert.Equal(t, []string{"spacing", "core"}, alg.Generation.BulkAssignments.Tags)
	require.Len(t, alg.Generation.BulkAssignments.TaxonomyRefs, 1)
	assert.Equal(t, "t-cat", alg.Generation.BulkAssignments.TaxonomyRefs[0].TaxonomyID)

	res := model.Validate(alg)
	assert.True(t, res.Valid, "compiled algorithm should validate: %v", res.Errors)
}

func TestCompileAlgorithm_ExplicitNameWins(t *testing.T) {
	src := `
algorithm: spacing: {
	id: "a1"
	name: "Spacing scale"
	formulas: [{id: "f1", expression: "1 + 1"}]
	steps: [{type: "formula", ref: "f1"}]
}
`
	alg, err := CompileAlgorithm(compileAt(t, src, "algorithm.spacing"))
	require.NoError(t, err)
	assert.Equal(t, "Spacing scale", alg.Name)
}

func TestCompileAlgorithm_NumericMapping(t *testing.T) {
	src := `
algorithm: weights: {
	id: "a1"
	formulas: [{id: "f1", expression: "n * 100"}]
	steps: [{type: "formula", ref: "f1"}]
	generation: {
		range: {start: -2, end: 2, step: 1}
		mapping: {
			policy: "numeric"
			taxonomy: "t-weights"
			default_label: "400"
			increasing_step: 100
			decreasing_step: 100
		}
	}
}
`
	alg, err := CompileAlgorithm(compileAt(t, src, "algorithm.weights"))
	require.NoError(t, err)

	m := alg.Generation.Mapping
	assert.Equal(t, model.ScaleNumeric, m.Policy)
	assert.Equal(t, "t-weights", m.TaxonomyID)
	assert.Equal(t, "400", m.DefaultLabel)
	assert.Equal(t, 100.0, m.IncreasingStep)
	assert.Equal(t, 100.0, m.DecreasingStep)
}

func TestCompileAlgorithm_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		msg  string
	}{
		{
			"missing id",
			`algorithm: a: {formulas: [{id: "f1", expression: "1"}]}`,
			"id is required",
		},
		{
			"no formulas",
			`algorithm: a: {id: "a1", steps: []}`,
			"at least one formula is required",
		},
		{
			"invalid variable type",
			`algorithm: a: {id: "a1", variables: [{name: "x", type: "decimal"}], formulas: [{id: "f1", expression: "1"}]}`,
			"invalid variable type decimal",
		},
		{
			"invalid step type",
			`algorithm: a: {id: "a1", formulas: [{id: "f1", expression: "1"}], steps: [{type: "loop", ref: "f1"}]}`,
			"invalid step type loop",
		},
		{
			"generation without range",
			`algorithm: a: {id: "a1", formulas: [{id: "f1", expression: "1"}], generation: {mapping: {policy: "tshirt"}}}`,
			"iteration range is required",
		},
		{
			"generation without mapping",
			`algorithm: a: {id: "a1", formulas: [{id: "f1", expression: "1"}], generation: {range: {start: 0, end: 1, step: 1}}}`,
			"logical mapping is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileAlgorithm(compileAt(t, tc.src, "algorithm.a"))
			require.Error(t, err)

			var cerr *CompileError
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, cerr.Message, tc.msg)
		})
	}
}

package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoalcove/scalegen/internal/eval"
	"github.com/shoalcove/scalegen/internal/model"
)

// doublingAlgorithm produces a size scale that doubles per iteration
// and maps onto a fresh t-shirt taxonomy.
func doublingAlgorithm() *model.Algorithm {
	return &model.Algorithm{
		ID:   "alg-1",
		Name: "Sizing",
		Variables: []model.Variable{
			{Name: "base", Type: model.VarTypeNumber, DefaultValue: "16"},
		},
		Formulas: []model.Formula{
			{ID: "f1", Name: "size", Expression: "size = base * pow(2, n)"},
		},
		Steps: []model.Step{{Type: model.StepFormula, RefID: "f1"}},
		Generation: &model.TokenGeneration{
			Range: model.IterationRange{Start: -1, End: 1, Step: 1},
			Mapping: model.LogicalMapping{
				Policy:          model.ScaleTshirt,
				NewTaxonomyName: "Sizes",
			},
			BulkAssignments: model.BulkAssignments{
				TokenType: "dimension",
				Tags:      []string{"spacing"},
			},
		},
	}
}

func TestGenerate_NewTaxonomy(t *testing.T) {
	req := Request{
		Algorithm: doublingAlgorithm(),
		IDGen:     NewFixedGenerator("tax-1", "tm-s", "tm-m", "tm-l", "tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Tokens, 3)

	small := result.Tokens[0]
	assert.Equal(t, "tok-1", small.ID)
	assert.Equal(t, "Small", small.DisplayName)
	assert.Equal(t, "8", small.Value)
	assert.Equal(t, "dimension", small.TokenType)
	assert.Equal(t, []string{"spacing"}, small.Tags)
	assert.Equal(t, -1, small.Iteration)
	assert.Equal(t, "alg-1", small.AlgorithmID)
	require.Len(t, small.Taxonomies, 1)
	assert.Equal(t, model.TaxonomyRef{TaxonomyID: "tax-1", TermID: "tm-s"}, small.Taxonomies[0])

	assert.Equal(t, "Medium", result.Tokens[1].DisplayName)
	assert.Equal(t, "16", result.Tokens[1].Value)
	assert.Equal(t, "Large", result.Tokens[2].DisplayName)
	assert.Equal(t, "32", result.Tokens[2].Value)

	require.Len(t, result.NewTaxonomies, 1)
	assert.Equal(t, "Sizes", result.NewTaxonomies[0].Name)
	assert.Len(t, result.NewTaxonomies[0].Terms, 3)
	assert.Nil(t, result.UpdatedTaxonomy)
}

func TestGenerate_ConstantFormulaVariesNamesOnly(t *testing.T) {
	alg := doublingAlgorithm()
	// The value ignores n entirely; only naming tracks the iteration.
	alg.Formulas[0].Expression = "base * 2"
	alg.Generation.Range = model.IterationRange{Start: 0, End: 2, Step: 1}

	req := Request{
		Algorithm: alg,
		IDGen:     NewFixedGenerator("tax-1", "tm-m", "tm-l", "tm-xl", "tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Tokens, 3)

	assert.Equal(t, "Medium", result.Tokens[0].DisplayName)
	assert.Equal(t, "Large", result.Tokens[1].DisplayName)
	assert.Equal(t, "X-Large", result.Tokens[2].DisplayName)
	for _, tok := range result.Tokens {
		assert.Equal(t, "32", tok.Value)
	}
}

func TestGenerate_ExistingTaxonomyWorkingCopy(t *testing.T) {
	alg := doublingAlgorithm()
	alg.Generation.Mapping = model.LogicalMapping{
		Policy:     model.ScaleTshirt,
		TaxonomyID: "t-sizes",
	}
	caller := &model.Taxonomy{
		ID:    "t-sizes",
		Name:  "Sizes",
		Terms: []model.Term{{ID: "tm-m", Name: "Medium"}},
	}
	req := Request{
		Algorithm:  alg,
		Taxonomies: map[string]*model.Taxonomy{"t-sizes": caller},
		IDGen:      NewFixedGenerator("tm-s", "tm-l", "tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)

	// Terms were created on a working copy; the caller's object is
	// untouched and the grown copy is reported back.
	assert.Len(t, caller.Terms, 1)
	require.NotNil(t, result.UpdatedTaxonomy)
	assert.Len(t, result.UpdatedTaxonomy.Terms, 3)
}

func TestGenerate_ExistingTaxonomyInPlace(t *testing.T) {
	alg := doublingAlgorithm()
	alg.Generation.Mapping = model.LogicalMapping{
		Policy:     model.ScaleTshirt,
		TaxonomyID: "t-sizes",
	}
	caller := &model.Taxonomy{
		ID:    "t-sizes",
		Name:  "Sizes",
		Terms: []model.Term{{ID: "tm-m", Name: "Medium"}},
	}
	req := Request{
		Algorithm:     alg,
		Taxonomies:    map[string]*model.Taxonomy{"t-sizes": caller},
		MutateInPlace: true,
		IDGen:         NewFixedGenerator("tm-s", "tm-l", "tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	assert.Len(t, caller.Terms, 3)
	require.NotNil(t, result.UpdatedTaxonomy)
	assert.Same(t, caller, result.UpdatedTaxonomy)
}

func TestGenerate_NoTermsCreatedNoUpdate(t *testing.T) {
	alg := doublingAlgorithm()
	alg.Generation.Mapping = model.LogicalMapping{
		Policy:     model.ScaleTshirt,
		TaxonomyID: "t-sizes",
	}
	caller := &model.Taxonomy{
		ID:   "t-sizes",
		Name: "Sizes",
		Terms: []model.Term{
			{ID: "tm-s", Name: "Small"},
			{ID: "tm-m", Name: "Medium"},
			{ID: "tm-l", Name: "Large"},
		},
	}
	req := Request{
		Algorithm:  alg,
		Taxonomies: map[string]*model.Taxonomy{"t-sizes": caller},
		IDGen:      NewFixedGenerator("tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	assert.Nil(t, result.UpdatedTaxonomy, "nothing grew, nothing to persist")
}

func TestGenerate_ModeCells(t *testing.T) {
	alg := doublingAlgorithm()
	alg.Variables[0].ModeBased = true
	alg.Variables[0].DimensionID = "density"
	alg.Variables[0].ModeValues = map[string]string{"compact": "8", "comfortable": "16"}
	alg.Generation.Range = model.IterationRange{Start: 0, End: 0, Step: 1}

	req := Request{
		Algorithm: alg,
		Dimensions: map[string]model.Dimension{
			"density": {ID: "density", Modes: []model.Mode{{ID: "compact"}, {ID: "comfortable"}}},
		},
		IDGen: NewFixedGenerator("tax-1", "tm-m", "tok-1", "tok-2"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Tokens, 2)

	assert.Equal(t, map[string]string{"density": "compact"}, result.Tokens[0].ModeScope)
	assert.Equal(t, "8", result.Tokens[0].Value)
	assert.Equal(t, map[string]string{"density": "comfortable"}, result.Tokens[1].ModeScope)
	assert.Equal(t, "16", result.Tokens[1].Value)

	// Both mode cells share the same iteration term.
	assert.Equal(t, result.Tokens[0].Taxonomies, result.Tokens[1].Taxonomies)
}

func TestGenerate_CollisionDropsCellOnly(t *testing.T) {
	req := Request{
		Algorithm:        doublingAlgorithm(),
		ExistingTokenIDs: map[string]bool{"tok-2": true},
		IDGen:            NewFixedGenerator("tax-1", "tm-s", "tm-m", "tm-l", "tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Tokens, 2)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `token id "tok-2" already exists`)

	assert.Equal(t, "tok-1", result.Tokens[0].ID)
	assert.Equal(t, "tok-3", result.Tokens[1].ID)
}

func TestGenerate_CellErrorIsolation(t *testing.T) {
	alg := doublingAlgorithm()
	// Division by (n + 1) fails only at n = -1.
	alg.Formulas[0].Expression = "size = base / (n + 1)"

	req := Request{
		Algorithm: alg,
		IDGen:     NewFixedGenerator("tax-1", "tm-s", "tm-m", "tm-l", "tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "division by zero")
	require.Len(t, result.Tokens, 2)
	assert.Equal(t, 0, result.Tokens[0].Iteration)
	assert.Equal(t, 1, result.Tokens[1].Iteration)
}

func TestGenerate_Overrides(t *testing.T) {
	req := Request{
		Algorithm: doublingAlgorithm(),
		Overrides: map[string]eval.Value{"base": eval.Number(10)},
		IDGen:     NewFixedGenerator("tax-1", "tm-s", "tm-m", "tm-l", "tok-1", "tok-2", "tok-3"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Tokens, 3)
	assert.Equal(t, "5", result.Tokens[0].Value)
	assert.Equal(t, "10", result.Tokens[1].Value)
	assert.Equal(t, "20", result.Tokens[2].Value)
}

func TestGenerate_PreflightErrors(t *testing.T) {
	t.Run("invalid algorithm", func(t *testing.T) {
		alg := doublingAlgorithm()
		alg.ID = ""
		_, err := Generate(Request{Algorithm: alg})
		requirePreflight(t, err, ErrCodeInvalidAlgorithm)
	})

	t.Run("no generation config", func(t *testing.T) {
		alg := doublingAlgorithm()
		alg.Generation = nil
		_, err := Generate(Request{Algorithm: alg})
		requirePreflight(t, err, ErrCodeNoGeneration)
	})

	t.Run("taxonomy not found", func(t *testing.T) {
		alg := doublingAlgorithm()
		alg.Generation.Mapping = model.LogicalMapping{Policy: model.ScaleTshirt, TaxonomyID: "ghost"}
		_, err := Generate(Request{Algorithm: alg})
		requirePreflight(t, err, ErrCodeTaxonomyNotFound)
	})
}

func requirePreflight(t *testing.T, err error, code PreflightErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.True(t, IsPreflightError(err))

	var pe *PreflightError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, code, pe.Code)
}

func TestGenerate_BulkTaxonomyRefsComposeDisplayName(t *testing.T) {
	alg := doublingAlgorithm()
	alg.Generation.Range = model.IterationRange{Start: 0, End: 0, Step: 1}
	alg.Generation.BulkAssignments.TaxonomyRefs = []model.TaxonomyRef{
		{TaxonomyID: "t-cat", TermID: "tm-spacing"},
	}

	req := Request{
		Algorithm: alg,
		Taxonomies: map[string]*model.Taxonomy{
			"t-cat": {ID: "t-cat", Terms: []model.Term{{ID: "tm-spacing", Name: "Spacing"}}},
		},
		IDGen: NewFixedGenerator("tax-1", "tm-m", "tok-1"),
	}

	result, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Tokens, 1)

	tok := result.Tokens[0]
	require.Len(t, tok.Taxonomies, 2)
	assert.Equal(t, "Spacing Medium", tok.DisplayName)
}

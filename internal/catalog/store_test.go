package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoalcove/scalegen/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestSaveDimension_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	dim := model.Dimension{
		ID:   "density",
		Name: "Density",
		Modes: []model.Mode{
			{ID: "compact", Name: "Compact"},
			{ID: "comfortable", Name: "Comfortable"},
		},
	}
	require.NoError(t, st.SaveDimension(ctx, dim))

	dims, err := st.Dimensions(ctx)
	require.NoError(t, err)
	require.Contains(t, dims, "density")
	assert.Equal(t, dim, dims["density"])
}

func TestSaveDimension_UpsertReplacesModes(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	dim := model.Dimension{
		ID:    "theme",
		Name:  "Theme",
		Modes: []model.Mode{{ID: "light", Name: "Light"}, {ID: "dark", Name: "Dark"}},
	}
	require.NoError(t, st.SaveDimension(ctx, dim))

	dim.Name = "Color theme"
	dim.Modes = []model.Mode{{ID: "dark", Name: "Dark"}, {ID: "dim", Name: "Dim"}}
	require.NoError(t, st.SaveDimension(ctx, dim))

	dims, err := st.Dimensions(ctx)
	require.NoError(t, err)
	got := dims["theme"]
	assert.Equal(t, "Color theme", got.Name)
	assert.Equal(t, []string{"dark", "dim"}, got.ModeIDs())
}

func TestSaveTaxonomy_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tax := model.Taxonomy{
		ID:    "t-sizes",
		Name:  "Sizes",
		Terms: []model.Term{{ID: "tm-s", Name: "Small"}, {ID: "tm-m", Name: "Medium"}},
	}
	require.NoError(t, st.SaveTaxonomy(ctx, tax))

	taxonomies, err := st.Taxonomies(ctx)
	require.NoError(t, err)
	require.Contains(t, taxonomies, "t-sizes")
	assert.Equal(t, tax, *taxonomies["t-sizes"])
}

func TestSaveTaxonomy_PersistsGrownTerms(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tax := model.Taxonomy{
		ID:    "t-sizes",
		Name:  "Sizes",
		Terms: []model.Term{{ID: "tm-m", Name: "Medium"}},
	}
	require.NoError(t, st.SaveTaxonomy(ctx, tax))

	tax.Terms = append(tax.Terms, model.Term{ID: "tm-l", Name: "Large"})
	require.NoError(t, st.SaveTaxonomy(ctx, tax))

	taxonomies, err := st.Taxonomies(ctx)
	require.NoError(t, err)
	require.Len(t, taxonomies["t-sizes"].Terms, 2)
	assert.Equal(t, "Large", taxonomies["t-sizes"].Terms[1].Name)
}

func TestSaveTokens_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tokens := []model.GeneratedToken{
		{
			ID:          "tok-2",
			DisplayName: "Large",
			Value:       "32",
			TokenType:   "dimension",
			Tags:        []string{"spacing"},
			ModeScope:   map[string]string{"density": "compact"},
			Taxonomies:  []model.TaxonomyRef{{TaxonomyID: "t-sizes", TermID: "tm-l"}},
			AlgorithmID: "alg-1",
			Iteration:   1,
		},
		{
			ID:          "tok-1",
			DisplayName: "Medium",
			Value:       "16",
			AlgorithmID: "alg-1",
			Iteration:   0,
		},
	}
	require.NoError(t, st.SaveTokens(ctx, tokens))

	got, err := st.Tokens(ctx, "alg-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by iteration, not insertion.
	assert.Equal(t, "tok-1", got[0].ID)
	assert.Equal(t, "tok-2", got[1].ID)
	assert.Equal(t, []string{"spacing"}, got[1].Tags)
	assert.Equal(t, map[string]string{"density": "compact"}, got[1].ModeScope)
	assert.Equal(t, []model.TaxonomyRef{{TaxonomyID: "t-sizes", TermID: "tm-l"}}, got[1].Taxonomies)
}

func TestSaveTokens_DuplicateIDRejected(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tok := model.GeneratedToken{ID: "tok-1", DisplayName: "Medium", Value: "16", AlgorithmID: "alg-1"}
	require.NoError(t, st.SaveTokens(ctx, []model.GeneratedToken{tok}))

	err := st.SaveTokens(ctx, []model.GeneratedToken{tok})
	require.Error(t, err)
}

func TestTokenIDs(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	ids, err := st.TokenIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, st.SaveTokens(ctx, []model.GeneratedToken{
		{ID: "tok-1", AlgorithmID: "alg-1"},
		{ID: "tok-2", AlgorithmID: "alg-2"},
	}))

	ids, err = st.TokenIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"tok-1": true, "tok-2": true}, ids)
}

func TestTokens_FiltersByAlgorithm(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveTokens(ctx, []model.GeneratedToken{
		{ID: "tok-1", AlgorithmID: "alg-1"},
		{ID: "tok-2", AlgorithmID: "alg-2"},
	}))

	got, err := st.Tokens(ctx, "alg-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tok-1", got[0].ID)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterationRange_Count(t *testing.T) {
	cases := []struct {
		name string
		r    IterationRange
		want int
	}{
		{"single value", IterationRange{Start: 0, End: 0, Step: 1}, 1},
		{"symmetric", IterationRange{Start: -2, End: 2, Step: 1}, 5},
		{"stride two", IterationRange{Start: 0, End: 10, Step: 2}, 6},
		{"stride leaves remainder", IterationRange{Start: 0, End: 5, Step: 2}, 3},
		{"zero step", IterationRange{Start: 0, End: 5, Step: 0}, 0},
		{"end before start", IterationRange{Start: 3, End: 1, Step: 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.r.Count())
			assert.Len(t, tc.r.Values(), tc.want)
		})
	}
}

func TestIterationRange_Values(t *testing.T) {
	assert.Equal(t, []int{-1, 0, 1}, IterationRange{Start: -1, End: 1, Step: 1}.Values())
	assert.Equal(t, []int{0, 2, 4}, IterationRange{Start: 0, End: 5, Step: 2}.Values())
	assert.Nil(t, IterationRange{Start: 1, End: 0, Step: 1}.Values())
}

func TestTaxonomy_Clone(t *testing.T) {
	orig := Taxonomy{
		ID:    "t1",
		Name:  "Sizes",
		Terms: []Term{{ID: "a", Name: "Small"}},
	}

	cp := orig.Clone()
	cp.Terms = append(cp.Terms, Term{ID: "b", Name: "Large"})
	cp.Terms[0].Name = "Tiny"

	assert.Len(t, orig.Terms, 1)
	assert.Equal(t, "Small", orig.Terms[0].Name)
}

func TestDimension_ModeIDs(t *testing.T) {
	d := Dimension{
		ID:    "theme",
		Modes: []Mode{{ID: "light"}, {ID: "dark"}},
	}
	assert.Equal(t, []string{"light", "dark"}, d.ModeIDs())
}

func TestAlgorithm_Lookups(t *testing.T) {
	alg := validAlgorithm()

	f, ok := alg.FormulaByID("f1")
	assert.True(t, ok)
	assert.Equal(t, "size", f.Name)

	_, ok = alg.FormulaByID("missing")
	assert.False(t, ok)

	c, ok := alg.ConditionByID("c1")
	assert.True(t, ok)
	assert.Equal(t, "positive", c.Name)

	_, ok = alg.ConditionByID("missing")
	assert.False(t, ok)
}

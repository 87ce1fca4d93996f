package generate

import (
	"golang.org/x/text/unicode/norm"

	"github.com/shoalcove/scalegen/internal/model"
)

// termIndex maps iteration value to the matched or created term id in
// the destination taxonomy.
type termIndex map[int]string

// resolveTerms matches one term per iteration by exact name in the
// taxonomy, appending newly created terms where no match exists.
//
// Name comparison is NFC-normalized so visually identical names match
// regardless of their Unicode composition. The taxonomy passed in is
// mutated directly; callers hand over either the caller-owned object
// or a private working copy.
func resolveTerms(tax *model.Taxonomy, iterations []int, mapping model.LogicalMapping, idgen IDGenerator) termIndex {
	byName := make(map[string]string, len(tax.Terms))
	for _, term := range tax.Terms {
		byName[norm.NFC.String(term.Name)] = term.ID
	}

	index := make(termIndex, len(iterations))
	for _, it := range iterations {
		name := ScaleName(mapping, it)
		key := norm.NFC.String(name)
		if id, ok := byName[key]; ok {
			index[it] = id
			continue
		}
		term := model.Term{ID: idgen.Generate(), Name: name}
		tax.Terms = append(tax.Terms, term)
		byName[key] = term.ID
		index[it] = term.ID
	}
	return index
}

// newTaxonomy synthesizes a taxonomy pre-seeded with one term per
// iteration name.
func newTaxonomy(name string, iterations []int, mapping model.LogicalMapping, idgen IDGenerator) model.Taxonomy {
	tax := model.Taxonomy{ID: idgen.Generate(), Name: name}
	seen := make(map[string]bool, len(iterations))
	for _, it := range iterations {
		termName := ScaleName(mapping, it)
		key := norm.NFC.String(termName)
		if seen[key] {
			continue
		}
		seen[key] = true
		tax.Terms = append(tax.Terms, model.Term{ID: idgen.Generate(), Name: termName})
	}
	return tax
}

// termName resolves a term id back to its name within a taxonomy set.
func termName(taxonomies map[string]*model.Taxonomy, ref model.TaxonomyRef) (string, bool) {
	tax, ok := taxonomies[ref.TaxonomyID]
	if !ok {
		return "", false
	}
	for _, term := range tax.Terms {
		if term.ID == ref.TermID {
			return term.Name, true
		}
	}
	return "", false
}

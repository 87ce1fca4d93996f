package harness

import (
	"fmt"

	"github.com/shoalcove/scalegen/internal/generate"
)

// Run executes a scenario through the generation pipeline and returns
// the batch result.
//
// Each scenario runs against its own inline catalogs with a fixed id
// sequence, so two runs of the same scenario produce identical output.
func Run(scenario *Scenario) (*generate.Result, error) {
	if len(scenario.IDs) == 0 {
		return nil, fmt.Errorf("scenario %q: ids sequence is required", scenario.Name)
	}

	alg := scenario.BuildAlgorithm()
	dims, taxonomies := scenario.BuildCatalogs()

	existing := make(map[string]bool, len(scenario.ExistingIDs))
	for _, id := range scenario.ExistingIDs {
		existing[id] = true
	}

	req := generate.Request{
		Algorithm:        alg,
		Dimensions:       dims,
		Taxonomies:       taxonomies,
		ExistingTokenIDs: existing,
		ModeSelection:    scenario.Select,
		MutateInPlace:    scenario.MutateInPlace,
		IDGen:            generate.NewFixedGenerator(scenario.IDs...),
	}
	return generate.Generate(req)
}

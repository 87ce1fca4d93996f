// Package harness provides a conformance testing framework for the
// generation pipeline: YAML scenario definitions driven end to end
// through the orchestrator, with golden-file comparison of the
// resulting batch.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shoalcove/scalegen/internal/model"
)

// Scenario defines a generation test scenario. Scenarios bundle an
// inline algorithm, catalogs, and a fixed id sequence so runs are
// fully deterministic and comparable against golden files.
type Scenario struct {
	// Name uniquely identifies this scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Algorithm is the inline algorithm definition under test.
	Algorithm AlgorithmDef `yaml:"algorithm"`

	// Dimensions and Taxonomies are the catalogs the run sees.
	Dimensions []DimensionDef `yaml:"dimensions,omitempty"`
	Taxonomies []TaxonomyDef  `yaml:"taxonomies,omitempty"`

	// Select restricts candidate modes per dimension id.
	Select map[string][]string `yaml:"select,omitempty"`

	// ExistingIDs seeds the collision set.
	ExistingIDs []string `yaml:"existing_ids,omitempty"`

	// IDs is the fixed id sequence handed to the generator. Required
	// so golden files stay stable.
	IDs []string `yaml:"ids"`

	// MutateInPlace grows caller taxonomies instead of working copies.
	MutateInPlace bool `yaml:"mutate_in_place,omitempty"`
}

// AlgorithmDef mirrors model.Algorithm with YAML field names.
type AlgorithmDef struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Variables  []VariableDef  `yaml:"variables,omitempty"`
	Formulas   []FormulaDef   `yaml:"formulas"`
	Conditions []ConditionDef `yaml:"conditions,omitempty"`
	Steps      []StepDef      `yaml:"steps"`
	Generation *GenerationDef `yaml:"generation,omitempty"`
}

// VariableDef mirrors model.Variable.
type VariableDef struct {
	ID         string            `yaml:"id,omitempty"`
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Default    string            `yaml:"default,omitempty"`
	ModeBased  bool              `yaml:"mode_based,omitempty"`
	Dimension  string            `yaml:"dimension,omitempty"`
	ModeValues map[string]string `yaml:"mode_values,omitempty"`
}

// FormulaDef mirrors model.Formula.
type FormulaDef struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name,omitempty"`
	Expression string `yaml:"expression"`
}

// ConditionDef mirrors model.Condition.
type ConditionDef struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name,omitempty"`
	Expression string `yaml:"expression"`
}

// StepDef mirrors model.Step.
type StepDef struct {
	Type string `yaml:"type"`
	Ref  string `yaml:"ref"`
}

// GenerationDef mirrors model.TokenGeneration.
type GenerationDef struct {
	Range struct {
		Start int `yaml:"start"`
		End   int `yaml:"end"`
		Step  int `yaml:"step"`
	} `yaml:"range"`
	Mapping struct {
		Policy         string  `yaml:"policy"`
		Taxonomy       string  `yaml:"taxonomy,omitempty"`
		NewTaxonomy    string  `yaml:"new_taxonomy,omitempty"`
		DefaultLabel   string  `yaml:"default_label,omitempty"`
		ExtraMarker    string  `yaml:"extra_marker,omitempty"`
		IncreasingStep float64 `yaml:"increasing_step,omitempty"`
		DecreasingStep float64 `yaml:"decreasing_step,omitempty"`
	} `yaml:"mapping"`
	Bulk struct {
		TokenType   string   `yaml:"token_type,omitempty"`
		Description string   `yaml:"description,omitempty"`
		Tags        []string `yaml:"tags,omitempty"`
	} `yaml:"bulk,omitempty"`
}

// DimensionDef mirrors model.Dimension.
type DimensionDef struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Modes []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"modes"`
}

// TaxonomyDef mirrors model.Taxonomy.
type TaxonomyDef struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Terms []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"terms,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &s, nil
}

// BuildAlgorithm converts the scenario's inline definition to the
// engine model.
func (s *Scenario) BuildAlgorithm() *model.Algorithm {
	def := s.Algorithm
	alg := &model.Algorithm{
		ID:   def.ID,
		Name: def.Name,
	}
	for _, v := range def.Variables {
		alg.Variables = append(alg.Variables, model.Variable{
			ID:           v.ID,
			Name:         v.Name,
			Type:         model.VarType(v.Type),
			DefaultValue: v.Default,
			ModeBased:    v.ModeBased,
			DimensionID:  v.Dimension,
			ModeValues:   v.ModeValues,
		})
	}
	for _, f := range def.Formulas {
		name := f.Name
		if name == "" {
			name = f.ID
		}
		alg.Formulas = append(alg.Formulas, model.Formula{ID: f.ID, Name: name, Expression: f.Expression})
	}
	for _, c := range def.Conditions {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		alg.Conditions = append(alg.Conditions, model.Condition{ID: c.ID, Name: name, Expression: c.Expression})
	}
	for _, st := range def.Steps {
		alg.Steps = append(alg.Steps, model.Step{Type: model.StepType(st.Type), RefID: st.Ref})
	}
	if def.Generation != nil {
		g := def.Generation
		alg.Generation = &model.TokenGeneration{
			Range: model.IterationRange{Start: g.Range.Start, End: g.Range.End, Step: g.Range.Step},
			Mapping: model.LogicalMapping{
				Policy:          model.ScalePolicy(g.Mapping.Policy),
				TaxonomyID:      g.Mapping.Taxonomy,
				NewTaxonomyName: g.Mapping.NewTaxonomy,
				DefaultLabel:    g.Mapping.DefaultLabel,
				ExtraMarker:     g.Mapping.ExtraMarker,
				IncreasingStep:  g.Mapping.IncreasingStep,
				DecreasingStep:  g.Mapping.DecreasingStep,
			},
			BulkAssignments: model.BulkAssignments{
				TokenType:   g.Bulk.TokenType,
				Description: g.Bulk.Description,
				Tags:        g.Bulk.Tags,
			},
		}
	}
	return alg
}

// BuildCatalogs converts the scenario's catalog definitions.
func (s *Scenario) BuildCatalogs() (map[string]model.Dimension, map[string]*model.Taxonomy) {
	dims := make(map[string]model.Dimension, len(s.Dimensions))
	for _, d := range s.Dimensions {
		dim := model.Dimension{ID: d.ID, Name: d.Name}
		for _, m := range d.Modes {
			dim.Modes = append(dim.Modes, model.Mode{ID: m.ID, Name: m.Name})
		}
		dims[dim.ID] = dim
	}
	taxonomies := make(map[string]*model.Taxonomy, len(s.Taxonomies))
	for _, t := range s.Taxonomies {
		tax := &model.Taxonomy{ID: t.ID, Name: t.Name}
		for _, term := range t.Terms {
			tax.Terms = append(tax.Terms, model.Term{ID: term.ID, Name: term.Name})
		}
		taxonomies[tax.ID] = tax
	}
	return dims, taxonomies
}

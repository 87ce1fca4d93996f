package compiler

import (
	"cuelang.org/go/cue"

	"github.com/shoalcove/scalegen/internal/model"
)

// CompileDimension parses a CUE value into a Dimension with its
// ordered mode set.
func CompileDimension(v cue.Value) (*model.Dimension, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	dim := &model.Dimension{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		dim.Name = labels[len(labels)-1].String()
	}
	if name, err := lookupString(v, "name"); err == nil && name != "" {
		dim.Name = name
	}

	id, err := requireString(v, "id")
	if err != nil {
		return nil, err
	}
	dim.ID = id

	err = eachListItem(v, "modes", func(item cue.Value) error {
		modeID, err := requireString(item, "id")
		if err != nil {
			return err
		}
		name, err := requireString(item, "name")
		if err != nil {
			return err
		}
		dim.Modes = append(dim.Modes, model.Mode{ID: modeID, Name: name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(dim.Modes) == 0 {
		return nil, &CompileError{
			Field:   "modes",
			Message: "at least one mode is required",
			Pos:     v.Pos(),
		}
	}

	return dim, nil
}

// CompileTaxonomy parses a CUE value into a Taxonomy. An empty term
// list is valid; generation appends terms as needed.
func CompileTaxonomy(v cue.Value) (*model.Taxonomy, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tax := &model.Taxonomy{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		tax.Name = labels[len(labels)-1].String()
	}
	if name, err := lookupString(v, "name"); err == nil && name != "" {
		tax.Name = name
	}

	id, err := requireString(v, "id")
	if err != nil {
		return nil, err
	}
	tax.ID = id

	err = eachListItem(v, "terms", func(item cue.Value) error {
		termID, err := requireString(item, "id")
		if err != nil {
			return err
		}
		name, err := requireString(item, "name")
		if err != nil {
			return err
		}
		tax.Terms = append(tax.Terms, model.Term{ID: termID, Name: name})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tax, nil
}

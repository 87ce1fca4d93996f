// Package compiler turns CUE definition values into engine model
// types. Uses the CUE SDK's Go API directly (not a CLI subprocess).
package compiler

import (
	"cuelang.org/go/cue"

	"github.com/shoalcove/scalegen/internal/model"
)

// CompileAlgorithm parses a CUE value into an Algorithm.
//
// The CUE value should be the algorithm struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`algorithm: spacing: { ... }`)
//	alg, err := CompileAlgorithm(v.LookupPath(cue.ParsePath("algorithm.spacing")))
func CompileAlgorithm(v cue.Value) (*model.Algorithm, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	alg := &model.Algorithm{}

	// Name defaults to the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		alg.Name = labels[len(labels)-1].String()
	}
	if name, err := lookupString(v, "name"); err == nil && name != "" {
		alg.Name = name
	}

	id, err := requireString(v, "id")
	if err != nil {
		return nil, err
	}
	alg.ID = id

	if alg.Variables, err = parseVariables(v); err != nil {
		return nil, err
	}
	if alg.Formulas, err = parseFormulas(v); err != nil {
		return nil, err
	}
	if alg.Conditions, err = parseConditions(v); err != nil {
		return nil, err
	}
	if alg.Steps, err = parseSteps(v); err != nil {
		return nil, err
	}

	genVal := v.LookupPath(cue.ParsePath("generation"))
	if genVal.Exists() {
		gen, err := parseGeneration(genVal)
		if err != nil {
			return nil, err
		}
		alg.Generation = gen
	}

	if len(alg.Formulas) == 0 {
		return nil, &CompileError{
			Field:   "formulas",
			Message: "at least one formula is required",
			Pos:     v.Pos(),
		}
	}

	return alg, nil
}

func parseVariables(v cue.Value) ([]model.Variable, error) {
	var vars []model.Variable
	err := eachListItem(v, "variables", func(item cue.Value) error {
		name, err := requireString(item, "name")
		if err != nil {
			return err
		}
		typ, err := requireString(item, "type")
		if err != nil {
			return err
		}
		vr := model.Variable{
			ID:   optString(item, "id"),
			Name: name,
			Type: model.VarType(typ),
		}
		if !model.ValidVarTypes[vr.Type] {
			return &CompileError{
				Field:   "type",
				Message: "invalid variable type " + typ,
				Pos:     item.Pos(),
			}
		}
		vr.DefaultValue = optString(item, "default")
		vr.DimensionID = optString(item, "dimension")
		if mb := item.LookupPath(cue.ParsePath("mode_based")); mb.Exists() {
			b, err := mb.Bool()
			if err != nil {
				return formatCUEError(err)
			}
			vr.ModeBased = b
		}
		mv := item.LookupPath(cue.ParsePath("mode_values"))
		if mv.Exists() {
			iter, err := mv.Fields()
			if err != nil {
				return formatCUEError(err)
			}
			vr.ModeValues = make(map[string]string)
			for iter.Next() {
				s, err := iter.Value().String()
				if err != nil {
					return formatCUEError(err)
				}
				vr.ModeValues[iter.Selector().Unquoted()] = s
			}
		}
		vars = append(vars, vr)
		return nil
	})
	return vars, err
}

func parseFormulas(v cue.Value) ([]model.Formula, error) {
	var formulas []model.Formula
	err := eachListItem(v, "formulas", func(item cue.Value) error {
		id, err := requireString(item, "id")
		if err != nil {
			return err
		}
		exprText, err := requireString(item, "expression")
		if err != nil {
			return err
		}
		f := model.Formula{
			ID:         id,
			Name:       optString(item, "name"),
			Expression: exprText,
			Display:    optString(item, "display"),
		}
		if f.Name == "" {
			f.Name = f.ID
		}
		formulas = append(formulas, f)
		return nil
	})
	return formulas, err
}

func parseConditions(v cue.Value) ([]model.Condition, error) {
	var conditions []model.Condition
	err := eachListItem(v, "conditions", func(item cue.Value) error {
		id, err := requireString(item, "id")
		if err != nil {
			return err
		}
		exprText, err := requireString(item, "expression")
		if err != nil {
			return err
		}
		c := model.Condition{
			ID:         id,
			Name:       optString(item, "name"),
			Expression: exprText,
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		conditions = append(conditions, c)
		return nil
	})
	return conditions, err
}

func parseSteps(v cue.Value) ([]model.Step, error) {
	var steps []model.Step
	err := eachListItem(v, "steps", func(item cue.Value) error {
		typ, err := requireString(item, "type")
		if err != nil {
			return err
		}
		ref, err := requireString(item, "ref")
		if err != nil {
			return err
		}
		switch model.StepType(typ) {
		case model.StepFormula, model.StepCondition:
		default:
			return &CompileError{
				Field:   "steps",
				Message: "invalid step type " + typ,
				Pos:     item.Pos(),
			}
		}
		steps = append(steps, model.Step{Type: model.StepType(typ), RefID: ref})
		return nil
	})
	return steps, err
}

func parseGeneration(v cue.Value) (*model.TokenGeneration, error) {
	gen := &model.TokenGeneration{}

	rangeVal := v.LookupPath(cue.ParsePath("range"))
	if !rangeVal.Exists() {
		return nil, &CompileError{
			Field:   "generation.range",
			Message: "iteration range is required",
			Pos:     v.Pos(),
		}
	}
	var err error
	if gen.Range.Start, err = lookupInt(rangeVal, "start"); err != nil {
		return nil, err
	}
	if gen.Range.End, err = lookupInt(rangeVal, "end"); err != nil {
		return nil, err
	}
	if gen.Range.Step, err = lookupInt(rangeVal, "step"); err != nil {
		return nil, err
	}

	mapVal := v.LookupPath(cue.ParsePath("mapping"))
	if !mapVal.Exists() {
		return nil, &CompileError{
			Field:   "generation.mapping",
			Message: "logical mapping is required",
			Pos:     v.Pos(),
		}
	}
	policy, err := requireString(mapVal, "policy")
	if err != nil {
		return nil, err
	}
	gen.Mapping = model.LogicalMapping{
		Policy:          model.ScalePolicy(policy),
		TaxonomyID:      optString(mapVal, "taxonomy"),
		NewTaxonomyName: optString(mapVal, "new_taxonomy"),
		DefaultLabel:    optString(mapVal, "default_label"),
		ExtraMarker:     optString(mapVal, "extra_marker"),
	}
	if inc := mapVal.LookupPath(cue.ParsePath("increasing_step")); inc.Exists() {
		if gen.Mapping.IncreasingStep, err = inc.Float64(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if dec := mapVal.LookupPath(cue.ParsePath("decreasing_step")); dec.Exists() {
		if gen.Mapping.DecreasingStep, err = dec.Float64(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	bulkVal := v.LookupPath(cue.ParsePath("bulk"))
	if bulkVal.Exists() {
		gen.BulkAssignments.TokenType = optString(bulkVal, "token_type")
		gen.BulkAssignments.Description = optString(bulkVal, "description")
		if tags := bulkVal.LookupPath(cue.ParsePath("tags")); tags.Exists() {
			if err := tags.Decode(&gen.BulkAssignments.Tags); err != nil {
				return nil, formatCUEError(err)
			}
		}
		err := eachListItem(bulkVal, "taxonomies", func(item cue.Value) error {
			taxID, err := requireString(item, "taxonomy")
			if err != nil {
				return err
			}
			termID, err := requireString(item, "term")
			if err != nil {
				return err
			}
			gen.BulkAssignments.TaxonomyRefs = append(gen.BulkAssignments.TaxonomyRefs, model.TaxonomyRef{
				TaxonomyID: taxID,
				TermID:     termID,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return gen, nil
}

// eachListItem iterates a list field if present, calling fn per item.
func eachListItem(v cue.Value, field string, fn func(item cue.Value) error) error {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil
	}
	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func requireString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", nil
	}
	return fieldVal.String()
}

func optString(v cue.Value, field string) string {
	s, _ := lookupString(v, field)
	return s
}

func lookupInt(v cue.Value, field string) (int, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return 0, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	n, err := fieldVal.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

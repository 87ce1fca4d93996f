package model

import (
	"fmt"
	"strings"
)

// ValidationResult contains the structural analysis of an algorithm.
//
// Errors block execution entirely; no evaluation begins while any is
// present. Warnings are advisory (deprecated expression forms) and do
// not block.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validate performs the pre-execution structural pass over an
// algorithm: required fields, identifier validity, and step references
// that must resolve to an existing formula or condition.
//
// Validate is a pure function with no side effects.
func Validate(alg *Algorithm) ValidationResult {
	v := &validator{}

	if alg == nil {
		v.addError("algorithm is required")
		return v.result()
	}
	if alg.ID == "" {
		v.addError("algorithm id is required")
	}
	if alg.Name == "" {
		v.addError("algorithm name is required")
	}

	v.validateVariables(alg)
	v.validateFormulas(alg)
	v.validateConditions(alg)
	v.validateSteps(alg)
	v.validateGeneration(alg)

	return v.result()
}

// validator accumulates errors and warnings during traversal.
type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) result() ValidationResult {
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

func (v *validator) validateVariables(alg *Algorithm) {
	seen := make(map[string]bool, len(alg.Variables))
	for i, vr := range alg.Variables {
		if vr.Name == "" {
			v.addError("variable %d: name is required", i)
			continue
		}
		if !IsIdentifier(vr.Name) {
			v.addError("variable %q: name is not a valid identifier", vr.Name)
		}
		if seen[vr.Name] {
			v.addError("variable %q: duplicate name", vr.Name)
		}
		seen[vr.Name] = true
		if vr.Name == "n" {
			v.addError("variable %q: name shadows the reserved iteration binding", vr.Name)
		}
		if !ValidVarTypes[vr.Type] {
			v.addError("variable %q: invalid type %q", vr.Name, vr.Type)
		}
		if vr.ModeBased && vr.DimensionID == "" {
			v.addError("variable %q: mode-based but no dimension id", vr.Name)
		}
	}
}

func (v *validator) validateFormulas(alg *Algorithm) {
	for i, f := range alg.Formulas {
		if f.ID == "" {
			v.addError("formula %d: id is required", i)
		}
		if f.Name == "" {
			v.addError("formula %s: name is required", describe(f.ID, i))
		}
		if strings.TrimSpace(f.Expression) == "" {
			v.addError("formula %q: expression is required", f.Name)
			continue
		}
		// Caret exponentiation predates the pow() call form and does
		// not survive display round-trips with variable operands.
		if strings.Contains(f.Expression, "^") {
			v.addWarning("formula %q: caret exponentiation is deprecated, prefer pow()", f.Name)
		}
	}
}

func (v *validator) validateConditions(alg *Algorithm) {
	for i, c := range alg.Conditions {
		if c.ID == "" {
			v.addError("condition %d: id is required", i)
		}
		if c.Name == "" {
			v.addError("condition %s: name is required", describe(c.ID, i))
		}
		if strings.TrimSpace(c.Expression) == "" {
			v.addError("condition %q: expression is required", c.Name)
		}
	}
}

func (v *validator) validateSteps(alg *Algorithm) {
	for i, s := range alg.Steps {
		switch s.Type {
		case StepFormula:
			if _, ok := alg.FormulaByID(s.RefID); !ok {
				v.addError("step %d: formula %q not found", i, s.RefID)
			}
		case StepCondition:
			if _, ok := alg.ConditionByID(s.RefID); !ok {
				v.addError("step %d: condition %q not found", i, s.RefID)
			}
		default:
			v.addError("step %d: invalid type %q", i, s.Type)
		}
	}
}

func (v *validator) validateGeneration(alg *Algorithm) {
	gen := alg.Generation
	if gen == nil {
		return
	}
	if gen.Range.Step <= 0 {
		v.addError("generation: iteration step must be positive, got %d", gen.Range.Step)
	}
	if gen.Range.End < gen.Range.Start {
		v.addError("generation: iteration end %d precedes start %d", gen.Range.End, gen.Range.Start)
	}
	switch gen.Mapping.Policy {
	case ScaleTshirt, ScaleNumeric:
	default:
		v.addError("generation: invalid scale policy %q", gen.Mapping.Policy)
	}
	if gen.Mapping.TaxonomyID == "" && gen.Mapping.NewTaxonomyName == "" {
		v.addError("generation: mapping needs a taxonomy id or a new taxonomy name")
	}
	if gen.Mapping.TaxonomyID != "" && gen.Mapping.NewTaxonomyName != "" {
		v.addError("generation: mapping cannot set both taxonomy id and new taxonomy name")
	}
}

// describe renders an id for error messages, falling back to the
// positional index when the id itself is missing.
func describe(id string, idx int) string {
	if id == "" {
		return fmt.Sprintf("%d", idx)
	}
	return id
}

// IsIdentifier reports whether s is a valid variable identifier:
// a letter or underscore followed by letters, digits, or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

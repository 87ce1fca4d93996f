package eval

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shoalcove/scalegen/internal/expr"
	"github.com/shoalcove/scalegen/internal/model"
)

// ExecutionContext is the outcome of one evaluation pass: the running
// final result plus every named intermediate result in step order.
type ExecutionContext struct {
	Iteration int              `json:"iteration"`
	Final     Value            `json:"-"`
	FinalText string           `json:"final"`
	Results   map[string]Value `json:"-"`
}

// StepError is an evaluation failure carrying the offending step name
// and its raw expression text.
type StepError struct {
	Step       string
	Expression string
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q (%s): %v", e.Step, e.Expression, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ValidationError reports that the pre-execution structural pass found
// hard errors. Warnings never produce a ValidationError.
type ValidationError struct {
	Result model.ValidationResult
}

func (e *ValidationError) Error() string {
	return "algorithm validation failed: " + strings.Join(e.Result.Errors, "; ")
}

// IsValidationError reports whether err is a structural validation
// failure. Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Run executes the algorithm's ordered steps for one iteration value.
//
// Steps run strictly in order. A formula in assignment form binds its
// right-hand side into the scope, visible to later steps; that value
// is also the formula's named result and the running final result. A
// condition records its result under its own name without touching the
// final result. The first failing step aborts this call only.
func Run(alg *model.Algorithm, iteration int, overrides map[string]Value, modeCtx map[string]string) (*ExecutionContext, error) {
	if res := model.Validate(alg); !res.Valid {
		return nil, &ValidationError{Result: res}
	}

	sc, err := InitScope(alg, iteration, overrides, modeCtx)
	if err != nil {
		return nil, err
	}

	ec := &ExecutionContext{
		Iteration: iteration,
		Results:   make(map[string]Value),
	}

	for _, step := range alg.Steps {
		switch step.Type {
		case model.StepFormula:
			f, _ := alg.FormulaByID(step.RefID)
			if err := runFormula(f, sc, ec); err != nil {
				return nil, err
			}
		case model.StepCondition:
			c, _ := alg.ConditionByID(step.RefID)
			v, err := EvalExpr(c.Expression, sc)
			if err != nil {
				return nil, &StepError{Step: c.Name, Expression: c.Expression, Err: err}
			}
			ec.Results[c.Name] = v
		}
	}

	ec.FinalText = Format(ec.Final)
	return ec, nil
}

func runFormula(f model.Formula, sc *Scope, ec *ExecutionContext) error {
	text := f.Expression
	ident, rhs, isAssign := expr.SplitAssignment(text)
	if isAssign {
		text = rhs
	}

	v, err := EvalExpr(text, sc)
	if err != nil {
		return &StepError{Step: f.Name, Expression: f.Expression, Err: err}
	}
	if num, ok := v.(Number); ok && (math.IsNaN(float64(num)) || math.IsInf(float64(num), 0)) {
		return &StepError{Step: f.Name, Expression: f.Expression, Err: fmt.Errorf("non-finite result")}
	}

	if isAssign {
		sc.Bind(ident, v)
	}
	ec.Results[f.Name] = v
	ec.Final = v
	return nil
}

package model

// VarType enumerates the declared types a Variable can carry.
type VarType string

const (
	VarTypeNumber  VarType = "number"
	VarTypeString  VarType = "string"
	VarTypeBoolean VarType = "boolean"
	VarTypeColor   VarType = "color"
)

// ValidVarTypes defines allowed variable types.
var ValidVarTypes = map[VarType]bool{
	VarTypeNumber:  true,
	VarTypeString:  true,
	VarTypeBoolean: true,
	VarTypeColor:   true,
}

// Variable is a named input binding for an algorithm run.
//
// A mode-based variable resolves its value from ModeValues using the
// active mode of its dimension; otherwise DefaultValue applies. Values
// are stored as strings and parsed per Type at scope initialization.
type Variable struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         VarType           `json:"type"`
	DefaultValue string            `json:"default_value"`
	ModeBased    bool              `json:"mode_based,omitempty"`
	DimensionID  string            `json:"dimension_id,omitempty"`
	ModeValues   map[string]string `json:"mode_values,omitempty"` // mode id -> raw value
}

// Formula is a named expression evaluated as one step.
//
// Expression holds the linear notation, either pure ("base * 2") or
// assignment form ("size = base * 2"). Display mirrors the typeset
// notation; it is derived and never authoritative.
type Formula struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Display    string `json:"display,omitempty"`
}

// Condition is a named boolean expression. Conditions never mutate
// scope; their result is recorded for diagnostics only.
type Condition struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// StepType discriminates what a Step references.
type StepType string

const (
	StepFormula   StepType = "formula"
	StepCondition StepType = "condition"
)

// Step is an ordered reference into an algorithm's formulas or
// conditions. Every RefID must resolve within the same algorithm.
type Step struct {
	Type  StepType `json:"type"`
	RefID string   `json:"ref_id"`
}

// ScalePolicy selects the naming rule mapping iteration index to label.
type ScalePolicy string

const (
	ScaleTshirt  ScalePolicy = "tshirt"
	ScaleNumeric ScalePolicy = "numeric"
)

// IterationRange describes the inclusive integer range an algorithm is
// expanded over. Step must be positive.
type IterationRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Step  int `json:"step"`
}

// Count returns the number of iteration values the range produces.
// Returns 0 for an invalid range (step <= 0 or end < start).
func (r IterationRange) Count() int {
	if r.Step <= 0 || r.End < r.Start {
		return 0
	}
	return (r.End-r.Start)/r.Step + 1
}

// Values expands the range into its concrete iteration values.
func (r IterationRange) Values() []int {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vals := make([]int, 0, n)
	for v := r.Start; v <= r.End; v += r.Step {
		vals = append(vals, v)
	}
	return vals
}

// LogicalMapping configures how generated tokens are named and
// classified. Exactly one of TaxonomyID (reuse) or NewTaxonomyName
// (synthesize) must be set.
type LogicalMapping struct {
	Policy          ScalePolicy `json:"policy"`
	TaxonomyID      string      `json:"taxonomy_id,omitempty"`
	NewTaxonomyName string      `json:"new_taxonomy_name,omitempty"`

	// Tshirt policy parameters.
	DefaultLabel string `json:"default_label,omitempty"` // e.g. "Medium"
	ExtraMarker  string `json:"extra_marker,omitempty"`  // e.g. "X"

	// Numeric policy parameters.
	IncreasingStep float64 `json:"increasing_step,omitempty"`
	DecreasingStep float64 `json:"decreasing_step,omitempty"`
}

// BulkAssignments holds fixed fields copied onto every generated token.
type BulkAssignments struct {
	TokenType    string        `json:"token_type,omitempty"`
	Description  string        `json:"description,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	TaxonomyRefs []TaxonomyRef `json:"taxonomy_refs,omitempty"`
}

// TokenGeneration is the optional generation policy on an Algorithm.
type TokenGeneration struct {
	Range           IterationRange  `json:"range"`
	Mapping         LogicalMapping  `json:"mapping"`
	BulkAssignments BulkAssignments `json:"bulk_assignments,omitempty"`
}

// Algorithm bundles variables, formulas, conditions, an ordered step
// sequence, and an optional generation policy. Algorithms are owned by
// the caller; the engine treats them as read-only.
type Algorithm struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Variables  []Variable       `json:"variables"`
	Formulas   []Formula        `json:"formulas"`
	Conditions []Condition      `json:"conditions,omitempty"`
	Steps      []Step           `json:"steps"`
	Generation *TokenGeneration `json:"generation,omitempty"`
}

// FormulaByID returns the formula with the given id, if present.
func (a *Algorithm) FormulaByID(id string) (Formula, bool) {
	for _, f := range a.Formulas {
		if f.ID == id {
			return f, true
		}
	}
	return Formula{}, false
}

// ConditionByID returns the condition with the given id, if present.
func (a *Algorithm) ConditionByID(id string) (Condition, bool) {
	for _, c := range a.Conditions {
		if c.ID == id {
			return c, true
		}
	}
	return Condition{}, false
}

// Mode is one discrete state of a dimension (e.g. "mobile").
type Mode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dimension is a named axis of variation owning an ordered mode set.
// Read-only to the engine.
type Dimension struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Modes []Mode `json:"modes"`
}

// ModeIDs returns the dimension's mode ids in declaration order.
func (d Dimension) ModeIDs() []string {
	ids := make([]string, len(d.Modes))
	for i, m := range d.Modes {
		ids[i] = m.ID
	}
	return ids
}

// Term is one entry of a taxonomy's controlled vocabulary.
type Term struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Taxonomy is a controlled vocabulary used to classify generated
// tokens and derive display names.
type Taxonomy struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Terms []Term `json:"terms"`
}

// Clone returns a deep copy of the taxonomy. Used when the caller asks
// for term creation on a private working copy.
func (t Taxonomy) Clone() Taxonomy {
	cp := t
	cp.Terms = make([]Term, len(t.Terms))
	copy(cp.Terms, t.Terms)
	return cp
}

// TaxonomyRef binds a token to one term of one taxonomy.
type TaxonomyRef struct {
	TaxonomyID string `json:"taxonomy_id"`
	TermID     string `json:"term_id"`
}

// GeneratedToken is the generation artifact: an identified, valued,
// mode-scoped design primitive classified by taxonomy terms.
type GeneratedToken struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Value       string            `json:"value"`
	TokenType   string            `json:"token_type,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	ModeScope   map[string]string `json:"mode_scope,omitempty"` // dimension id -> mode id
	Taxonomies  []TaxonomyRef     `json:"taxonomies,omitempty"`

	// Generation provenance.
	AlgorithmID string `json:"algorithm_id"`
	Iteration   int    `json:"iteration"`
}

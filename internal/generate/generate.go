// Package generate drives token generation: iteration range × mode
// combinations, one evaluator pass per cell, scale-policy naming,
// taxonomy term matching, and token assembly.
//
// Failures are isolated per cell: an evaluation error or id collision
// drops that cell with a recorded error and the loop continues.
// Partial success is the expected outcome, not an anomaly.
package generate

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/shoalcove/scalegen/internal/eval"
	"github.com/shoalcove/scalegen/internal/model"
	"github.com/shoalcove/scalegen/internal/modes"
)

// Request carries everything one generation call needs. The algorithm
// and catalogs are owned by the caller and never retained; the only
// caller-visible mutation is taxonomy term insertion, and only when
// MutateInPlace is set.
type Request struct {
	Algorithm *model.Algorithm

	// Dimensions indexes the caller's dimension catalog by id.
	Dimensions map[string]model.Dimension

	// Taxonomies indexes the caller's taxonomy catalog by id. When
	// MutateInPlace is set, term creation lands on these objects;
	// otherwise a private working copy is grown.
	Taxonomies map[string]*model.Taxonomy

	// ExistingTokenIDs is the caller-supplied collision set. Never
	// mutated.
	ExistingTokenIDs map[string]bool

	// ModeSelection optionally restricts candidate modes per
	// dimension id. Missing entries mean all of that dimension's
	// modes.
	ModeSelection map[string][]string

	// Overrides are merged into every evaluation scope.
	Overrides map[string]eval.Value

	// MutateInPlace grows the caller's taxonomy object instead of a
	// working copy. The caller must treat that object as an
	// exclusive-write borrow for the duration of the call.
	MutateInPlace bool

	// MaxCombinations bounds the mode product; 0 means the package
	// default.
	MaxCombinations int

	// IDGen supplies token and term ids; nil means UUIDv7.
	IDGen IDGenerator
}

// Result is the outcome of one generation call: the tokens that
// succeeded, a parallel list of per-cell error strings, any brand-new
// taxonomies, and the grown taxonomy when an existing one was mutated
// in place or on a working copy.
type Result struct {
	Tokens          []model.GeneratedToken `json:"tokens"`
	Errors          []string               `json:"errors,omitempty"`
	NewTaxonomies   []model.Taxonomy       `json:"new_taxonomies,omitempty"`
	UpdatedTaxonomy *model.Taxonomy        `json:"updated_taxonomy,omitempty"`
}

// Generate expands the algorithm into a batch of tokens.
//
// Preflight failures (structural validation, missing formulas, no
// taxonomy target, an oversized mode product) abort the whole call.
// Everything after preflight is per-cell: whatever subset succeeds is
// returned alongside the error list.
func Generate(req Request) (*Result, error) {
	alg := req.Algorithm
	idgen := req.IDGen
	if idgen == nil {
		idgen = UUIDv7Generator{}
	}

	if res := model.Validate(alg); !res.Valid {
		return nil, NewPreflightError(ErrCodeInvalidAlgorithm, "%s", strings.Join(res.Errors, "; "))
	}
	if len(alg.Formulas) == 0 {
		return nil, NewPreflightError(ErrCodeNoFormulas, "algorithm %q has no formulas", alg.Name)
	}
	gen := alg.Generation
	if gen == nil {
		return nil, NewPreflightError(ErrCodeNoGeneration, "algorithm %q has no token generation config", alg.Name)
	}
	mapping := gen.Mapping
	if mapping.TaxonomyID == "" && mapping.NewTaxonomyName == "" {
		return nil, NewPreflightError(ErrCodeNoTaxonomyTarget, "logical mapping names no taxonomy id and no new taxonomy name")
	}

	iterations := gen.Range.Values()
	result := &Result{}

	// Resolve the destination taxonomy: reuse by id, or synthesize a
	// new one pre-seeded with one term per iteration name.
	var working *model.Taxonomy
	if mapping.TaxonomyID != "" {
		existing, ok := req.Taxonomies[mapping.TaxonomyID]
		if !ok {
			return nil, NewPreflightError(ErrCodeTaxonomyNotFound, "taxonomy %q not found", mapping.TaxonomyID)
		}
		if req.MutateInPlace {
			working = existing
		} else {
			cp := existing.Clone()
			working = &cp
		}
	} else {
		tax := newTaxonomy(mapping.NewTaxonomyName, iterations, mapping, idgen)
		working = &tax
	}

	before := len(working.Terms)
	terms := resolveTerms(working, iterations, mapping, idgen)

	if mapping.TaxonomyID == "" {
		result.NewTaxonomies = append(result.NewTaxonomies, *working)
	} else if len(working.Terms) > before {
		// The caller decides whether to persist the grown taxonomy,
		// whether it is their own object or our working copy.
		result.UpdatedTaxonomy = working
	}

	// Name lookups for display-name assembly cover the caller's
	// catalogs plus the working taxonomy.
	names := make(map[string]*model.Taxonomy, len(req.Taxonomies)+1)
	for id, tax := range req.Taxonomies {
		names[id] = tax
	}
	names[working.ID] = working

	contexts, err := modes.Expand(alg.Variables, req.Dimensions, req.ModeSelection, req.MaxCombinations)
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		result.Errors = append(result.Errors, "a referenced dimension has no candidate modes; nothing to generate")
		return result, nil
	}

	taken := make(map[string]bool, len(req.ExistingTokenIDs))
	for id := range req.ExistingTokenIDs {
		taken[id] = true
	}

	for _, iteration := range iterations {
		termID, hasTerm := terms[iteration]
		for _, ctx := range contexts {
			token, cellErr := generateCell(cellInput{
				alg:       alg,
				iteration: iteration,
				ctx:       ctx,
				termID:    termID,
				hasTerm:   hasTerm,
				working:   working,
				names:     names,
				taken:     taken,
				req:       req,
				idgen:     idgen,
			})
			if cellErr != nil {
				result.Errors = append(result.Errors, cellErr.Error())
				continue
			}
			taken[token.ID] = true
			result.Tokens = append(result.Tokens, token)
		}
	}

	return result, nil
}

// cellInput bundles the per-cell state for one (iteration, mode
// combination) pair.
type cellInput struct {
	alg       *model.Algorithm
	iteration int
	ctx       modes.Context
	termID    string
	hasTerm   bool
	working   *model.Taxonomy
	names     map[string]*model.Taxonomy
	taken     map[string]bool
	req       Request
	idgen     IDGenerator
}

func generateCell(in cellInput) (model.GeneratedToken, error) {
	var zero model.GeneratedToken
	gen := in.alg.Generation
	mapping := gen.Mapping

	ec, err := eval.Run(in.alg, in.iteration, in.req.Overrides, in.ctx)
	if err != nil {
		return zero, fmt.Errorf("iteration %d: %w", in.iteration, err)
	}

	id := in.idgen.Generate()
	if in.taken[id] {
		return zero, fmt.Errorf("iteration %d: token id %q already exists", in.iteration, id)
	}

	token := model.GeneratedToken{
		ID:          id,
		Value:       eval.Format(ec.Final),
		TokenType:   gen.BulkAssignments.TokenType,
		Description: gen.BulkAssignments.Description,
		AlgorithmID: in.alg.ID,
		Iteration:   in.iteration,
	}
	if len(gen.BulkAssignments.Tags) > 0 {
		token.Tags = append([]string(nil), gen.BulkAssignments.Tags...)
	}
	if len(in.ctx) > 0 {
		token.ModeScope = make(map[string]string, len(in.ctx))
		for dimID, modeID := range in.ctx {
			token.ModeScope[dimID] = modeID
		}
	}

	// Fixed taxonomy refs first, then the logical-mapping term for
	// this iteration unless that taxonomy is already referenced.
	token.Taxonomies = append(token.Taxonomies, gen.BulkAssignments.TaxonomyRefs...)
	if in.hasTerm && !referencesTaxonomy(token.Taxonomies, in.working.ID) {
		token.Taxonomies = append(token.Taxonomies, model.TaxonomyRef{
			TaxonomyID: in.working.ID,
			TermID:     in.termID,
		})
	}

	token.DisplayName = displayName(token.Taxonomies, in.names, mapping, in.iteration)
	return token, nil
}

func referencesTaxonomy(refs []model.TaxonomyRef, taxonomyID string) bool {
	for _, ref := range refs {
		if ref.TaxonomyID == taxonomyID {
			return true
		}
	}
	return false
}

// displayName concatenates all resolved term names, falling back to
// the scale-policy-derived name when no term resolves.
func displayName(refs []model.TaxonomyRef, names map[string]*model.Taxonomy, mapping model.LogicalMapping, iteration int) string {
	var parts []string
	for _, ref := range refs {
		if name, ok := termName(names, ref); ok {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return ScaleName(mapping, iteration)
	}
	return norm.NFC.String(strings.Join(parts, " "))
}

// Package modes computes the mode contexts a generation run must
// evaluate: the Cartesian product of candidate modes across every
// dimension referenced by mode-based variables.
package modes

import (
	"fmt"
	"sort"

	"github.com/shoalcove/scalegen/internal/model"
)

// Context is one concrete mode choice per dimension: a total mapping
// from dimension id to one chosen mode id.
type Context map[string]string

// DefaultMaxCombinations bounds the product size when the caller does
// not supply its own ceiling.
const DefaultMaxCombinations = 10000

// TooManyCombinationsError reports that the mode product exceeds the
// configured ceiling.
type TooManyCombinationsError struct {
	Count int
	Limit int
}

func (e *TooManyCombinationsError) Error() string {
	return fmt.Sprintf("mode combination count %d exceeds limit %d", e.Count, e.Limit)
}

// Expand computes every mode context for the algorithm's mode-based
// variables.
//
// For each referenced dimension, in sorted id order, the candidate
// modes are the caller's selection for that dimension if provided,
// else all of the dimension's modes. With no mode-based variables the
// result is a single empty context. A dimension with zero candidate
// modes yields an empty product; callers treat that as nothing to
// generate.
//
// Expand is pure; nothing is memoized across calls. A limit of 0
// means DefaultMaxCombinations.
func Expand(vars []model.Variable, dims map[string]model.Dimension, selection map[string][]string, limit int) ([]Context, error) {
	if limit <= 0 {
		limit = DefaultMaxCombinations
	}

	dimIDs := referencedDimensions(vars)
	if len(dimIDs) == 0 {
		return []Context{{}}, nil
	}

	candidates := make([][]string, 0, len(dimIDs))
	total := 1
	for _, dimID := range dimIDs {
		modeIDs := selection[dimID]
		if len(modeIDs) == 0 {
			dim, ok := dims[dimID]
			if !ok {
				return nil, fmt.Errorf("dimension %q not found", dimID)
			}
			modeIDs = dim.ModeIDs()
		}
		if len(modeIDs) == 0 {
			return nil, nil
		}
		candidates = append(candidates, modeIDs)
		total *= len(modeIDs)
		if total > limit {
			return nil, &TooManyCombinationsError{Count: total, Limit: limit}
		}
	}

	contexts := make([]Context, 0, total)
	indices := make([]int, len(dimIDs))
	for {
		ctx := make(Context, len(dimIDs))
		for i, dimID := range dimIDs {
			ctx[dimID] = candidates[i][indices[i]]
		}
		contexts = append(contexts, ctx)

		// Odometer increment, last dimension fastest.
		i := len(indices) - 1
		for i >= 0 {
			indices[i]++
			if indices[i] < len(candidates[i]) {
				break
			}
			indices[i] = 0
			i--
		}
		if i < 0 {
			return contexts, nil
		}
	}
}

// referencedDimensions collects the distinct dimension ids of
// mode-based variables, sorted for deterministic expansion order.
func referencedDimensions(vars []model.Variable) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, v := range vars {
		if !v.ModeBased || v.DimensionID == "" || seen[v.DimensionID] {
			continue
		}
		seen[v.DimensionID] = true
		ids = append(ids, v.DimensionID)
	}
	sort.Strings(ids)
	return ids
}

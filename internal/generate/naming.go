package generate

import (
	"strconv"
	"strings"

	"github.com/shoalcove/scalegen/internal/model"
)

// ScaleName derives the naming term for one iteration under the
// configured scale policy.
func ScaleName(mapping model.LogicalMapping, iteration int) string {
	switch mapping.Policy {
	case model.ScaleNumeric:
		return numericName(mapping, iteration)
	default:
		return tshirtName(mapping, iteration)
	}
}

// tshirtName maps an iteration index to a t-shirt size label.
//
// Iteration 0 is the default label. Positive k yields "Large" for k=1
// and (k-1) repetitions of the extra-size marker prefixed to "-Large"
// beyond that; negative k is symmetric with "Small".
func tshirtName(mapping model.LogicalMapping, iteration int) string {
	label := mapping.DefaultLabel
	if label == "" {
		label = "Medium"
	}
	marker := mapping.ExtraMarker
	if marker == "" {
		marker = "X"
	}

	switch {
	case iteration == 0:
		return label
	case iteration == 1:
		return "Large"
	case iteration == -1:
		return "Small"
	case iteration > 1:
		return strings.Repeat(marker, iteration-1) + "-Large"
	default:
		return strings.Repeat(marker, -iteration-1) + "-Small"
	}
}

// numericName maps an iteration index to a numeric label by offsetting
// the parsed default. Positive iterations add the increasing step,
// negative ones add the decreasing step (a subtraction).
func numericName(mapping model.LogicalMapping, iteration int) string {
	base, err := strconv.ParseFloat(strings.TrimSpace(mapping.DefaultLabel), 64)
	if err != nil {
		base = 0
	}
	switch {
	case iteration > 0:
		base += float64(iteration) * mapping.IncreasingStep
	case iteration < 0:
		base += float64(iteration) * mapping.DecreasingStep
	}
	return strconv.FormatFloat(base, 'g', -1, 64)
}

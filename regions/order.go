package regions

import (
	"fmt"
	"sort"

	"github.com/tsawler/regiontext/model"
)

// OrderPolicy selects how the final region list of a page is ordered.
type OrderPolicy int

const (
	// OrderDetection keeps the detector's output rank
	OrderDetection OrderPolicy = iota
	// OrderGeometric sorts by point-space top edge, then left edge
	OrderGeometric
)

// DefaultLineTolerance is the vertical distance in points within which two
// region tops count as the same line for OrderGeometric.
const DefaultLineTolerance = 3.0

// String returns a string representation of the order policy
func (p OrderPolicy) String() string {
	switch p {
	case OrderGeometric:
		return "geometric"
	default:
		return "detection"
	}
}

// ParseOrderPolicy parses "detection" or "geometric". The empty string means detection.
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch s {
	case "", "detection":
		return OrderDetection, nil
	case "geometric":
		return OrderGeometric, nil
	}
	return OrderDetection, &model.ConfigurationError{Page: -1, Field: "order", Reason: fmt.Sprintf("unknown order policy %q", s)}
}

// Sort returns the regions ordered by policy. The input is not modified and
// Order fields are never rewritten.
//
// For OrderGeometric, regions are first ordered by top edge; consecutive
// regions whose tops lie within tolerance of the first region of the line
// form one line, which is then ordered left to right.
func Sort(regions []model.Region, policy OrderPolicy, tolerance float64) []model.Region {
	result := make([]model.Region, len(regions))
	copy(result, regions)

	if policy != OrderGeometric || len(result) <= 1 {
		return result
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].PDFBox.Y0 < result[j].PDFBox.Y0
	})

	start := 0
	for i := 1; i <= len(result); i++ {
		if i < len(result) && result[i].PDFBox.Y0-result[start].PDFBox.Y0 <= tolerance {
			continue
		}
		line := result[start:i]
		sort.SliceStable(line, func(a, b int) bool {
			return line[a].PDFBox.X0 < line[b].PDFBox.X0
		})
		start = i
	}
	return result
}

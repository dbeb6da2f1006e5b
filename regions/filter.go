package regions

import (
	"fmt"
	"math"
	"slices"

	"github.com/tsawler/regiontext/model"
)

// DefaultThreshold is the minimum detector confidence kept by the filter
const DefaultThreshold = 0.65

// FilterConfig holds the filter's inputs besides the regions themselves
type FilterConfig struct {
	// Threshold drops regions whose score is below it
	Threshold float64

	// Unwanted labels are dropped regardless of score
	Unwanted []string

	// Taxonomy assigns each surviving label to a bucket
	Taxonomy Taxonomy
}

// Validate reports a *model.ConfigurationError for a missing taxonomy or an
// out-of-range threshold.
func (c FilterConfig) Validate() error {
	if c.Taxonomy.IsZero() {
		return &model.ConfigurationError{Page: -1, Field: "labels", Reason: "no label taxonomy configured"}
	}
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return &model.ConfigurationError{Page: -1, Field: "threshold", Reason: fmt.Sprintf("%v is outside [0, 1]", c.Threshold)}
	}
	return nil
}

// Classify returns the bucket a region falls into, or Unclassified when the
// region is discarded for its score, an unwanted label or an unknown label.
func (c FilterConfig) Classify(r model.Region) Category {
	if r.Score < c.Threshold || math.IsNaN(r.Score) || slices.Contains(c.Unwanted, r.Label) {
		return Unclassified
	}
	return c.Taxonomy.Category(r.Label)
}

// Filter walks regions in detection order and appends each survivor to the
// bucket of its category. Relative order inside each bucket is the input order.
// It returns an error only for invalid configuration, in which case the page
// cannot be classified at all.
func Filter(page model.Page, regions []model.Region, cfg FilterConfig) (model.ClassifiedPage, error) {
	out := model.ClassifiedPage{Page: page}
	if err := cfg.Validate(); err != nil {
		if ce, ok := err.(*model.ConfigurationError); ok {
			ce.Page = page.Index
		}
		return out, err
	}

	for _, r := range regions {
		switch cfg.Classify(r) {
		case Text:
			out.Text = append(out.Text, r)
		case Table:
			out.Table = append(out.Table, r)
		case Math:
			out.Math = append(out.Math, r)
		}
	}
	return out, nil
}

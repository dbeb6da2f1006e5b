package regions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/regiontext/model"
)

// Category is the semantic bucket a label belongs to
type Category int

const (
	// Unclassified labels are discarded by the filter
	Unclassified Category = iota
	// Text covers prose-like regions whose content comes from the text layer
	Text
	// Table regions are handed to a table recognizer
	Table
	// Math regions are handed to a formula recognizer
	Math
)

// String returns a string representation of the category
func (c Category) String() string {
	switch c {
	case Text:
		return "text"
	case Table:
		return "table"
	case Math:
		return "math"
	default:
		return "unclassified"
	}
}

// Taxonomy maps region labels to categories. The zero value has no labels
// and is reported as missing configuration by Filter.
type Taxonomy struct {
	labels map[string]Category
}

// NewTaxonomy builds a taxonomy from the three label sets. Labels are
// matched exactly. A label listed in two categories is a configuration error.
func NewTaxonomy(text, table, math []string) (Taxonomy, error) {
	labels := make(map[string]Category, len(text)+len(table)+len(math))
	add := func(c Category, set []string) error {
		for _, l := range set {
			if prev, ok := labels[l]; ok && prev != c {
				return &model.ConfigurationError{
					Page:   -1,
					Field:  "labels",
					Reason: fmt.Sprintf("label %q is both %s and %s", l, prev, c),
				}
			}
			labels[l] = c
		}
		return nil
	}

	if err := add(Text, text); err != nil {
		return Taxonomy{}, err
	}
	if err := add(Table, table); err != nil {
		return Taxonomy{}, err
	}
	if err := add(Math, math); err != nil {
		return Taxonomy{}, err
	}
	if len(labels) == 0 {
		return Taxonomy{}, &model.ConfigurationError{Page: -1, Field: "labels", Reason: "no label taxonomy configured"}
	}
	return Taxonomy{labels: labels}, nil
}

// Category returns the category for label, Unclassified if unknown
func (t Taxonomy) Category(label string) Category {
	return t.labels[label]
}

// IsZero reports whether the taxonomy carries no labels
func (t Taxonomy) IsZero() bool {
	return len(t.labels) == 0
}

// Labels returns the sorted labels of one category
func (t Taxonomy) Labels(c Category) []string {
	var out []string
	for l, lc := range t.labels {
		if lc == c {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// String lists the taxonomy, one category per line
func (t Taxonomy) String() string {
	var sb strings.Builder
	for _, c := range []Category{Text, Table, Math} {
		fmt.Fprintf(&sb, "%s: %s\n", c, strings.Join(t.Labels(c), ", "))
	}
	return sb.String()
}

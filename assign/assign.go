package assign

import (
	"fmt"
	"strings"

	"github.com/tsawler/regiontext/model"
)

// Epsilon keeps the IoW denominator positive for zero-area tokens
const Epsilon = 1e-9

// DefaultAutoMinRegions is the region count from which Auto uses the R-tree
const DefaultAutoMinRegions = 48

// Strategy selects how candidate regions are looked up for a token
type Strategy int

const (
	// Auto picks Linear for small pages and RTree for dense ones
	Auto Strategy = iota
	// Linear scans every region for every token
	Linear
	// RTree indexes region boxes and searches by token box
	RTree
)

// String returns a string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case Linear:
		return "linear"
	case RTree:
		return "rtree"
	default:
		return "auto"
	}
}

// ParseStrategy parses "auto", "linear" or "rtree"
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "linear":
		return Linear, nil
	case "rtree":
		return RTree, nil
	default:
		return Auto, fmt.Errorf("unknown index strategy %q", s)
	}
}

// Options configures Assign
type Options struct {
	Strategy Strategy

	// AutoMinRegions overrides DefaultAutoMinRegions when positive
	AutoMinRegions int
}

func (o Options) useRTree(regions int) bool {
	switch o.Strategy {
	case Linear:
		return false
	case RTree:
		return true
	}
	threshold := o.AutoMinRegions
	if threshold <= 0 {
		threshold = DefaultAutoMinRegions
	}
	return regions >= threshold
}

// Assignment is the per-region accumulation of token texts
type Assignment struct {
	texts    [][]string
	assigned int
	dropped  int
}

// Len returns the number of regions the assignment covers
func (a Assignment) Len() int {
	return len(a.texts)
}

// Texts returns the token texts assigned to region i, in reading order
func (a Assignment) Texts(i int) []string {
	if i < 0 || i >= len(a.texts) {
		return nil
	}
	return a.texts[i]
}

// Text returns the tokens of region i joined with single spaces
func (a Assignment) Text(i int) string {
	return Join(a.Texts(i))
}

// Assigned returns the number of tokens that found a region
func (a Assignment) Assigned() int {
	return a.assigned
}

// Dropped returns the number of tokens that found no region
func (a Assignment) Dropped() int {
	return a.dropped
}

// Join concatenates token texts with single spaces
func Join(texts []string) string {
	return strings.Join(texts, " ")
}

// IoW returns the fraction of word covered by region, or 0 when they do not overlap.
func IoW(word, region model.Rect) float64 {
	inter := word.Intersection(region)
	if inter.IsEmpty() {
		return 0
	}
	return inter.Area() / (word.Width()*word.Height() + Epsilon)
}

type candidate struct {
	idx  int
	iow  float64
	area float64
}

// better orders candidates by IoW descending, then region area ascending,
// then region index so the outcome never depends on lookup order.
func (c candidate) better(o candidate) bool {
	if c.iow != o.iow {
		return c.iow > o.iow
	}
	if c.area != o.area {
		return c.area < o.area
	}
	return c.idx < o.idx
}

// Assign distributes tokens over regions. Regions must already carry their
// point-space box. Regions with degenerate or non-finite boxes never receive
// tokens; tokens with non-finite boxes are dropped.
func Assign(regions []model.Region, tokens []model.Token, opts Options) Assignment {
	a := Assignment{texts: make([][]string, len(regions))}

	var valid []int
	for i, r := range regions {
		if r.PDFBox.IsValid() {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		a.dropped = len(tokens)
		return a
	}

	var loc locator
	if opts.useRTree(len(valid)) {
		loc = newTreeLocator(regions, valid)
	} else {
		loc = linearLocator(valid)
	}

	for _, tok := range tokens {
		best, ok := bestRegion(regions, tok.Box, loc)
		if !ok {
			a.dropped++
			continue
		}
		a.texts[best] = append(a.texts[best], tok.Text)
		a.assigned++
	}
	return a
}

func bestRegion(regions []model.Region, word model.Rect, loc locator) (int, bool) {
	if !word.IsFinite() {
		return 0, false
	}
	wordArea := (word.X1-word.X0)*(word.Y1-word.Y0) + Epsilon

	var best candidate
	found := false
	loc.each(word, func(i int) {
		box := regions[i].PDFBox
		inter := word.Intersection(box)
		if inter.IsEmpty() {
			return
		}
		c := candidate{
			idx:  i,
			iow:  inter.Width() * inter.Height() / wordArea,
			area: box.Width() * box.Height(),
		}
		if !found || c.better(best) {
			best = c
			found = true
		}
	})
	return best.idx, found
}

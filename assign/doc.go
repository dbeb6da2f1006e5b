// Package assign maps native text-layer tokens onto detected layout regions.
//
// # Scoring
//
// Each token is scored against every region it overlaps by
// Intersection-over-Word-area:
//
//	iow = area(token ∩ region) / (area(token) + 1e-9)
//
// The denominator is the token's own area, not the region's: the question is
// how much of the word lies inside the region. The region with the highest
// IoW wins; equal scores go to the smaller region, so a nested box beats the
// box enclosing it. A token overlapping no region is dropped.
//
// # Usage
//
//	a := assign.Assign(regions, tokens, assign.Options{})
//	for i := range regions {
//	    raw := a.Text(i) // tokens joined by single spaces, reading order kept
//	}
//
// Assign is a pure function of its inputs; regions and tokens are never
// modified and the accumulated text lives in the returned [Assignment].
//
// # Spatial Index
//
// Candidate lookup is a linear scan or an R-tree over region boxes
// ([RTree]); [Auto] switches to the R-tree on pages with many regions. Both
// strategies produce identical assignments.
package assign

package fallback

import (
	"sort"

	"github.com/tsawler/regiontext/model"
)

// EmptyPage holds the regions of one page that received no text, together
// with the page's identifying metadata.
type EmptyPage struct {
	model.Page
	Regions []model.Region `json:"boxes"`
}

// Split partitions regions into those with non-empty text and those without,
// keeping relative order in both.
func Split(regions []model.Region) (filled, empty []model.Region) {
	for _, r := range regions {
		if r.Text == "" {
			empty = append(empty, r)
		} else {
			filled = append(filled, r)
		}
	}
	return filled, empty
}

// Track returns the empty regions of a page. Regions must already carry
// their normalized text.
func Track(page model.Page, regions []model.Region) EmptyPage {
	_, empty := Split(regions)
	return EmptyPage{Page: page, Regions: empty}
}

// PruneNested drops every region that contains another region of the list,
// keeping the innermost boxes. Identical boxes are kept once, the first in
// input order. Point-space boxes are compared.
func PruneNested(regions []model.Region) []model.Region {
	if len(regions) < 2 {
		return regions
	}

	drop := make([]bool, len(regions))
	for i, outer := range regions {
		for j, inner := range regions {
			if i == j || !outer.PDFBox.Contains(inner.PDFBox) {
				continue
			}
			if outer.PDFBox == inner.PDFBox {
				if i > j {
					drop[i] = true
				}
				continue
			}
			drop[i] = true
		}
	}

	out := make([]model.Region, 0, len(regions))
	for i, r := range regions {
		if !drop[i] {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the total number of empty regions across pages
func Count(pages []EmptyPage) int {
	n := 0
	for _, p := range pages {
		n += len(p.Regions)
	}
	return n
}

// SortPages orders empty pages by page index
func SortPages(pages []EmptyPage) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})
}

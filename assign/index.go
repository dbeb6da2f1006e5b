package assign

import (
	"github.com/tidwall/rtree"

	"github.com/tsawler/regiontext/model"
)

// locator yields the indexes of regions that may overlap a box. It may
// over-report; callers compute the exact intersection.
type locator interface {
	each(box model.Rect, fn func(i int))
}

type linearLocator []int

func (l linearLocator) each(_ model.Rect, fn func(i int)) {
	for _, i := range l {
		fn(i)
	}
}

type treeLocator struct {
	tr rtree.RTreeG[int]
}

func newTreeLocator(regions []model.Region, valid []int) *treeLocator {
	t := &treeLocator{}
	for _, i := range valid {
		b := regions[i].PDFBox
		t.tr.Insert([2]float64{b.X0, b.Y0}, [2]float64{b.X1, b.Y1}, i)
	}
	return t
}

func (t *treeLocator) each(box model.Rect, fn func(i int)) {
	t.tr.Search([2]float64{box.X0, box.Y0}, [2]float64{box.X1, box.Y1}, func(_, _ [2]float64, i int) bool {
		fn(i)
		return true
	})
}

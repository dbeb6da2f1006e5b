// Package coords converts layout boxes between detector pixel space and
// document point space.
//
// The mapping is axis-aligned with independent X and Y scale factors taken
// from the page:
//
//	sx = pdf_w / img_w
//	sy = pdf_h / img_h
//
// No rotation or skew is corrected. A [Transform] is built once per page and
// reused for every region on it:
//
//	tr, err := coords.NewTransform(page)
//	if err != nil {
//	    // *model.ConfigurationError: skip the page
//	}
//	regions = tr.Regions(regions)
package coords

import (
	"github.com/tsawler/regiontext/model"
)

// Transform maps boxes of one page between the two coordinate spaces.
type Transform struct {
	sx, sy  float64
	toPoint model.Matrix
	toPixel model.Matrix
}

// NewTransform computes the page's scale factors. It fails with a
// *model.ConfigurationError when either dimension pair is zero, negative or
// missing; it never substitutes a default.
func NewTransform(page model.Page) (Transform, error) {
	if err := page.Validate(); err != nil {
		return Transform{}, err
	}

	sx := page.PDFSize.Width / page.ImageSize.Width
	sy := page.PDFSize.Height / page.ImageSize.Height
	toPoint := model.Scale(sx, sy)
	toPixel, err := toPoint.Inverse()
	if err != nil {
		return Transform{}, &model.ConfigurationError{Page: page.Index, Field: "image_size", Reason: err.Error()}
	}

	return Transform{sx: sx, sy: sy, toPoint: toPoint, toPixel: toPixel}, nil
}

// Scale returns the X and Y scale factors (points per pixel)
func (t Transform) Scale() (sx, sy float64) {
	return t.sx, t.sy
}

// ToPoint converts a pixel-space box to point space
func (t Transform) ToPoint(box model.Rect) model.Rect {
	return t.toPoint.TransformRect(box)
}

// ToPixel converts a point-space box back to pixel space
func (t Transform) ToPixel(box model.Rect) model.Rect {
	return t.toPixel.TransformRect(box)
}

// Regions returns copies of regions with PDFBox derived from Box.
// The input slice is not modified.
func (t Transform) Regions(regions []model.Region) []model.Region {
	out := make([]model.Region, len(regions))
	for i, r := range regions {
		r.PDFBox = t.ToPoint(r.Box)
		out[i] = r
	}
	return out
}

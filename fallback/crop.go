package fallback

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/tsawler/regiontext/model"
)

// DefaultMinHeight is the crop height below which crops are upscaled
const DefaultMinHeight = 48

// Cropper cuts region images out of a rendered page.
type Cropper struct {
	// MinHeight upscales shorter crops to this height, keeping aspect ratio.
	// Zero disables upscaling.
	MinHeight int

	// Padding in points added around each region before cropping
	Padding float64
}

// NewCropper returns a Cropper with default settings
func NewCropper() *Cropper {
	return &Cropper{MinHeight: DefaultMinHeight}
}

// Crop returns the part of raster covered by the region's point-space box.
// The raster may be rendered at any resolution: its bounds are taken to span
// the whole page, so the point-to-pixel scale is derived from page.PDFSize.
func (c *Cropper) Crop(raster image.Image, page model.Page, r model.Region) (image.Image, error) {
	if raster == nil {
		return nil, fmt.Errorf("page %d: no raster supplied", page.Index)
	}
	if !page.PDFSize.IsValid() {
		return nil, &model.ConfigurationError{Page: page.Index, Field: "pdf_size", Reason: "cannot scale region to raster"}
	}

	bounds := raster.Bounds()
	sx := float64(bounds.Dx()) / page.PDFSize.Width
	sy := float64(bounds.Dy()) / page.PDFSize.Height

	box := r.PDFBox
	box.X0 -= c.Padding
	box.Y0 -= c.Padding
	box.X1 += c.Padding
	box.Y1 += c.Padding
	if !box.IsValid() {
		return nil, fmt.Errorf("page %d region %d: %w", page.Index, r.Order, box.Validate())
	}
	px := model.Scale(sx, sy).TransformRect(box)

	src := image.Rect(
		int(math.Floor(px.X0))+bounds.Min.X,
		int(math.Floor(px.Y0))+bounds.Min.Y,
		int(math.Ceil(px.X1))+bounds.Min.X,
		int(math.Ceil(px.Y1))+bounds.Min.Y,
	).Intersect(bounds)
	if src.Empty() {
		return nil, fmt.Errorf("page %d region %d: %w: box outside raster", page.Index, r.Order, model.ErrGeometry)
	}

	w, h := src.Dx(), src.Dy()
	if c.MinHeight > 0 && h < c.MinHeight {
		scale := float64(c.MinHeight) / float64(h)
		w = int(math.Round(float64(w) * scale))
		h = c.MinHeight
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), raster, src.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), raster, src, draw.Src, nil)
	}
	return dst, nil
}

// PNG crops the region and encodes it as PNG.
func (c *Cropper) PNG(raster image.Image, page model.Page, r model.Region) ([]byte, error) {
	img, err := c.Crop(raster, page, r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return buf.Bytes(), nil
}

// CropName returns the conventional file stem for a region crop
func CropName(page model.Page, r model.Region) string {
	return fmt.Sprintf("p%d_o%d_%s", page.Index, r.Order, r.Label)
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Size is a width/height pair. It is encoded in JSON as [width, height].
type Size struct {
	Width  float64
	Height float64
}

// IsValid returns true when both dimensions are finite and strictly positive
func (s Size) IsValid() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// MarshalJSON encodes the size as [width, height].
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{s.Width, s.Height})
}

// UnmarshalJSON decodes a [width, height] array. null leaves the zero Size,
// which Page.Validate reports as missing dimensions.
func (s *Size) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*s = Size{}
		return nil
	}
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 2 {
		return fmt.Errorf("size must have 2 values, got %d", len(v))
	}
	s.Width, s.Height = v[0], v[1]
	return nil
}

// Page identifies one document page and carries the two coordinate spaces
// that meet on it: the detector raster (pixels) and the document (points).
type Page struct {
	Index     int    `json:"page_idx"`
	Input     string `json:"input_path,omitempty"`
	ImageSize Size   `json:"image_size"`
	PDFSize   Size   `json:"pdf_size"`
}

// Validate checks that both dimension pairs are usable.
func (p Page) Validate() error {
	if !p.ImageSize.IsValid() {
		return &ConfigurationError{Page: p.Index, Field: "image_size", Reason: fmt.Sprintf("invalid detector dimensions %gx%g", p.ImageSize.Width, p.ImageSize.Height)}
	}
	if !p.PDFSize.IsValid() {
		return &ConfigurationError{Page: p.Index, Field: "pdf_size", Reason: fmt.Sprintf("invalid document dimensions %gx%g", p.PDFSize.Width, p.PDFSize.Height)}
	}
	return nil
}

// ClassifiedPage is a page with its surviving regions split into the three
// semantic buckets. A region appears in at most one bucket.
type ClassifiedPage struct {
	Page
	Text  []Region
	Table []Region
	Math  []Region
}

// Len returns the number of regions kept across all buckets
func (c ClassifiedPage) Len() int {
	return len(c.Text) + len(c.Table) + len(c.Math)
}

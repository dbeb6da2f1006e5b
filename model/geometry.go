package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle given by its two corners.
// Both detector pixel space and document point space use a top-left origin,
// so Y0 is the top edge and Y1 the bottom edge.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect creates a rectangle from corner coordinates
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// RectFromSlice builds a rectangle from a four element [x0, y0, x1, y1] slice.
func RectFromSlice(v []float64) (Rect, error) {
	if len(v) != 4 {
		return Rect{}, fmt.Errorf("box must have 4 coordinates, got %d", len(v))
	}
	return Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Area returns the area of the rectangle, or 0 when it is empty
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width() * r.Height()
}

// IsEmpty returns true if the rectangle has no positive width or height
func (r Rect) IsEmpty() bool {
	return !(r.X1 > r.X0) || !(r.Y1 > r.Y0)
}

// IsFinite reports whether all four coordinates are finite numbers.
func (r Rect) IsFinite() bool {
	for _, v := range [4]float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsValid returns true if the rectangle is finite with x0<x1 and y0<y1
func (r Rect) IsValid() bool {
	return r.IsFinite() && !r.IsEmpty()
}

// Validate returns ErrGeometry wrapped with the offending box when r is not valid.
func (r Rect) Validate() error {
	if !r.IsValid() {
		return fmt.Errorf("%w: %v", ErrGeometry, r)
	}
	return nil
}

// Intersection returns the overlap of two rectangles. The result is empty
// (see IsEmpty) when they do not overlap.
func (r Rect) Intersection(other Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
}

// Contains reports whether other lies entirely inside r
func (r Rect) Contains(other Rect) bool {
	return other.X0 >= r.X0 && other.Y0 >= r.Y0 && other.X1 <= r.X1 && other.Y1 <= r.Y1
}

// String formats the rectangle as [x0 y0 x1 y1]
func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X0, r.Y0, r.X1, r.Y1)
}

// MarshalJSON encodes the rectangle as a [x0, y0, x1, y1] array.
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

// UnmarshalJSON decodes a [x0, y0, x1, y1] array.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	rect, err := RectFromSlice(v)
	if err != nil {
		return err
	}
	*r = rect
	return nil
}

// Matrix represents a 2D affine transformation matrix
type Matrix [6]float64

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformRect maps both corners of r. Only axis-aligned matrices (no
// rotation or skew) keep the result a rectangle, which is all this package uses.
func (m Matrix) TransformRect(r Rect) Rect {
	p0 := m.Transform(Point{X: r.X0, Y: r.Y0})
	p1 := m.Transform(Point{X: r.X1, Y: r.Y1})
	return Rect{X0: p0.X, Y0: p0.Y, X1: p1.X, Y1: p1.Y}
}

// Inverse returns the inverse matrix, or ErrGeometry when m is singular.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return Matrix{}, fmt.Errorf("%w: singular matrix", ErrGeometry)
	}
	return Matrix{
		m[3] / det, -m[1] / det,
		-m[2] / det, m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

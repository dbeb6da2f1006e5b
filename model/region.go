package model

import "encoding/json"

// Region is a layout box reported by the detector.
//
// Its point-space box is written as "pdf_bbox". Decoding also accepts
// "box_point", the name the text layer uses for the same space.
type Region struct {
	// Order is the detection rank, used for reading order and tie-breaking.
	Order int `json:"order"`

	// Box is the region in detector pixel space.
	Box Rect `json:"box"`

	// PDFBox is the region in document point space.
	PDFBox Rect `json:"pdf_bbox"`

	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	ClassID *int    `json:"cls_id,omitempty"`

	// Text is the normalized content. Empty means no text layer content fell inside.
	Text string `json:"text"`
}

// UnmarshalJSON decodes a region, taking PDFBox from "box_point" when
// "pdf_bbox" is absent.
func (r *Region) UnmarshalJSON(data []byte) error {
	type plain Region
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.PDFBox == (Rect{}) {
		var alias struct {
			BoxPoint *Rect `json:"box_point"`
		}
		if err := json.Unmarshal(data, &alias); err != nil {
			return err
		}
		if alias.BoxPoint != nil {
			v.PDFBox = *alias.BoxPoint
		}
	}
	*r = Region(v)
	return nil
}

// Token is one word of the document's native text layer, in point space.
type Token struct {
	Box  Rect   `json:"box_point"`
	Text string `json:"text"`
}

// RawRegion is a region as received from the detection collaborator.
// Pointer fields distinguish a missing value from a zero value.
type RawRegion struct {
	Order   *int      `json:"order,omitempty"`
	Box     []float64 `json:"box_pixel,omitempty"`
	Coord   []float64 `json:"coordinate,omitempty"`
	Label   *string   `json:"label,omitempty"`
	Score   *float64  `json:"score,omitempty"`
	ClassID *int      `json:"cls_id,omitempty"`
}

// Region validates the raw record and converts it. index is the position in
// the detector's output and becomes Order when the record carries none.
func (r RawRegion) Region(page, index int) (Region, error) {
	box := r.Box
	if box == nil {
		box = r.Coord
	}
	if box == nil {
		return Region{}, &DataIntegrityError{Page: page, Kind: "region", Index: index, Field: "box_pixel"}
	}
	rect, err := RectFromSlice(box)
	if err != nil {
		return Region{}, &DataIntegrityError{Page: page, Kind: "region", Index: index, Field: "box_pixel", Err: err}
	}
	if r.Label == nil {
		return Region{}, &DataIntegrityError{Page: page, Kind: "region", Index: index, Field: "label"}
	}
	if r.Score == nil {
		return Region{}, &DataIntegrityError{Page: page, Kind: "region", Index: index, Field: "score"}
	}

	order := index
	if r.Order != nil {
		order = *r.Order
	}
	return Region{
		Order:   order,
		Box:     rect,
		Label:   *r.Label,
		Score:   *r.Score,
		ClassID: r.ClassID,
	}, nil
}

// NewRawRegion builds a complete raw record, mostly useful in tests and adapters.
func NewRawRegion(order int, box Rect, label string, score float64) RawRegion {
	return RawRegion{
		Order: &order,
		Box:   []float64{box.X0, box.Y0, box.X1, box.Y1},
		Label: &label,
		Score: &score,
	}
}

// RawToken is a token as received from the text-layer collaborator.
type RawToken struct {
	Box  []float64 `json:"box_point,omitempty"`
	Text *string   `json:"text,omitempty"`
}

// Token validates the raw record and converts it.
func (t RawToken) Token(page, index int) (Token, error) {
	if t.Box == nil {
		return Token{}, &DataIntegrityError{Page: page, Kind: "token", Index: index, Field: "box_point"}
	}
	rect, err := RectFromSlice(t.Box)
	if err != nil {
		return Token{}, &DataIntegrityError{Page: page, Kind: "token", Index: index, Field: "box_point", Err: err}
	}
	if t.Text == nil {
		return Token{}, &DataIntegrityError{Page: page, Kind: "token", Index: index, Field: "text"}
	}
	return Token{Box: rect, Text: *t.Text}, nil
}

// NewRawToken builds a complete raw token record.
func NewRawToken(box Rect, text string) RawToken {
	return RawToken{
		Box:  []float64{box.X0, box.Y0, box.X1, box.Y1},
		Text: &text,
	}
}

package regiontext

import (
	"encoding/json"
	"fmt"

	"github.com/tsawler/regiontext/fallback"
	"github.com/tsawler/regiontext/model"
)

// PageInput is everything the collaborators supply for one page.
type PageInput struct {
	model.Page
	Regions []model.RawRegion `json:"boxes"`
	Tokens  []model.RawToken  `json:"tokens"`

	// set by DecodePages when the page record itself could not be decoded
	decodeErr error
}

// DecodePages decodes a JSON array of page records. A page that cannot be
// decoded does not fail the call: it is returned with only its index set and
// is skipped, with a warning, when processed. The error is non-nil only when
// data is not a JSON array.
func DecodePages(data []byte) ([]PageInput, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}

	inputs := make([]PageInput, len(records))
	for i, rec := range records {
		if err := json.Unmarshal(rec, &inputs[i]); err != nil {
			index := i
			var id struct {
				Index *int `json:"page_idx"`
			}
			if json.Unmarshal(rec, &id) == nil && id.Index != nil {
				index = *id.Index
			}
			inputs[i] = PageInput{
				Page:      model.Page{Index: index},
				decodeErr: &model.DataIntegrityError{Page: index, Kind: "page", Index: i, Field: "record", Err: err},
			}
		}
	}
	return inputs, nil
}

// PageStatus summarizes how processing of a page went.
type PageStatus int

const (
	// StatusOK means every record of the page was used
	StatusOK PageStatus = iota
	// StatusPartial means some records were dropped, see the warnings
	StatusPartial
	// StatusSkipped means the page could not be processed at all
	StatusSkipped
)

// String returns a string representation of the status
func (s PageStatus) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusSkipped:
		return "skipped"
	default:
		return "ok"
	}
}

// MarshalJSON encodes the status as its string form.
func (s PageStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes "ok", "partial" or "skipped".
func (s *PageStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case "ok":
		*s = StatusOK
	case "partial":
		*s = StatusPartial
	case "skipped":
		*s = StatusSkipped
	default:
		return fmt.Errorf("unknown page status %q", v)
	}
	return nil
}

// PageStats counts what happened to a page's records.
type PageStats struct {
	Regions        int `json:"regions"`
	DroppedRegions int `json:"dropped_regions"`
	Tokens         int `json:"tokens"`
	DroppedTokens  int `json:"dropped_tokens"`
	Assigned       int `json:"assigned"`
	Unassigned     int `json:"unassigned"`
	Empty          int `json:"empty"`
}

// PageResult is the processed form of one page.
type PageResult struct {
	model.Page
	Status PageStatus `json:"status"`

	// Regions are the text regions with their normalized text, possibly
	// empty, in the configured order.
	Regions []model.Region `json:"boxes"`

	// Tables and Math are handed on unchanged for their own recognizers.
	Tables []model.Region `json:"tables,omitempty"`
	Math   []model.Region `json:"math,omitempty"`

	Stats PageStats `json:"stats"`
}

// Result is the output of a run, in page order.
type Result struct {
	Pages []PageResult

	// Empty lists, per page, the text regions that received no text. Pages
	// without empty regions are omitted.
	Empty []fallback.EmptyPage
}

// EmptyCount returns the number of empty regions across all pages
func (r *Result) EmptyCount() int {
	return fallback.Count(r.Empty)
}

// StatusCounts returns how many pages ended in each status
func (r *Result) StatusCounts() map[PageStatus]int {
	counts := make(map[PageStatus]int, 3)
	for _, p := range r.Pages {
		counts[p.Status]++
	}
	return counts
}

type regionKey struct {
	page, order int
}

// MergeFallback writes recognized text back into the result. A filled
// region leaves the empty set; its page's empty count drops accordingly.
// It returns the number of regions updated. Entries that do not match an
// empty region of the result are ignored.
func MergeFallback(res *Result, filled []fallback.Filled) int {
	if res == nil || len(filled) == 0 {
		return 0
	}

	texts := make(map[regionKey]string, len(filled))
	for _, f := range filled {
		if f.Text != "" {
			texts[regionKey{f.Page, f.Order}] = f.Text
		}
	}

	merged := 0
	for pi := range res.Pages {
		page := &res.Pages[pi]
		for ri := range page.Regions {
			r := &page.Regions[ri]
			if r.Text != "" {
				continue
			}
			if text, ok := texts[regionKey{page.Index, r.Order}]; ok {
				r.Text = text
				page.Stats.Empty--
				merged++
			}
		}
	}

	kept := res.Empty[:0]
	for _, ep := range res.Empty {
		regions := ep.Regions[:0]
		for _, r := range ep.Regions {
			if _, ok := texts[regionKey{ep.Index, r.Order}]; !ok {
				regions = append(regions, r)
			}
		}
		ep.Regions = regions
		if len(ep.Regions) > 0 {
			kept = append(kept, ep)
		}
	}
	res.Empty = kept
	return merged
}

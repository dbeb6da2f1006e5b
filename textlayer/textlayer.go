package textlayer

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tsawler/regiontext/model"
)

// Page is one page of a text layer.
type Page struct {
	Index  int              `json:"page_idx"`
	Size   model.Size       `json:"pdf_size"`
	Tokens []model.RawToken `json:"tokens"`
}

// HasText reports whether any token on the page has non-blank text.
func (p Page) HasText() bool {
	for _, t := range p.Tokens {
		if t.Text != nil && strings.TrimSpace(*t.Text) != "" {
			return true
		}
	}
	return false
}

// HasText reports whether any page carries text.
func HasText(pages []Page) bool {
	for _, p := range pages {
		if p.HasText() {
			return true
		}
	}
	return false
}

// ReadJSON decodes a JSON array of pages. Pages are returned sorted by index.
func ReadJSON(r io.Reader) ([]Page, error) {
	var pages []Page
	if err := json.NewDecoder(r).Decode(&pages); err != nil {
		return nil, fmt.Errorf("decode text layer: %w", err)
	}
	sortPages(pages)
	return pages, nil
}

// ByIndex maps page index to page.
func ByIndex(pages []Page) map[int]Page {
	m := make(map[int]Page, len(pages))
	for _, p := range pages {
		m[p.Index] = p
	}
	return m
}

func sortPages(pages []Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})
}

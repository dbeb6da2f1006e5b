package textlayer

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/regiontext/model"
)

// US Letter, used when a page has no resolvable MediaBox
var defaultMediaBox = model.NewRect(0, 0, 612, 792)

// Glyph grouping thresholds, as fractions of the font size
const (
	wordGapRatio  = 0.25
	lineDiffRatio = 0.5
	descentRatio  = 0.2
)

// ReadPDF extracts word tokens from the embedded text layer of the PDF at
// path. Page indices are 0-based. A page whose content cannot be decoded is
// returned with no tokens rather than failing the document.
func ReadPDF(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	pages := make([]Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		mb := mediaBox(p.V)
		page := Page{
			Index: i - 1,
			Size:  model.Size{Width: mb.Width(), Height: mb.Height()},
		}
		glyphs, err := pageGlyphs(p)
		if err == nil {
			page.Tokens = groupWords(glyphs, mb)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// pageGlyphs reads the page content. The pdf package panics on some
// malformed content streams.
func pageGlyphs(p pdf.Page) (glyphs []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page content: %v", r)
		}
	}()
	return p.Content().Text, nil
}

// mediaBox resolves the page MediaBox, following Parent links for
// inherited values.
func mediaBox(v pdf.Value) model.Rect {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			r := model.NewRect(
				box.Index(0).Float64(), box.Index(1).Float64(),
				box.Index(2).Float64(), box.Index(3).Float64(),
			)
			// normalize corner order
			r = model.NewRect(math.Min(r.X0, r.X1), math.Min(r.Y0, r.Y1), math.Max(r.X0, r.X1), math.Max(r.Y0, r.Y1))
			if r.IsValid() {
				return r
			}
		}
		v = v.Key("Parent")
	}
	return defaultMediaBox
}

// word accumulates glyphs in PDF user space (bottom-left origin).
type word struct {
	text     strings.Builder
	x0, x1   float64
	baseline float64
	size     float64
}

func (w *word) empty() bool {
	return w.text.Len() == 0
}

// accepts reports whether g continues the word on the same line.
func (w *word) accepts(g pdf.Text) bool {
	size := math.Max(w.size, g.FontSize)
	if size <= 0 {
		size = 1
	}
	if math.Abs(g.Y-w.baseline) > lineDiffRatio*size {
		return false
	}
	gap := g.X - w.x1
	return gap <= wordGapRatio*size && gap >= -size
}

// token converts the word to a top-left origin token relative to the MediaBox.
func (w *word) token(mb model.Rect) model.RawToken {
	size := w.size
	if size <= 0 {
		size = 1
	}
	rect := model.NewRect(
		w.x0-mb.X0,
		mb.Y1-(w.baseline+size),
		w.x1-mb.X0,
		mb.Y1-(w.baseline-descentRatio*size),
	)
	return model.NewRawToken(rect, w.text.String())
}

// groupWords merges glyph runs into words in content stream order. A word
// ends at whitespace, a baseline change or a horizontal gap.
func groupWords(glyphs []pdf.Text, mb model.Rect) []model.RawToken {
	var tokens []model.RawToken
	cur := &word{}

	flush := func() {
		if !cur.empty() {
			tokens = append(tokens, cur.token(mb))
		}
		cur = &word{}
	}

	for _, g := range glyphs {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		if !cur.empty() && !cur.accepts(g) {
			flush()
		}
		if cur.empty() {
			cur.x0, cur.x1 = g.X, g.X+g.W
			cur.baseline = g.Y
			cur.size = g.FontSize
		} else {
			cur.x1 = math.Max(cur.x1, g.X+g.W)
			cur.size = math.Max(cur.size, g.FontSize)
		}
		cur.text.WriteString(g.S)
	}
	flush()
	return tokens
}

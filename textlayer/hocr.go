package textlayer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/regiontext/model"
)

// ReadHOCR parses hOCR markup. Coordinates are kept in the hOCR's own units;
// the page size comes from the ocr_page bbox, so tokens and size agree.
func ReadHOCR(r io.Reader) ([]Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}

	var pages []Page
	cur := -1
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "ocr_page"):
				p := Page{Index: len(pages)}
				props := titleProps(n)
				if box, ok := props["bbox"]; ok && len(box) == 4 {
					p.Size = model.Size{Width: box[2] - box[0], Height: box[3] - box[1]}
				}
				if no, ok := props["ppageno"]; ok && len(no) == 1 {
					p.Index = int(no[0])
				}
				pages = append(pages, p)
				prev := cur
				cur = len(pages) - 1
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				cur = prev
				return
			case hasClass(n, "ocrx_word") && cur >= 0:
				box, ok := titleProps(n)["bbox"]
				text := strings.TrimSpace(nodeText(n))
				if ok && len(box) == 4 && text != "" {
					rect := model.NewRect(box[0], box[1], box[2], box[3])
					pages[cur].Tokens = append(pages[cur].Tokens, model.NewRawToken(rect, text))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sortPages(pages)
	return pages, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// titleProps parses an hOCR title attribute such as
// "bbox 10 20 30 40; x_wconf 96" into numeric properties.
// Non-numeric properties (image "file.png") are skipped.
func titleProps(n *html.Node) map[string][]float64 {
	props := make(map[string][]float64)
	for _, a := range n.Attr {
		if a.Key != "title" {
			continue
		}
		for _, part := range strings.Split(a.Val, ";") {
			fields := strings.Fields(part)
			if len(fields) < 2 {
				continue
			}
			vals := make([]float64, 0, len(fields)-1)
			for _, f := range fields[1:] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					vals = nil
					break
				}
				vals = append(vals, v)
			}
			if vals != nil {
				props[fields[0]] = vals
			}
		}
	}
	return props
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

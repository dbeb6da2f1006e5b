// Package textlayer reads a document's native text layer into per-page token
// lists in document point space.
//
// Three sources are supported:
//
//   - [ReadJSON] - token dumps produced by an upstream extractor
//   - [ReadHOCR] - hOCR markup, where ocr_page gives the page size and each
//     ocrx_word element one token
//   - [ReadPDF] - the embedded text layer of a PDF, with glyph runs grouped
//     into words and flipped to a top-left origin
//
// All readers return the raw collaborator records ([model.RawToken]) so that
// record validation happens in one place, downstream.
//
// [HasText] reports whether a document carries a usable text layer at all; a
// document without one should go through the fallback recognizer instead.
package textlayer

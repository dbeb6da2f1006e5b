// Package normalize cleans text assembled from a region's tokens into a
// canonical form.
//
// The [Normalizer] applies seven passes in a fixed order, each a pure
// string-to-string function that assumes the previous passes have run:
//
//  1. [Unicode] - NFKC compatibility normalization
//  2. [StripInvisible] - control and zero-width formatting characters
//  3. [ExpandLigatures] - ligatures NFKC leaves intact (Æ, Œ, ...)
//  4. [Punctuation] - curly quotes, dash variants and bullet glyphs
//  5. [Whitespace] - space variants, line endings, blank-line runs, trimming
//  6. [HealHyphenation] - "exam-\nple" becomes "example"
//  7. [FixPunctuationSpacing] - spacing around . ! ? , ; :
//
// Usage:
//
//	n := normalize.New()
//	clean := n.Normalize(raw)
//
// Normalizing already normalized text returns it unchanged. The input may be
// in any script; letter classes are Unicode-aware throughout.
package normalize

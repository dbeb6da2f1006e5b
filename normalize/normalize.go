package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pass is a single normalization step
type Pass func(string) string

// Normalizer runs a fixed sequence of passes. It holds no state besides the
// pass list and is safe for concurrent use.
type Normalizer struct {
	passes []Pass
}

// New returns a Normalizer with the standard seven passes.
func New() *Normalizer {
	return &Normalizer{passes: []Pass{
		Unicode,
		StripInvisible,
		ExpandLigatures,
		Punctuation,
		Whitespace,
		HealHyphenation,
		FixPunctuationSpacing,
	}}
}

// Normalize applies every pass in order.
func (n *Normalizer) Normalize(s string) string {
	for _, p := range n.passes {
		s = p(s)
	}
	return s
}

var std = New()

// Normalize applies the standard passes.
func Normalize(s string) string {
	return std.Normalize(s)
}

// Unicode applies NFKC normalization.
func Unicode(s string) string {
	return norm.NFKC.String(s)
}

// recompose restores NFKC after a pass removed or replaced characters next to
// combining marks.
func recompose(s string) string {
	if norm.NFKC.IsNormalString(s) {
		return s
	}
	return norm.NFKC.String(s)
}

func isInvisible(r rune) bool {
	switch r {
	case '\n', '\t', '\r':
		return false
	case '\u00AD', '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
		return true
	}
	return r < 0x20 || (r >= 0x7F && r <= 0x9F)
}

var invisible = runes.Remove(runes.Predicate(isInvisible))

// StripInvisible removes C0/C1 control characters other than newline, tab and
// carriage return, soft hyphens, zero-width joiners and byte order marks.
func StripInvisible(s string) string {
	out, _, err := transform.String(invisible, s)
	if err != nil {
		return s
	}
	if len(out) == len(s) {
		return out
	}
	return recompose(out)
}

var ligatures = strings.NewReplacer(
	"ﬀ", "ff", "ﬁ", "fi", "ﬂ", "fl", "ﬃ", "ffi", "ﬄ", "ffl",
	"ﬅ", "st", "ﬆ", "st",
	"Ĳ", "IJ", "ĳ", "ij",
	"Œ", "OE", "œ", "oe",
	"Æ", "AE", "æ", "ae",
)

// ExpandLigatures expands typographic ligatures to their letters.
func ExpandLigatures(s string) string {
	out := ligatures.Replace(s)
	if out == s {
		return s
	}
	return recompose(out)
}

var punctuation = strings.NewReplacer(
	// quotes
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"«", `"`, "»", `"`,
	// dashes
	"–", "-", "—", "--", "―", "--", "−", "-",
	"‐", "-", "‑", "-", "‒", "-",
	// bullets
	"•", "-", "◦", "-", "▪", "-", "▫", "-",
	"‣", "-", "⁃", "-", "●", "-", "○", "-",
	"■", "-", "□", "-", "◆", "-", "◇", "-",
)

// Punctuation maps curly quotes to straight quotes, dash variants to "-" or
// "--" and bullet glyphs to "-".
func Punctuation(s string) string {
	return punctuation.Replace(s)
}

var (
	spaceRun   = regexp.MustCompile(` {2,}`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// Whitespace maps every Unicode space to ' ', collapses runs of spaces,
// converts \r\n and \r (and line/paragraph separators) to \n, limits blank
// lines to one and trims the result.
func Whitespace(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\u2028' || r == '\u2029':
			return '\n'
		case r != ' ' && unicode.Is(unicode.Zs, r):
			return ' '
		}
		return r
	}, s)
	s = spaceRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// HealHyphenation joins words split across a line break ("exam-\nple") and
// words split by a hyphen followed by spaces and a lowercase letter
// ("exam- ple"). The hyphen must follow a word character.
func HealHyphenation(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}

	rs := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s))
	changed := false

	for i := 0; i < len(rs); i++ {
		if rs[i] == '-' && i > 0 && isWord(rs[i-1]) {
			j := i + 1
			for j < len(rs) && unicode.IsSpace(rs[j]) {
				j++
			}
			if j > i+1 && j < len(rs) {
				lineBreak := j == i+2 && rs[i+1] == '\n' && isWord(rs[j])
				if lineBreak || unicode.IsLower(rs[j]) {
					i = j - 1
					changed = true
					continue
				}
			}
		}
		sb.WriteRune(rs[i])
	}

	if !changed {
		return s
	}
	return recompose(sb.String())
}

var (
	sentenceGap      = regexp.MustCompile(`([.!?])(\p{Lu})`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.!?,;:])`)
	clauseGap        = regexp.MustCompile(`([,;])([\p{L}\p{N}_])`)
)

// FixPunctuationSpacing inserts a space between sentence punctuation and an
// uppercase letter of any script, removes whitespace before . ! ? , ; : and
// inserts a space after , ; when a word character follows directly.
func FixPunctuationSpacing(s string) string {
	s = sentenceGap.ReplaceAllString(s, "$1 $2")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = clauseGap.ReplaceAllString(s, "$1 $2")
	return s
}

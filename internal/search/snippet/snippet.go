// Package snippet produces the bounded text excerpt shown next to each
// ranked result. The excerpt is display-only and carries no ranking
// weight.
package snippet

// Ellipsis marks a snippet truncated at either end.
const Ellipsis = "..."

// Extractor cuts excerpts out of raw document text around the earliest
// matched query term.
type Extractor struct {
	// MaxLength is the maximum excerpt length in bytes, measured from the
	// window start.
	MaxLength int
	// Radius is how many bytes of leading context are kept before the
	// earliest match.
	Radius int
}

// New returns an Extractor with the given window sizing. Non-positive
// values fall back to the defaults of 200 and 50.
func New(maxLength, radius int) *Extractor {
	if maxLength <= 0 {
		maxLength = 200
	}
	if radius <= 0 {
		radius = 50
	}
	return &Extractor{MaxLength: maxLength, Radius: radius}
}

// Extract returns an excerpt of text around the earliest occurrence of
// any of the given terms, found by case-insensitive substring search. The
// window starts Radius bytes before the match and extends to MaxLength
// bytes, with ellipsis markers on truncated ends. When no term occurs in
// the text the plain prefix of MaxLength bytes is returned.
func (e *Extractor) Extract(text string, terms []string) string {
	offset := e.earliestMatch(text, terms)
	if offset < 0 {
		if len(text) <= e.MaxLength {
			return text
		}
		return text[:e.MaxLength] + Ellipsis
	}

	start := offset - e.Radius
	if start < 0 {
		start = 0
	}
	end := start + e.MaxLength
	if end > len(text) {
		end = len(text)
	}

	out := text[start:end]
	if start > 0 {
		out = Ellipsis + out
	}
	if end < len(text) {
		out = out + Ellipsis
	}
	return out
}

// earliestMatch returns the smallest byte offset at which any term occurs
// in text, or -1 when none is found. The search is a plain
// case-insensitive substring scan, not a positional-index lookup.
func (e *Extractor) earliestMatch(text string, terms []string) int {
	earliest := -1
	for _, term := range terms {
		if term == "" {
			continue
		}
		idx := indexFold(text, term)
		if idx >= 0 && (earliest < 0 || idx < earliest) {
			earliest = idx
		}
	}
	return earliest
}

// indexFold returns the byte offset of the first case-insensitive
// occurrence of term in text, or -1. It scans the original bytes with
// ASCII-only folding, so the returned offset indexes text directly even
// when the surrounding bytes are multibyte runes.
func indexFold(text, term string) int {
	for i := 0; i+len(term) <= len(text); i++ {
		if foldEqualASCII(text[i:i+len(term)], term) {
			return i
		}
	}
	return -1
}

func foldEqualASCII(a, b string) bool {
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

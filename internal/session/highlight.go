package session

import "github.com/nicolagi/linemerge/internal/diff"

// Style is a set of flags describing how to render a line.
type Style uint8

const (
	Changed Style = 1 << iota
	Current
)

func (s Style) Has(flag Style) bool {
	return s&flag != 0
}

// Highlight is a changed line of one of the documents. Spans are only set
// for the lines of the current region that face a replaced line on the
// other side.
type Highlight struct {
	Side  Side
	Line  int
	Style Style
	Spans []diff.Span
}

// Highlights lists the changed lines of both documents, in the order of the
// regions, left lines before right lines within each region.
func (s *Session) Highlights() []Highlight {
	var hh []Highlight
	left, right := s.docs[Left].lines, s.docs[Right].lines
	for i, r := range s.result {
		style := Changed
		var pairs []diff.LineSpans
		if diff.Cursor(i) == s.cursor {
			style |= Current
			pairs = diff.RegionSpans(r, left, right)
		}
		for line := r.LeftStart; line <= r.LeftEnd; line++ {
			h := Highlight{Side: Left, Line: line, Style: style}
			if k := line - r.LeftStart; k < len(pairs) {
				h.Spans = pairs[k].Left
			}
			hh = append(hh, h)
		}
		for line := r.RightStart; line <= r.RightEnd; line++ {
			h := Highlight{Side: Right, Line: line, Style: style}
			if k := line - r.RightStart; k < len(pairs) {
				h.Spans = pairs[k].Right
			}
			hh = append(hh, h)
		}
	}
	return hh
}

// LineStyles returns the style of every line of one document, indexed by
// line number minus one.
func (s *Session) LineStyles(side Side) []Style {
	if !side.valid() {
		return nil
	}
	styles := make([]Style, len(s.docs[side].lines))
	for _, h := range s.Highlights() {
		if h.Side == side && h.Line >= 1 && h.Line <= len(styles) {
			styles[h.Line-1] |= h.Style
		}
	}
	return styles
}

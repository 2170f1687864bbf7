package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Span is a half-open byte range [Start, End) within a line.
type Span struct {
	Start int
	End   int
}

// LineSpans holds the changed spans of a pair of lines facing each other in a
// replaced region. Line numbers are 1-based.
type LineSpans struct {
	LeftLine  int
	RightLine int
	Left      []Span
	Right     []Span
}

// Intraline returns the byte ranges that differ between two versions of a
// line, deleted ones in left and inserted ones in right. Character diffs are
// cleaned up semantically, so that a changed word is reported whole rather
// than as the letters that happen to differ.
func Intraline(left, right string) (leftSpans, rightSpans []Span) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(left, right, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	var l, r int
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			l += n
			r += n
		case diffmatchpatch.DiffDelete:
			leftSpans = appendSpan(leftSpans, l, l+n)
			l += n
		case diffmatchpatch.DiffInsert:
			rightSpans = appendSpan(rightSpans, r, r+n)
			r += n
		}
	}
	return leftSpans, rightSpans
}

func appendSpan(spans []Span, start, end int) []Span {
	if n := len(spans); n > 0 && spans[n-1].End == start {
		spans[n-1].End = end
		return spans
	}
	return append(spans, Span{Start: start, End: end})
}

// RegionSpans pairs the lines of a replaced region in order, the first left
// line with the first right line and so on, and returns the intraline spans
// of each pair. Lines without a counterpart, and regions that are not
// replacements, have no pairs.
func RegionSpans(r Region, left, right []string) []LineSpans {
	if r.Kind != Replace || !r.fits(len(left), len(right)) {
		return nil
	}
	n := r.LeftLen()
	if rl := r.RightLen(); rl < n {
		n = rl
	}
	pairs := make([]LineSpans, 0, n)
	for i := 0; i < n; i++ {
		ls, rs := Intraline(left[r.LeftStart-1+i], right[r.RightStart-1+i])
		pairs = append(pairs, LineSpans{
			LeftLine:  r.LeftStart + i,
			RightLine: r.RightStart + i,
			Left:      ls,
			Right:     rs,
		})
	}
	return pairs
}

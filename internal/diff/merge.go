package diff

import "fmt"

// Direction says which side a merge copies from and which it writes to.
type Direction int

const (
	// ToRight copies the left side of a region over the right side.
	ToRight Direction = iota
	// ToLeft copies the right side of a region over the left side.
	ToLeft
)

func (d Direction) String() string {
	switch d {
	case ToRight:
		return "right"
	case ToLeft:
		return "left"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "right" or "left", the target side of a merge.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "right", ">":
		return ToRight, nil
	case "left", "<":
		return ToLeft, nil
	default:
		return 0, fmt.Errorf("%q: not a merge direction, want right or left", s)
	}
}

// Merge replaces the target side's lines of r with the source side's lines
// of r, returning the updated sequences. If the source range is empty, the
// target range is just deleted. The inputs are not modified.
//
// Every region after r is invalid after a merge (line numbers shift), so the
// caller must Compute again before using any of them. A region that does not
// fit within the sequences, e.g., one from a stale result, is ignored and the
// inputs are returned unchanged.
func Merge(dir Direction, r Region, left, right []string) (newLeft, newRight []string) {
	if !r.fits(len(left), len(right)) {
		return left, right
	}
	switch dir {
	case ToRight:
		return left, splice(right, r.RightStart-1, r.RightEnd, r.LeftLines(left))
	case ToLeft:
		return splice(left, r.LeftStart-1, r.LeftEnd, r.RightLines(right)), right
	default:
		return left, right
	}
}

// splice returns a copy of dst with dst[from:to] replaced by src.
func splice(dst []string, from, to int, src []string) []string {
	out := make([]string, 0, len(dst)-(to-from)+len(src))
	out = append(out, dst[:from]...)
	out = append(out, src...)
	return append(out, dst[to:]...)
}

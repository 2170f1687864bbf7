package diff

import "fmt"

// Kind classifies an operation. Regions are never Equal; Equal only occurs
// for the spans materialized by Ops.
type Kind int

const (
	Equal Kind = iota
	Insert
	Delete
	Replace
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Region is a maximal span where the two sequences diverge. Line numbers are
// 1-based and both ends are inclusive. An empty range has End == Start-1, and
// Start is then the line before which the other side's lines would go: the
// region {2, 1, 2, 3} inserts right lines 2 and 3 between left lines 1 and 2.
type Region struct {
	LeftStart  int
	LeftEnd    int
	RightStart int
	RightEnd   int
	Kind       Kind
}

// LeftLen is the number of lines the region spans on the left.
func (r Region) LeftLen() int {
	return r.LeftEnd - r.LeftStart + 1
}

// RightLen is the number of lines the region spans on the right.
func (r Region) RightLen() int {
	return r.RightEnd - r.RightStart + 1
}

// LeftLines returns the region's lines out of the left sequence.
func (r Region) LeftLines(left []string) []string {
	return left[r.LeftStart-1 : r.LeftEnd]
}

// RightLines returns the region's lines out of the right sequence.
func (r Region) RightLines(right []string) []string {
	return right[r.RightStart-1 : r.RightEnd]
}

// fits reports whether the region's ranges lie within sequences of the given
// lengths.
func (r Region) fits(nleft, nright int) bool {
	return r.LeftStart >= 1 && r.LeftEnd >= r.LeftStart-1 && r.LeftEnd <= nleft &&
		r.RightStart >= 1 && r.RightEnd >= r.RightStart-1 && r.RightEnd <= nright
}

// String renders the region as "kind l1,l2 r1,r2".
func (r Region) String() string {
	return fmt.Sprintf("%v %d,%d %d,%d", r.Kind, r.LeftStart, r.LeftEnd, r.RightStart, r.RightEnd)
}

// Result lists the regions of a comparison by ascending LeftStart (and
// RightStart). Unchanged spans between regions are implicit.
type Result []Region

// Cursor indexes the current region of a Result.
type Cursor int

// NoRegion is the cursor of an empty Result.
const NoRegion Cursor = -1

// Region returns the region the cursor points to, if any.
func (c Cursor) Region(result Result) (Region, bool) {
	if c < 0 || int(c) >= len(result) {
		return Region{}, false
	}
	return result[c], true
}

package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

var regionKinds = map[byte]Kind{
	'r': Replace,
	'd': Delete,
	'i': Insert,
}

// Compute returns the regions where left and right diverge.
//
// The matcher's automatic junk heuristic is turned off: it stops lines that
// occur in more than 1% of a long right sequence from anchoring a match, which
// would make a sequence differ from itself when it has many blank lines.
func Compute(left, right []string) Result {
	m := difflib.NewMatcherWithJunk(left, right, false, nil)
	var result Result
	for _, op := range m.GetOpCodes() {
		kind, ok := regionKinds[op.Tag]
		if !ok {
			continue
		}
		result = append(result, Region{
			LeftStart:  op.I1 + 1,
			LeftEnd:    op.I2,
			RightStart: op.J1 + 1,
			RightEnd:   op.J2,
			Kind:       kind,
		})
	}
	return result
}

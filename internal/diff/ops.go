package diff

// Op is a span of the comparison, either one of the regions or the unchanged
// span between two of them. Unlike regions, ops use 0-based half-open ranges,
// left[L1:L2] and right[R1:R2], so they slice directly.
type Op struct {
	Kind   Kind
	L1, L2 int
	R1, R2 int
}

// Ops materializes the unchanged spans that a Result leaves implicit,
// returning every span of the comparison in order. The lengths of the
// compared sequences are needed to produce the trailing unchanged span.
func Ops(result Result, nleft, nright int) []Op {
	var ops []Op
	var l, r int
	for _, region := range result {
		if l1, r1 := region.LeftStart-1, region.RightStart-1; l < l1 || r < r1 {
			ops = append(ops, Op{Kind: Equal, L1: l, L2: l1, R1: r, R2: r1})
		}
		ops = append(ops, Op{
			Kind: region.Kind,
			L1:   region.LeftStart - 1,
			L2:   region.LeftEnd,
			R1:   region.RightStart - 1,
			R2:   region.RightEnd,
		})
		l, r = region.LeftEnd, region.RightEnd
	}
	if l < nleft || r < nright {
		ops = append(ops, Op{Kind: Equal, L1: l, L2: nleft, R1: r, R2: nright})
	}
	return ops
}

// Replay rebuilds both sequences from the ops. Unchanged spans are taken from
// the opposite side, so the rebuilt sequences equal the originals only if the
// ops say the truth about which spans are unchanged.
func Replay(ops []Op, left, right []string) (newLeft, newRight []string) {
	newLeft, newRight = []string{}, []string{}
	for _, op := range ops {
		if op.Kind == Equal {
			newLeft = append(newLeft, right[op.R1:op.R2]...)
			newRight = append(newRight, left[op.L1:op.L2]...)
			continue
		}
		newLeft = append(newLeft, left[op.L1:op.L2]...)
		newRight = append(newRight, right[op.R1:op.R2]...)
	}
	return newLeft, newRight
}

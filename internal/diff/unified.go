package diff

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const bytesForBinaryFileCheck = 1 << 16

// DefaultContextLines is the number of unchanged lines around each hunk, as
// in diff -u.
const DefaultContextLines = 3

type unifiedOptions struct {
	contextLines int
	leftName     string
	rightName    string
}

// UnifiedOption follows the functional options pattern to pass options to
// Unified.
type UnifiedOption func(*unifiedOptions)

// UnifiedContext sets the number of unchanged lines printed around changes.
func UnifiedContext(lines int) UnifiedOption {
	return func(opts *unifiedOptions) {
		if lines >= 0 {
			opts.contextLines = lines
		}
	}
}

// UnifiedNames makes Unified print the "---" and "+++" header lines with the
// given names, if there are any differences.
func UnifiedNames(left, right string) UnifiedOption {
	return func(opts *unifiedOptions) {
		opts.leftName = left
		opts.rightName = right
	}
}

// UnifiedString wraps Unified to return a string instead of writing it to a
// writer.
func UnifiedString(left, right []string, result Result, options ...UnifiedOption) (string, error) {
	var buf bytes.Buffer
	if err := Unified(&buf, left, right, result, options...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Unified writes a unified diff of left and right, whose regions are result,
// to the passed writer. Its output should be the same as that of GNU diff -u
// for the same regions. Nothing is written if there are no regions.
func Unified(w io.Writer, left, right []string, result Result, options ...UnifiedOption) error {
	opts := unifiedOptions{contextLines: DefaultContextLines}
	for _, opt := range options {
		opt(&opts)
	}
	if len(result) == 0 {
		return nil
	}
	if isLikelyBinary(left) || isLikelyBinary(right) {
		_, err := fmt.Fprintln(w, "Binary files differ")
		return err
	}
	if opts.leftName != "" || opts.rightName != "" {
		if _, err := fmt.Fprintf(w, "--- %s\n+++ %s\n", opts.leftName, opts.rightName); err != nil {
			return err
		}
	}
	return unified(w, prefixedLines(left, right, result), opts.contextLines)
}

// prefixedLines replays the comparison as diff lines, each prefixed by ' ',
// '-' or '+'.
func prefixedLines(left, right []string, result Result) []string {
	var lines []string
	for _, op := range Ops(result, len(left), len(right)) {
		if op.Kind == Equal {
			for _, line := range left[op.L1:op.L2] {
				lines = append(lines, " "+line)
			}
			continue
		}
		for _, line := range left[op.L1:op.L2] {
			lines = append(lines, "-"+line)
		}
		for _, line := range right[op.R1:op.R2] {
			lines = append(lines, "+"+line)
		}
	}
	return lines
}

func unified(w io.Writer, lines []string, contextLines int) error {
	// While processing lines, we're either in a hunk or in common segment. The
	// hunk is nil if we are in a common segment.
	var hunk *hunk

	// When we're not in the middle of a hunk, we keep the most recent common
	// lines in a ring buffer. When starting a new hunk, the common lines will
	// be backfilled into the hunk and the ring buffer will be emptied out.
	common := newRingBuffer(contextLines)

	var leftOffset, rightOffset int
	for _, line := range lines {
		if line[0] == ' ' {
			// A common line. If in the middle of a hunk, we might get to the
			// point where a hunk cannot be extended so we can print it and add
			// the following common lines to the ring buffer rather than the
			// hunk.
			if hunk != nil {
				hunk.appendCommon(line)
				if hunk.isComplete() {
					for _, line := range hunk.trim() {
						common.enqueue(line)
					}
					if err := hunk.printTo(w); err != nil {
						return err
					}
					hunk = nil
				}
			} else {
				common.enqueue(line)
			}
		} else {
			// A diff line. Add to the current hunk, starting a new one first if
			// necessary.
			if hunk == nil {
				hunk = newHunk(leftOffset, rightOffset, common.dequeueAll(), contextLines)
			}
			if line[0] == '-' {
				hunk.appendLeft(line)
			} else {
				hunk.appendRight(line)
			}
		}
		switch line[0] {
		case '-':
			leftOffset++
		case ' ':
			leftOffset++
			rightOffset++
		case '+':
			rightOffset++
		}
	}
	if hunk != nil {
		hunk.trim()
		return hunk.printTo(w)
	}
	return nil
}

// Look at a few thousand bytes and see if any of them is null.
func isLikelyBinary(lines []string) bool {
	count := 0
	for _, line := range lines {
		if strings.Contains(line, "\x00") {
			return true
		}
		count += len(line)
		if count >= bytesForBinaryFileCheck {
			break
		}
	}
	return false
}

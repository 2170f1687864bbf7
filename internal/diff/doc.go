// Package diff compares two sequences of lines and produces the regions
// where they diverge, in the form a two-pane viewer needs: 1-based inclusive
// line ranges on both sides, ordered, non-overlapping, with the unchanged
// spans in between left implicit.
//
// Regions are computed with the block matching algorithm popularized by
// Python's difflib (https://github.com/pmezard/go-difflib): find the longest
// matching block, preferring the earliest one on ties, then recurse on what
// is left on either side of it. The gaps between matching blocks are the
// regions.
//
// Besides computing regions, the package moves a cursor among them and merges
// a region from one side into the other. A merge changes line numbers
// below the merged region, so the result it was computed from must be thrown
// away and computed again; nothing here is incremental.
//
// The unified output is checked against GNU diff (testgen.go builds test
// cases from the two). Like GNU diff with default options, and unlike a
// minimal-edit algorithm, it is not smart about reordered lines.
package diff

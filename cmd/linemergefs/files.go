package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lionkov/go9p/p"
	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/nicolagi/linemerge/internal/p9util"
	"github.com/nicolagi/linemerge/internal/session"
)

type fileKind int

const (
	rootFile fileKind = iota
	leftFile
	rightFile
	ctlFile
	regionsFile
	currentFile
	unifiedFile
)

// The order is that of directory listings.
var children = []struct {
	kind fileKind
	name string
	mode uint32
}{
	{leftFile, "left", 0600},
	{rightFile, "right", 0600},
	{ctlFile, "ctl", 0600},
	{regionsFile, "regions", 0400},
	{currentFile, "current", 0400},
	{unifiedFile, "unified", 0400},
}

func newFileTable() map[fileKind]*p9util.File {
	files := map[fileKind]*p9util.File{
		rootFile: p9util.NewFile("/", 1, p.DMDIR|0700),
	}
	for i, c := range children {
		files[c.kind] = p9util.NewFile(c.name, uint64(i+2), c.mode)
	}
	return files
}

func lookup(name string) (fileKind, bool) {
	for _, c := range children {
		if c.name == name {
			return c.kind, true
		}
	}
	return 0, false
}

func (k fileKind) side() (session.Side, bool) {
	switch k {
	case leftFile:
		return session.Left, true
	case rightFile:
		return session.Right, true
	default:
		return 0, false
	}
}

func (k fileKind) writable() bool {
	return k == leftFile || k == rightFile || k == ctlFile
}

// One line per region, the current one marked with a star.
func formatRegions(s *session.Session) []byte {
	var b bytes.Buffer
	for i, r := range s.Result() {
		mark := ' '
		if diff.Cursor(i) == s.Cursor() {
			mark = '*'
		}
		fmt.Fprintf(&b, "%c %d %v\n", mark, i, r)
	}
	return b.Bytes()
}

// The current region: its header, the left lines prefixed by "<", the
// right lines prefixed by ">", then the changed byte ranges of each pair
// of replaced lines.
func formatCurrent(s *session.Session) []byte {
	r, ok := s.Current()
	if !ok {
		return nil
	}
	left, right := s.Lines(session.Left), s.Lines(session.Right)
	var b bytes.Buffer
	fmt.Fprintf(&b, "%v\n", r)
	for _, line := range r.LeftLines(left) {
		fmt.Fprintf(&b, "< %s\n", line)
	}
	for _, line := range r.RightLines(right) {
		fmt.Fprintf(&b, "> %s\n", line)
	}
	for _, pair := range diff.RegionSpans(r, left, right) {
		fmt.Fprintf(&b, "~ %d %s %d %s\n", pair.LeftLine, formatSpans(pair.Left), pair.RightLine, formatSpans(pair.Right))
	}
	return b.Bytes()
}

func formatSpans(spans []diff.Span) string {
	if len(spans) == 0 {
		return "-"
	}
	parts := make([]string, len(spans))
	for i, span := range spans {
		parts[i] = fmt.Sprintf("%d:%d", span.Start, span.End)
	}
	return strings.Join(parts, ",")
}

func formatUnified(s *session.Session, contextLines int) ([]byte, error) {
	left, right := s.Lines(session.Left), s.Lines(session.Right)
	text, err := diff.UnifiedString(left, right, diff.Compute(left, right),
		diff.UnifiedContext(contextLines),
		diff.UnifiedNames(nameOr(s.Name(session.Left), "left"), nameOr(s.Name(session.Right), "right")))
	return []byte(text), err
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

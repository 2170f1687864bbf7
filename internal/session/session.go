// Package session holds the state of an interactive comparison: the two
// documents, the regions where they differ, and the current region. Hosts
// (the 9P file server, the terminal UI, the Neovim plugin) translate their
// input into the commands of a Session and render its state back.
//
// A Session is not safe for concurrent use.
package session

import (
	"fmt"

	"github.com/nicolagi/linemerge/internal/diff"
	log "github.com/sirupsen/logrus"
)

// Event names the command that changed the session.
type Event string

const (
	EventText    Event = "text"
	EventName    Event = "name"
	EventCompare Event = "compare"
	EventNext    Event = "next"
	EventPrev    Event = "prev"
	EventMerge   Event = "merge"
	EventSeek    Event = "seek"
)

type document struct {
	name  string
	lines []string
}

type Session struct {
	docs [2]document

	result   diff.Result
	cursor   diff.Cursor
	compared bool

	observers []func(Event)
}

type Option func(*Session)

// WithNames sets the names of the two documents, usually file paths or store
// keys.
func WithNames(left, right string) Option {
	return func(s *Session) {
		s.docs[Left].name = left
		s.docs[Right].name = right
	}
}

// WithText sets the initial text of the two documents and compares them.
func WithText(left, right string) Option {
	return func(s *Session) {
		s.docs[Left].lines = diff.SplitLines(left)
		s.docs[Right].lines = diff.SplitLines(right)
		s.compare()
	}
}

func New(opts ...Option) *Session {
	s := &Session{cursor: diff.NoRegion}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Observe registers f to be called after every command with the command's
// event.
func (s *Session) Observe(f func(Event)) {
	s.observers = append(s.observers, f)
}

func (s *Session) notify(e Event) {
	for _, f := range s.observers {
		f(e)
	}
}

// SetText replaces the text of a document. The regions are out of date
// until the next Compare.
func (s *Session) SetText(side Side, text string) error {
	return s.SetLines(side, diff.SplitLines(text))
}

func (s *Session) SetLines(side Side, lines []string) error {
	if !side.valid() {
		return fmt.Errorf("%v: %w", side, ErrUnknownSide)
	}
	s.docs[side].lines = append([]string(nil), lines...)
	s.result = nil
	s.cursor = diff.NoRegion
	s.compared = false
	log.WithFields(log.Fields{
		"side":  side,
		"lines": len(lines),
	}).Debug("Set text")
	s.notify(EventText)
	return nil
}

func (s *Session) SetName(side Side, name string) error {
	if !side.valid() {
		return fmt.Errorf("%v: %w", side, ErrUnknownSide)
	}
	s.docs[side].name = name
	s.notify(EventName)
	return nil
}

// Text returns a document as newline-terminated lines.
func (s *Session) Text(side Side) string {
	if !side.valid() {
		return ""
	}
	return diff.JoinLines(s.docs[side].lines)
}

// Lines returns a copy of a document's lines.
func (s *Session) Lines(side Side) []string {
	if !side.valid() {
		return nil
	}
	return append([]string(nil), s.docs[side].lines...)
}

func (s *Session) Name(side Side) string {
	if !side.valid() {
		return ""
	}
	return s.docs[side].name
}

// Compare recomputes the regions and moves to the first one.
func (s *Session) Compare() {
	s.compare()
	log.WithFields(log.Fields{
		"left":    s.docs[Left].name,
		"right":   s.docs[Right].name,
		"regions": len(s.result),
	}).Debug("Compared")
	s.notify(EventCompare)
}

func (s *Session) compare() {
	s.result = diff.Compute(s.docs[Left].lines, s.docs[Right].lines)
	s.cursor = diff.First(s.result)
	s.compared = true
}

// Compared reports whether the regions reflect the current texts.
func (s *Session) Compared() bool {
	return s.compared
}

// Next moves to the following region and reports whether the cursor moved.
func (s *Session) Next() bool {
	return s.move(EventNext, diff.Next)
}

// Prev moves to the preceding region and reports whether the cursor moved.
func (s *Session) Prev() bool {
	return s.move(EventPrev, diff.Prev)
}

func (s *Session) move(e Event, f func(diff.Cursor, diff.Result) diff.Cursor) bool {
	before := s.cursor
	s.cursor = f(s.cursor, s.result)
	moved := s.cursor != before
	log.WithFields(log.Fields{
		"command": string(e),
		"from":    int(before),
		"to":      int(s.cursor),
	}).Debug("Moved")
	s.notify(e)
	return moved
}

// Seek moves to the region at index c, clamped to the current regions.
func (s *Session) Seek(c diff.Cursor) {
	s.move(EventSeek, func(diff.Cursor, diff.Result) diff.Cursor {
		return diff.Clamp(c, s.result)
	})
}

// Merge copies the current region's lines in the given direction, then
// compares again. The cursor keeps its index, clamped to the new regions,
// which usually lands it on the region following the merged one. Merging
// without a current region does nothing and returns false.
func (s *Session) Merge(dir diff.Direction) bool {
	r, ok := s.cursor.Region(s.result)
	if !ok {
		log.WithField("direction", dir).Debug("Nothing to merge")
		return false
	}
	s.docs[Left].lines, s.docs[Right].lines = diff.Merge(dir, r, s.docs[Left].lines, s.docs[Right].lines)
	s.result = diff.Compute(s.docs[Left].lines, s.docs[Right].lines)
	s.cursor = diff.Clamp(s.cursor, s.result)
	log.WithFields(log.Fields{
		"direction": dir,
		"region":    r.String(),
		"remaining": len(s.result),
	}).Debug("Merged")
	s.notify(EventMerge)
	return true
}

// Result returns a copy of the regions of the last comparison.
func (s *Session) Result() diff.Result {
	return append(diff.Result(nil), s.result...)
}

func (s *Session) Cursor() diff.Cursor {
	return s.cursor
}

func (s *Session) Current() (diff.Region, bool) {
	return s.cursor.Region(s.result)
}

// Focus returns the 1-based lines of each document that should be brought
// into view for the current region. For an empty range it is the line
// next to where the other side's lines would go.
func (s *Session) Focus() (leftLine, rightLine int, ok bool) {
	r, ok := s.Current()
	if !ok {
		return 0, 0, false
	}
	return focusLine(r.LeftStart, len(s.docs[Left].lines)), focusLine(r.RightStart, len(s.docs[Right].lines)), true
}

func focusLine(start, n int) int {
	if start > n {
		start = n
	}
	if start < 1 {
		start = 1
	}
	return start
}

// Status summarizes the session in a few words.
func (s *Session) Status() string {
	switch {
	case !s.compared:
		return "not compared"
	case len(s.result) == 0:
		return "identical"
	case s.cursor == diff.NoRegion:
		return fmt.Sprintf("%d regions", len(s.result))
	default:
		return fmt.Sprintf("region %d/%d", s.cursor+1, len(s.result))
	}
}

// Package nvimhost runs as a Neovim remote plugin: it compares two buffers,
// highlights the regions where they differ and merges regions from one
// buffer into the other.
package nvimhost

import (
	"fmt"
	"sync"

	"github.com/neovim/go-client/nvim"
	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/nicolagi/linemerge/internal/session"
	log "github.com/sirupsen/logrus"
)

// Highlight groups, all defined by stock Neovim.
const (
	groupChanged = "DiffChange"
	groupCurrent = "DiffAdd"
	groupSpan    = "DiffText"
)

// Mark highlights columns [StartCol, EndCol) of a 0-based line. An EndCol of
// -1 extends to the end of the line.
type Mark struct {
	Line     int
	Group    string
	StartCol int
	EndCol   int
}

// Editor is what the host needs from the editor.
type Editor interface {
	Lines(buf nvim.Buffer) ([]string, error)
	SetLines(buf nvim.Buffer, lines []string) error
	// Highlight replaces all marks previously placed in the buffer.
	Highlight(buf nvim.Buffer, marks []Mark) error
	// Show moves the cursor of every window showing the buffer to a 1-based line.
	Show(buf nvim.Buffer, line int) error
	Echo(msg string) error
}

type Host struct {
	mu     sync.Mutex
	editor Editor
	sess   *session.Session
	bufs   [2]nvim.Buffer
	bound  bool
}

func New(editor Editor) *Host {
	return &Host{
		editor: editor,
		sess:   session.New(),
	}
}

var errNotCompared = fmt.Errorf("%s: no buffers compared yet", packagePath)

// Compare loads both buffers into the session and compares them.
func (h *Host) Compare(left, right nvim.Buffer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bufs = [2]nvim.Buffer{left, right}
	h.bound = true
	if err := h.load(); err != nil {
		return err
	}
	h.sess.Compare()
	log.WithFields(log.Fields{
		"left":    left,
		"right":   right,
		"regions": len(h.sess.Result()),
	}).Debug("Compared buffers")
	return h.render()
}

func (h *Host) load() error {
	for _, side := range []session.Side{session.Left, session.Right} {
		lines, err := h.editor.Lines(h.bufs[side])
		if err != nil {
			return errorf("Host.load", "%v buffer %d: %w", side, h.bufs[side], err)
		}
		if err := h.sess.SetLines(side, lines); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) edited() (bool, error) {
	for _, side := range []session.Side{session.Left, session.Right} {
		lines, err := h.editor.Lines(h.bufs[side])
		if err != nil {
			return false, errorf("Host.edited", "%v buffer %d: %w", side, h.bufs[side], err)
		}
		if !equalLines(lines, h.sess.Lines(side)) {
			return true, nil
		}
	}
	return false, nil
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (h *Host) Next() error {
	return h.move(h.sess.Next)
}

func (h *Host) Prev() error {
	return h.move(h.sess.Prev)
}

func (h *Host) move(f func() bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.bound {
		return errNotCompared
	}
	f()
	return h.render()
}

// Merge copies the current region in the given direction ("left", "right",
// "<" or ">") and writes the changed buffer back to the editor. If either
// buffer was edited since the last comparison, nothing is merged: the
// regions are recomputed, keeping the cursor index, and shown instead.
func (h *Host) Merge(direction string) error {
	dir, err := diff.ParseDirection(direction)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.bound {
		return errNotCompared
	}
	// The buffers may have been edited since the last comparison. The
	// highlighted regions are stale then, so recompare and let the user see
	// the current region before merging anything.
	if edited, err := h.edited(); err != nil {
		return err
	} else if edited {
		cursor := h.sess.Cursor()
		if err := h.load(); err != nil {
			return err
		}
		h.sess.Compare()
		h.sess.Seek(cursor)
		if err := h.render(); err != nil {
			return err
		}
		return h.editor.Echo("linemerge: buffers changed, regions recomputed; merge again")
	}
	if !h.sess.Merge(dir) {
		if err := h.render(); err != nil {
			return err
		}
		return h.editor.Echo("linemerge: nothing to merge")
	}
	target := session.Right
	if dir == diff.ToLeft {
		target = session.Left
	}
	if err := h.editor.SetLines(h.bufs[target], h.sess.Lines(target)); err != nil {
		return errorf("Host.Merge", "%v buffer %d: %w", target, h.bufs[target], err)
	}
	return h.render()
}

func (h *Host) render() error {
	var marks [2][]Mark
	for _, hl := range h.sess.Highlights() {
		group := groupChanged
		if hl.Style.Has(session.Current) {
			group = groupCurrent
		}
		line := hl.Line - 1
		marks[hl.Side] = append(marks[hl.Side], Mark{Line: line, Group: group, EndCol: -1})
		for _, span := range hl.Spans {
			marks[hl.Side] = append(marks[hl.Side], Mark{Line: line, Group: groupSpan, StartCol: span.Start, EndCol: span.End})
		}
	}
	for _, side := range []session.Side{session.Left, session.Right} {
		if err := h.editor.Highlight(h.bufs[side], marks[side]); err != nil {
			return errorf("Host.render", "%v buffer %d: %w", side, h.bufs[side], err)
		}
	}
	if left, right, ok := h.sess.Focus(); ok {
		if err := h.editor.Show(h.bufs[session.Left], left); err != nil {
			return err
		}
		if err := h.editor.Show(h.bufs[session.Right], right); err != nil {
			return err
		}
	}
	status := "linemerge: " + h.sess.Status()
	if r, ok := h.sess.Current(); ok {
		status += " (" + r.String() + ")"
	}
	return h.editor.Echo(status)
}

// Package plumbing tells the plumber where the current region is, so that
// an editor listening on the edit port (acme, sam) can show it.
package plumbing

import (
	"fmt"
	"io"
	"path/filepath"

	"9fans.net/go/plumb"
	"github.com/lionkov/go9p/p"
	"github.com/nicolagi/linemerge/internal/session"
	log "github.com/sirupsen/logrus"
)

// Opener opens the port messages are written to.
type Opener func() (io.WriteCloser, error)

// SendPort opens the plumber's send port.
func SendPort() (io.WriteCloser, error) {
	fid, err := plumb.Open("send", p.OWRITE)
	if err != nil {
		return nil, err
	}
	return fid, nil
}

type Plumber struct {
	open Opener
}

func New(open Opener) *Plumber {
	return &Plumber{open: open}
}

// Location plumbs "name:line", which the plumbing rules of most setups
// route to the editor.
func (pl *Plumber) Location(name string, line int) error {
	w, err := pl.open()
	if err != nil {
		return errorf("Plumber.Location", "could not open port: %w", err)
	}
	msg := plumb.Message{
		Src:  "linemerge",
		Dir:  filepath.Dir(name),
		Type: "text",
		Data: []byte(fmt.Sprintf("%s:%d", name, line)),
	}
	if err := msg.Send(w); err != nil {
		_ = w.Close()
		return errorf("Plumber.Location", "could not send %q: %w", msg.Data, err)
	}
	return w.Close()
}

// Follow returns a session observer that plumbs the focus line whenever
// the current region changes. Only documents named by absolute paths can
// be located, the left one is preferred.
func (pl *Plumber) Follow(s *session.Session) func(session.Event) {
	return func(e session.Event) {
		switch e {
		case session.EventCompare, session.EventNext, session.EventPrev, session.EventMerge, session.EventSeek:
		default:
			return
		}
		leftLine, rightLine, ok := s.Focus()
		if !ok {
			return
		}
		name, line := s.Name(session.Left), leftLine
		if !filepath.IsAbs(name) {
			name, line = s.Name(session.Right), rightLine
		}
		if !filepath.IsAbs(name) {
			return
		}
		if err := pl.Location(name, line); err != nil {
			log.WithFields(log.Fields{
				"name": name,
				"line": line,
			}).Warningf("Could not plumb: %v", err)
		}
	}
}

func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/linemerge/internal/plumbing."+typeMethod+": "+format, a...)
}

package main

import (
	"time"

	"github.com/lionkov/go9p/p/srv"
)

// A writer that never clunks its fid loses the document after this long.
const writeLockDuration = 300 * time.Second

const Eexcl = "exclusive use file already open"

type writeLock struct {
	owner   *srv.Fid
	expires time.Time
}

// writeLocks lets at most one fid at a time write each document, so that
// concurrent writers cannot interleave their texts. Guarded by ops.mu.
type writeLocks struct {
	locks [2]writeLock
	now   func() time.Time
}

func newWriteLocks() *writeLocks {
	return &writeLocks{now: time.Now}
}

// acquire returns false if another fid holds a lock that has not expired.
func (w *writeLocks) acquire(i int, owner *srv.Fid) bool {
	now := w.now()
	l := &w.locks[i]
	if l.owner != nil && l.owner != owner && now.Before(l.expires) {
		return false
	}
	l.owner = owner
	l.expires = now.Add(writeLockDuration)
	return true
}

// release frees the lock if owner still holds it.
func (w *writeLocks) release(i int, owner *srv.Fid) {
	if l := &w.locks[i]; l.owner == owner {
		l.owner = nil
		l.expires = time.Time{}
	}
}

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// DiskStore keeps one file per document, named after its key, in a single
// directory.
type DiskStore struct {
	dir string
}

var _ Enumerable = (*DiskStore)(nil)

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Get(k Key) (Value, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.pathFor(k))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%q: %w", k, ErrNotFound)
	}
	return b, err
}

func (s *DiskStore) Put(k Key, v Value) error {
	if err := k.Validate(); err != nil {
		return err
	}
	p := s.pathFor(k)
	pnew := p + ".new"
	err := os.WriteFile(pnew, v, 0600)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err = os.MkdirAll(s.dir, 0700); err != nil {
			return err
		}
		err = os.WriteFile(pnew, v, 0600)
	}
	if err != nil {
		return err
	}
	return syscall.Rename(pnew, p)
}

// Delete succeeds for keys that are not there, like the other stores.
func (s *DiskStore) Delete(k Key) error {
	if err := k.Validate(); err != nil {
		return err
	}
	err := os.Remove(s.pathFor(k))
	if err != nil {
		if perr, ok := err.(*os.PathError); ok {
			if serr, ok := perr.Err.(syscall.Errno); ok && serr == syscall.ENOENT {
				return nil
			}
		}
		return errors.Wrapf(err, "could not delete %v", k)
	}
	return nil
}

func (s *DiskStore) ForEach(cb func(Key) error) error {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var kk []Key
	for _, e := range entries {
		// Leftovers of interrupted puts end in .new.
		if e.IsDir() || strings.HasSuffix(e.Name(), ".new") || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		kk = append(kk, Key(e.Name()))
	}
	for _, k := range kk {
		if err := cb(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *DiskStore) Contains(k Key) (bool, error) {
	if err := k.Validate(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.pathFor(k))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *DiskStore) pathFor(key Key) string {
	return filepath.Join(s.dir, string(key))
}

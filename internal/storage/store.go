package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nicolagi/linemerge/internal/config"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotImplemented = errors.New("not implemented")
	ErrInvalidKey     = errors.New("invalid key")
)

// Key names a stored document. Keys are flat: they may not contain
// slashes and may not start with a dot.
type Key string

func (k Key) Validate() error {
	if k == "" || strings.ContainsRune(string(k), '/') || k[0] == '.' || strings.HasSuffix(string(k), ".new") {
		return fmt.Errorf("%q: %w", k, ErrInvalidKey)
	}
	return nil
}

// Value is the content of a document, usually the lines joined by newlines.
type Value []byte

type Store interface {
	Get(Key) (Value, error)
	Put(Key, Value) error
	Delete(Key) error
}

type Lister interface {
	List() (keys chan string, err error)
}

type Enumerable interface {
	Store
	Contains(Key) (bool, error)
	ForEach(func(Key) error) error
}

// Keys returns the sorted keys of the store, if the store can enumerate
// its keys at all.
func Keys(s Store) ([]Key, error) {
	var keys []Key
	switch s := s.(type) {
	case Enumerable:
		if err := s.ForEach(func(k Key) error {
			keys = append(keys, k)
			return nil
		}); err != nil {
			return nil, err
		}
	case Lister:
		ch, err := s.List()
		if err != nil {
			return nil, err
		}
		for k := range ch {
			keys = append(keys, Key(k))
		}
	default:
		return nil, fmt.Errorf("%T: listing keys: %w", s, ErrNotImplemented)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func NewStore(c *config.C) (s Store, err error) {
	switch c.Storage {
	case "disk":
		if c.DiskStoreDir == "" {
			return nil, errorf("NewStore", "disk storage without disk-store-dir")
		}
		s = NewDiskStore(c.DiskStoreDir)
	case "memory":
		s = &InMemory{}
	case "null":
		s = NullStore{}
	case "s3":
		if s, err = newS3Store(c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%q: %w", c.Storage, ErrNotImplemented)
	}
	if c.Compress {
		s = NewCompressed(s)
	}
	return s, nil
}

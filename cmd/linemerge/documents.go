package main

import (
	"context"
	"os"

	"github.com/nicolagi/linemerge/internal/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// A document is either a local file or a key in the document store.
type document interface {
	name() string
	read() (string, error)
	write(text string) error
}

type fileDocument struct {
	path string
}

func (d fileDocument) name() string {
	return d.path
}

func (d fileDocument) read() (string, error) {
	b, err := os.ReadFile(d.path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(b), nil
}

func (d fileDocument) write(text string) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(d.path); err == nil {
		mode = fi.Mode().Perm()
	}
	return errors.Wrapf(os.WriteFile(d.path, []byte(text), mode), "write %q", d.path)
}

type storeDocument struct {
	store storage.Store
	key   storage.Key
}

func (d storeDocument) name() string {
	return string(d.key)
}

func (d storeDocument) read() (string, error) {
	value, err := d.store.Get(d.key)
	if err != nil {
		return "", errors.Wrapf(err, "get %q", d.key)
	}
	return string(value), nil
}

func (d storeDocument) write(text string) error {
	return errors.Wrapf(d.store.Put(d.key, storage.Value(text)), "put %q", d.key)
}

// newDocuments interprets the two positional arguments as paths, or as
// store keys if store is not nil.
func newDocuments(store storage.Store, left, right string) (l, r document, err error) {
	if store == nil {
		return fileDocument{path: left}, fileDocument{path: right}, nil
	}
	for _, key := range []storage.Key{storage.Key(left), storage.Key(right)} {
		if err := key.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return storeDocument{store: store, key: storage.Key(left)}, storeDocument{store: store, key: storage.Key(right)}, nil
}

// loadPair reads both documents concurrently. If either read fails, the
// first error is returned.
func loadPair(ctx context.Context, left, right document) (l, r string, err error) {
	var texts [2]string
	g, ctx := errgroup.WithContext(ctx)
	for i, d := range []document{left, right} {
		i, d := i, d
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := d.read()
			if err != nil {
				return err
			}
			texts[i] = text
			log.WithFields(log.Fields{
				"document": d.name(),
				"bytes":    len(text),
			}).Debug("Loaded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return texts[0], texts[1], nil
}

package main

import (
	"fmt"
	"io"

	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/nicolagi/linemerge/internal/storage"
	"github.com/pkg/errors"
)

// runDiff writes the unified diff of the two texts and reports whether
// they differ.
func runDiff(w io.Writer, leftName, rightName, left, right string, contextLines int) (bool, error) {
	a, b := diff.SplitLines(left), diff.SplitLines(right)
	result := diff.Compute(a, b)
	if len(result) == 0 {
		return false, nil
	}
	err := diff.Unified(w, a, b, result,
		diff.UnifiedNames(leftName, rightName),
		diff.UnifiedContext(contextLines),
	)
	return true, err
}

func runRegions(w io.Writer, left, right string) error {
	for _, r := range diff.Compute(diff.SplitLines(left), diff.SplitLines(right)) {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}

// runMerge merges the region at the given 0-based index and returns the
// updated target document.
func runMerge(left, right string, dir diff.Direction, index int) (string, error) {
	a, b := diff.SplitLines(left), diff.SplitLines(right)
	result := diff.Compute(a, b)
	r, ok := diff.Cursor(index).Region(result)
	if !ok {
		return "", errorf("runMerge", "region %d out of range, have %d regions", index, len(result))
	}
	a, b = diff.Merge(dir, r, a, b)
	if dir == diff.ToLeft {
		return diff.JoinLines(a), nil
	}
	return diff.JoinLines(b), nil
}

func runList(w io.Writer, store storage.Store) error {
	keys, err := storage.Keys(store)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := fmt.Fprintln(w, key); err != nil {
			return err
		}
	}
	return nil
}

func runGet(w io.Writer, store storage.Store, key storage.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	value, err := store.Get(key)
	if err != nil {
		return errors.Wrapf(err, "get %q", key)
	}
	_, err = w.Write(value)
	return err
}

func runPut(r io.Reader, store storage.Store, key storage.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	value, err := io.ReadAll(r)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.Wrapf(store.Put(key, value), "put %q", key)
}

func runRemove(store storage.Store, key storage.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	return errors.Wrapf(store.Delete(key), "delete %q", key)
}

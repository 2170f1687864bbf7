package storage

import (
	"os"
	"path/filepath"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"
)

func TestDiskStore(t *testing.T) {
	t.Run("contains keys that were put", func(t *testing.T) {
		store := NewDiskStore(t.TempDir())
		f := func(key Key, value Value) bool {
			ok, err := store.Contains(key)
			if err != nil {
				t.Error(err)
				return false
			}
			if ok {
				return false
			}
			err = store.Put(key, value)
			if err != nil {
				t.Error(err)
				return false
			}
			ok, err = store.Contains(key)
			if err != nil {
				t.Error(err)
				return false
			}
			return ok
		}
		if err := quick.Check(f, nil); err != nil {
			t.Error(err)
		}
	})
	t.Run("creates the directory on first put", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "documents")
		store := NewDiskStore(dir)
		if err := store.Put("left", Value("a\n")); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(dir, "left")); err != nil {
			t.Errorf("got %v, want nil", err)
		}
	})
	t.Run("iterates over all keys, without repetition", func(t *testing.T) {
		store := NewDiskStore(t.TempDir())
		f := func(keylist []Key, value Value) bool {
			keys := make(map[Key]int)
			for _, key := range keylist {
				keys[key] = 1
			}
			for key := range keys {
				if err := store.Put(key, value); err != nil {
					t.Error(err)
					return false
				}
			}
			seen := make(map[Key]int)
			err := store.ForEach(func(key Key) error {
				seen[key]++
				return store.Delete(key)
			})
			if err != nil {
				t.Error(err)
				return false
			}
			if diff := cmp.Diff(keys, seen); diff != "" {
				t.Log(diff)
				return false
			}
			return true
		}
		if err := quick.Check(f, nil); err != nil {
			t.Error(err)
		}
	})
	t.Run("skips interrupted puts", func(t *testing.T) {
		dir := t.TempDir()
		store := NewDiskStore(dir)
		if err := os.WriteFile(filepath.Join(dir, "left.new"), []byte("partial"), 0600); err != nil {
			t.Fatal(err)
		}
		err := store.ForEach(func(key Key) error {
			t.Errorf("got key %q, want none", key)
			return nil
		})
		if err != nil {
			t.Error(err)
		}
	})
	t.Run("missing directory has no keys", func(t *testing.T) {
		store := NewDiskStore(filepath.Join(t.TempDir(), "nope"))
		if err := store.ForEach(func(Key) error { return nil }); err != nil {
			t.Errorf("got %v, want nil", err)
		}
	})
}

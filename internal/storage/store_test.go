package storage

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/nicolagi/linemerge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Generate implements quick.Generator.
// Intended for unit tests in this package.
func (Key) Generate(rand *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(generateKey(rand, size))
}

func generateKey(r *rand.Rand, size int) Key {
	if size < 0 {
		size = -size
	}
	// Empty keys are invalid.
	size = 1 + r.Intn(size+1)
	b := make([]byte, size)
	if n, err := r.Read(b); err != nil {
		panic(err)
	} else if n != size {
		panic(fmt.Sprintf("got %d, want %d random bytes", n, size))
	}
	return Key(fmt.Sprintf("%02x", b))
}

func TestKeyValidate(t *testing.T) {
	for _, k := range []Key{"left", "notes.txt", "a-b_c"} {
		assert.Nil(t, k.Validate(), "%q", k)
	}
	for _, k := range []Key{"", ".hidden", "a/b", "../x", "doc.new"} {
		err := k.Validate()
		assert.True(t, errors.Is(err, ErrInvalidKey), "got %v, want %v for %q", err, ErrInvalidKey, k)
	}
}

func TestStoreImplementations(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*testing.T) Store
	}{
		{
			"disk",
			func(t *testing.T) Store {
				return NewDiskStore(t.TempDir())
			},
		},
		{
			"memory",
			func(t *testing.T) Store {
				return &InMemory{}
			},
		},
		{
			"compressed disk",
			func(t *testing.T) Store {
				return NewCompressed(NewDiskStore(t.TempDir()))
			},
		},
		{
			"s3",
			func(t *testing.T) Store {
				if s3params == "" {
					t.Skip()
				}
				args := strings.Split(s3params, ",")
				if got, want := len(args), 3; got != want {
					t.Fatalf("got %d, want %d args for S3 store", got, want)
				}
				impl, err := newS3Store(&config.C{
					S3Region:  args[0],
					S3Bucket:  args[1],
					S3Profile: args[2],
				})
				if err != nil {
					t.Fatal(err)
				}
				return impl
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			testStore(t, c.setup(t))
		})
	}
}

var s3params string

func testStore(t *testing.T, impl Store) {
	t.Run("you get what you put", func(t *testing.T) {
		f := func(key Key, value Value) bool {
			err := impl.Put(key, value)
			if err != nil {
				t.Fatal(err)
			}
			v, err := impl.Get(key)
			if err != nil {
				t.Fatal(err)
			}
			return bytes.Equal(v, value)
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
	t.Run("should not get a deleted key", func(t *testing.T) {
		f := func(key Key, value Value) bool {
			err := impl.Put(key, value)
			if err != nil {
				t.Fatal(err)
			}
			err = impl.Delete(key)
			if err != nil {
				t.Fatal(err)
			}
			v, err := impl.Get(key)
			vok := v == nil
			eok := errors.Is(err, ErrNotFound)
			if !eok {
				t.Errorf("got %v of type %T, want wrapper of %v", err, err, ErrNotFound)
			}
			return vok && eok
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
	t.Run("delete inexistent key is successful", func(t *testing.T) {
		f := func(key Key) bool {
			err := impl.Delete(key)
			if err != nil {
				t.Error(err)
				return false
			}
			return true
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
}

func TestKeys(t *testing.T) {
	s := &InMemory{}
	for _, k := range []Key{"right", "left", "base"} {
		require.Nil(t, s.Put(k, Value(k)))
	}
	keys, err := Keys(s)
	require.Nil(t, err)
	assert.Equal(t, []Key{"base", "left", "right"}, keys)

	keys, err = Keys(NullStore{})
	require.Nil(t, err)
	assert.Empty(t, keys)

	_, err = Keys(storeFuncs{})
	assert.True(t, errors.Is(err, ErrNotImplemented), "got %v, want %v", err, ErrNotImplemented)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(&config.C{Storage: "disk", DiskStoreDir: t.TempDir(), Compress: true})
	require.Nil(t, err)
	assert.IsType(t, &Compressed{}, s)

	s, err = NewStore(&config.C{Storage: "memory"})
	require.Nil(t, err)
	assert.IsType(t, &InMemory{}, s)

	_, err = NewStore(&config.C{Storage: "disk"})
	assert.NotNil(t, err)

	_, err = NewStore(&config.C{Storage: "tape"})
	assert.True(t, errors.Is(err, ErrNotImplemented), "got %v, want %v", err, ErrNotImplemented)
}

// storeFuncs implements Store.
// Its behavior is fully configurable by setting get, put, delete functions.
// Intended for unit tests in this package.
type storeFuncs struct {
	get    func(Key) (Value, error)
	put    func(Key, Value) error
	delete func(Key) error
}

func (s storeFuncs) Get(key Key) (Value, error) {
	if s.get != nil {
		return s.get(key)
	}
	return nil, nil
}

func (s storeFuncs) Put(key Key, value Value) error {
	if s.put != nil {
		return s.put(key, value)
	}
	return nil
}

func (s storeFuncs) Delete(key Key) error {
	if s.delete != nil {
		return s.delete(key)
	}
	return nil
}

func TestMain(m *testing.M) {
	flag.StringVar(&s3params, "s3", "", "region, bucket, and profile for S3 store testing")
	flag.Parse()
	os.Exit(m.Run())
}

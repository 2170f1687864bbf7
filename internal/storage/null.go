package storage

import "fmt"

// NullStore forgets everything it is given.
type NullStore struct{}

var _ Enumerable = NullStore{}

func (NullStore) Get(k Key) (Value, error) {
	return nil, fmt.Errorf("%q: %w", k, ErrNotFound)
}

func (NullStore) Put(Key, Value) error {
	return nil
}

func (NullStore) Delete(Key) error {
	return nil
}

func (NullStore) Contains(Key) (bool, error) {
	return false, nil
}

func (NullStore) ForEach(func(Key) error) error {
	return nil
}

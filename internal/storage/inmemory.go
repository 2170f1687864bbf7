package storage

import (
	"fmt"
	"sync"
)

// InMemory implements Enumerable, meant to be used in unit tests in other
// packages and for sessions that need not outlive the process.
type InMemory struct {
	sync.Mutex
	m map[Key]Value
}

var _ Enumerable = (*InMemory)(nil)

func (s *InMemory) Get(k Key) (Value, error) {
	s.Lock()
	defer s.Unlock()
	v, ok := s.m[k]
	if !ok {
		return nil, fmt.Errorf("%q: %w", k, ErrNotFound)
	}
	return append(Value(nil), v...), nil
}

func (s *InMemory) Put(k Key, v Value) error {
	if err := k.Validate(); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if s.m == nil {
		s.m = make(map[Key]Value)
	}
	s.m[k] = append(Value(nil), v...)
	return nil
}

func (s *InMemory) Delete(k Key) error {
	s.Lock()
	defer s.Unlock()
	delete(s.m, k)
	return nil
}

func (s *InMemory) Contains(k Key) (bool, error) {
	s.Lock()
	defer s.Unlock()
	_, ok := s.m[k]
	return ok, nil
}

func (s *InMemory) ForEach(cb func(Key) error) error {
	s.Lock()
	kk := make([]Key, 0, len(s.m))
	for k := range s.m {
		kk = append(kk, k)
	}
	s.Unlock()
	for _, k := range kk {
		if err := cb(k); err != nil {
			return err
		}
	}
	return nil
}

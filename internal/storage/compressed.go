package storage

import (
	"bytes"
	"errors"
	"io"

	"github.com/andybalholm/brotli"
)

// Compressed stores values brotli-compressed in the underlying store.
// Documents are text, so they shrink a lot.
type Compressed struct {
	delegate Store
	level    int
}

func NewCompressed(delegate Store) *Compressed {
	return &Compressed{delegate: delegate, level: brotli.DefaultCompression}
}

func (c *Compressed) Get(k Key) (Value, error) {
	v, err := c.delegate.Get(k)
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(brotli.NewReader(bytes.NewReader(v)))
	if err != nil {
		return nil, errorf("Compressed.Get", "%q: %w", k, err)
	}
	return b, nil
}

func (c *Compressed) Put(k Key, v Value) error {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, c.level)
	if _, err := w.Write(v); err != nil {
		return errorf("Compressed.Put", "%q: %w", k, err)
	}
	if err := w.Close(); err != nil {
		return errorf("Compressed.Put", "%q: %w", k, err)
	}
	return c.delegate.Put(k, buf.Bytes())
}

func (c *Compressed) Delete(k Key) error {
	return c.delegate.Delete(k)
}

// ForEach and Contains pass through when the underlying store can enumerate.
func (c *Compressed) ForEach(cb func(Key) error) error {
	if e, ok := c.delegate.(Enumerable); ok {
		return e.ForEach(cb)
	}
	if l, ok := c.delegate.(Lister); ok {
		ch, err := l.List()
		if err != nil {
			return err
		}
		var firstErr error
		for k := range ch {
			if firstErr == nil {
				firstErr = cb(Key(k))
			}
		}
		return firstErr
	}
	return errorf("Compressed.ForEach", "%T: %w", c.delegate, ErrNotImplemented)
}

func (c *Compressed) Contains(k Key) (bool, error) {
	if e, ok := c.delegate.(Enumerable); ok {
		return e.Contains(k)
	}
	_, err := c.delegate.Get(k)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

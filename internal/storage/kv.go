// Package storage persists the expense list and the selected currency in a
// key/value store, either in memory or in SQLite.
package storage

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage closed")
	// ErrCorruptValue is returned when a stored value cannot be decoded.
	ErrCorruptValue = errors.New("corrupt stored value")
)

// KV is a minimal key/value store. Values are opaque bytes.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryKV is an in-process KV. It is safe for concurrent use.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ KV = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = v
	return nil
}

func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

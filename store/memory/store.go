// Package memory provides an in-process store.Store. State lives in a map
// and is lost when the process exits.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/xraph/festival/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store in memory.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Update runs fn with staged writes and applies them under the write lock
// only if fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return store.Run(ctx, s.read, fn, func(_ context.Context, writes []store.Write) error {
		for _, w := range writes {
			if w.Deleted() {
				delete(s.records, w.Key)
				continue
			}
			s.records[w.Key] = w.Value
		}
		return nil
	})
}

// View runs fn under the read lock.
func (s *Store) View(_ context.Context, fn func(tx store.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(store.NewTx(store.ReadBucket(s.read)))
}

func (s *Store) read(_ context.Context, key string) ([]byte, error) {
	v, ok := s.records[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return v, nil
}

// Keys returns the stored keys with the given prefix in sorted order.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

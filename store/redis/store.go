// Package redis provides a store.Store on Redis. An Update stages its writes
// and commits them in one MULTI/EXEC block.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/festival/store"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "festival:"

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on a Redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New wraps client. An empty prefix uses DefaultPrefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Dial connects to the Redis server at addr and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*Store, error) {
	if addr == "" {
		return nil, errors.New("festival/redis: address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("festival/redis: connect %s: %w", addr, err)
	}
	return New(client, ""), nil
}

// Client returns the underlying Redis client.
func (s *Store) Client() redis.UniversalClient { return s.client }

// Update stages fn's writes and commits them atomically.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.Run(ctx, s.read, fn, s.commit)
}

// View runs fn against the committed records.
func (s *Store) View(_ context.Context, fn func(tx store.Tx) error) error {
	return fn(store.NewTx(store.ReadBucket(s.read)))
}

// Migrate is a no-op; Redis is schemaless.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping checks server connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) read(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("festival/redis: get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) commit(ctx context.Context, writes []store.Write) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			if w.Deleted() {
				pipe.Del(ctx, s.prefix+w.Key)
				continue
			}
			pipe.Set(ctx, s.prefix+w.Key, w.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("festival/redis: commit %d records: %w", len(writes), err)
	}
	return nil
}

// Package badger provides an embedded, durable store.Store on BadgerDB.
// Update and View map directly onto Badger's serializable transactions.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/xraph/festival/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on a Badger database.
type Store struct {
	db *badgerdb.DB
}

// Open opens (or creates) a Badger database in dir. An empty dir opens an
// in-memory database.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badgerdb.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("festival/badger: open %q: %w", dir, err)
	}
	if logger != nil {
		logger.Debug("festival/badger: opened", slog.String("dir", dir), slog.Bool("in_memory", dir == ""))
	}
	return New(db), nil
}

// New wraps an open Badger database.
func New(db *badgerdb.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying Badger database for direct access.
func (s *Store) DB() *badgerdb.DB { return s.db }

// Update runs fn in a Badger read-write transaction.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return fn(store.NewTx(&bucket{txn: txn}))
	})
}

// View runs fn in a Badger read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badgerdb.Txn) error {
		return fn(store.NewTx(store.ReadBucket((&bucket{txn: txn}).Get)))
	})
}

// Migrate is a no-op; Badger is schemaless.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the database is still open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("festival/badger: database closed")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type bucket struct {
	txn *badgerdb.Txn
}

func (b *bucket) Get(_ context.Context, key string) ([]byte, error) {
	item, err := b.txn.Get([]byte(key))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (b *bucket) Put(_ context.Context, key string, value []byte) error {
	return b.txn.Set([]byte(key), value)
}

func (b *bucket) Delete(_ context.Context, key string) error {
	return b.txn.Delete([]byte(key))
}

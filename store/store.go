// Package store defines the transactional persistence contract for Festival
// and the record layout every backend shares.
//
// Backends only have to provide an ordered key/value Bucket and a way to
// apply a batch of writes atomically. The typed Tx built by NewTx encodes
// accounts, allowances, units, holders, listings and configuration as JSON
// records under the keys in keys.go.
package store

import (
	"context"
	"errors"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/token"
)

// ErrKeyNotFound is returned by Bucket.Get for absent keys.
var ErrKeyNotFound = errors.New("store: key not found")

// ErrReadOnly is returned when a write is attempted inside View.
var ErrReadOnly = errors.New("store: read-only transaction")

// Tx is the typed view of one store transaction. It satisfies the store
// contract of every component.
type Tx interface {
	token.Store
	asset.Store
	sale.Store
	market.Store
}

// Store is the unified storage interface for Festival.
//
// Update runs fn in a read-write transaction. Writes made by fn become
// visible together when fn returns nil and are discarded otherwise.
// View runs fn against a consistent read-only snapshot.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Bucket is the key/value surface a backend exposes to NewTx.
type Bucket interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ReadBucket wraps a read function as a Bucket that rejects writes.
type ReadBucket func(ctx context.Context, key string) ([]byte, error)

// Get implements Bucket.
func (f ReadBucket) Get(ctx context.Context, key string) ([]byte, error) { return f(ctx, key) }

// Put implements Bucket.
func (f ReadBucket) Put(context.Context, string, []byte) error { return ErrReadOnly }

// Delete implements Bucket.
func (f ReadBucket) Delete(context.Context, string) error { return ErrReadOnly }

// Package sqlite provides a store.Store on SQLite via the Grove ORM.
//
// Every record lives in the festival_records table. Update and View each
// run in one database transaction, so several processes sharing a file see
// whole operations only. An Update stages its writes and applies them as one
// multi-row INSERT ... ON CONFLICT DO UPDATE statement. Deletes are written
// as empty-value tombstones to keep that a single statement; Compact
// removes them.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/festival/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Open connects to the SQLite database file at dsn and wraps the
// connection in a Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sdb := sqlitedriver.New()
	if err := sdb.Open(ctx, dsn); err != nil {
		return nil, fmt.Errorf("festival/sqlite: open: %w", err)
	}
	db, err := grove.Open(sdb)
	if err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("festival/sqlite: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove
// orchestrator, then drops tombstones left by earlier runs.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("festival/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("festival/sqlite: migration failed: %w", err)
	}
	if _, err := s.Compact(ctx); err != nil {
		return fmt.Errorf("festival/sqlite: compact: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn inside one SQLite transaction. Reads see the committed
// records as of the transaction start plus fn's own staged writes; the
// writes are applied with one statement before commit.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.inTx(ctx, func(tx *sqlitedriver.SqliteTx) error {
		return store.Run(ctx, reader(tx), fn, func(ctx context.Context, writes []store.Write) error {
			return commit(ctx, tx, writes)
		})
	})
}

// View runs fn against a read snapshot taken in its own transaction.
func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.inTx(ctx, func(tx *sqlitedriver.SqliteTx) error {
		return fn(store.NewTx(store.ReadBucket(reader(tx))))
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlitedriver.SqliteTx) error) error {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("festival/sqlite: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("festival/sqlite: commit: %w", err)
	}
	return nil
}

// Compact deletes tombstoned records and returns how many were removed.
func (s *Store) Compact(ctx context.Context) (int64, error) {
	res, err := s.sdb.NewDelete((*recordModel)(nil)).
		Where("value = ''").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func reader(tx *sqlitedriver.SqliteTx) func(ctx context.Context, key string) ([]byte, error) {
	return func(ctx context.Context, key string) ([]byte, error) {
		var rows []recordModel
		err := tx.NewSelect(&rows).
			Column("value").
			Where("record_key = ?", key).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("festival/sqlite: get record: %w", err)
		}
		if len(rows) == 0 || rows[0].Value == "" {
			return nil, store.ErrKeyNotFound
		}
		return []byte(rows[0].Value), nil
	}
}

func commit(ctx context.Context, tx *sqlitedriver.SqliteTx, writes []store.Write) error {
	models := toRecordModels(writes, now())
	_, err := tx.NewInsert(&models).
		MultiRow().
		OnConflict("(record_key) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("festival/sqlite: write %d records: %w", len(models), err)
	}
	return nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// Package postgres provides a store.Store on PostgreSQL via the Grove ORM.
// It shares the record layout and single-statement commit of the SQLite
// store. Update runs serializable and View reads one repeatable-read
// snapshot, so processes sharing a database see whole operations only.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/driver"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/festival/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// Open connects to the PostgreSQL database at dsn and wraps the
// connection in a Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pgdb := pgdriver.New()
	if err := pgdb.Open(ctx, dsn); err != nil {
		return nil, fmt.Errorf("festival/postgres: open: %w", err)
	}
	db, err := grove.Open(pgdb)
	if err != nil {
		_ = pgdb.Close()
		return nil, fmt.Errorf("festival/postgres: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove
// orchestrator, then drops tombstones left by earlier runs.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("festival/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("festival/postgres: migration failed: %w", err)
	}
	if _, err := s.Compact(ctx); err != nil {
		return fmt.Errorf("festival/postgres: compact: %w", err)
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

// Update runs fn inside one serializable transaction and applies its
// staged writes with one statement before commit. A conflicting writer in
// another process makes the commit fail rather than interleave.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	opts := &driver.TxOptions{IsolationLevel: driver.LevelSerializable}
	return s.inTx(ctx, opts, func(tx *pgdriver.PgTx) error {
		return store.Run(ctx, reader(tx), fn, func(ctx context.Context, writes []store.Write) error {
			return commit(ctx, tx, writes)
		})
	})
}

// View runs fn against one repeatable-read snapshot.
func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	opts := &driver.TxOptions{IsolationLevel: driver.LevelRepeatableRead, ReadOnly: true}
	return s.inTx(ctx, opts, func(tx *pgdriver.PgTx) error {
		return fn(store.NewTx(store.ReadBucket(reader(tx))))
	})
}

func (s *Store) inTx(ctx context.Context, opts *driver.TxOptions, fn func(tx *pgdriver.PgTx) error) error {
	tx, err := s.pg.BeginTxQuery(ctx, opts)
	if err != nil {
		return fmt.Errorf("festival/postgres: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("festival/postgres: commit: %w", err)
	}
	return nil
}

// Compact deletes tombstoned records and returns how many were removed.
func (s *Store) Compact(ctx context.Context) (int64, error) {
	res, err := s.pg.NewDelete((*recordModel)(nil)).
		Where("value = ''").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func reader(tx *pgdriver.PgTx) func(ctx context.Context, key string) ([]byte, error) {
	return func(ctx context.Context, key string) ([]byte, error) {
		var rows []recordModel
		err := tx.NewSelect(&rows).
			Column("value").
			Where("record_key = $1", key).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("festival/postgres: get record: %w", err)
		}
		if len(rows) == 0 || rows[0].Value == "" {
			return nil, store.ErrKeyNotFound
		}
		return []byte(rows[0].Value), nil
	}
}

func commit(ctx context.Context, tx *pgdriver.PgTx, writes []store.Write) error {
	models := toRecordModels(writes, now())
	_, err := tx.NewInsert(&models).
		MultiRow().
		OnConflict("(record_key) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("festival/postgres: write %d records: %w", len(models), err)
	}
	return nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// Package mongo provides a store.Store on MongoDB via the Grove ORM.
//
// Update and View each run in one MongoDB multi-document transaction with
// snapshot read concern, which requires a replica set or a sharded cluster.
// Reads go through grove inside the transaction's session.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readconcern"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/festival/store"
)

// Collection name constants.
const (
	colRecords = "festival_records"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Open connects to the MongoDB deployment at uri and wraps the connection
// in a Store. The database name comes from the URI path.
func Open(ctx context.Context, uri string) (*Store, error) {
	mdb := mongodriver.New()
	if err := mdb.Open(ctx, uri); err != nil {
		return nil, fmt.Errorf("festival/mongo: open: %w", err)
	}
	db, err := grove.Open(mdb)
	if err != nil {
		_ = mdb.Close()
		return nil, fmt.Errorf("festival/mongo: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the record collection.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("festival/mongo: migrate %s indexes: %w", col, err)
		}
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

// Update runs fn inside one MongoDB transaction. Reads use the
// transaction's snapshot and the staged writes are applied in the same
// session before commit.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	return s.inTx(ctx, opts, func(sc context.Context) error {
		return store.Run(sc, s.reader(sc), fn, s.commit)
	})
}

// View runs fn against one snapshot read in its own transaction.
func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	opts := options.Transaction().SetReadConcern(readconcern.Snapshot())
	return s.inTx(ctx, opts, func(sc context.Context) error {
		return fn(store.NewTx(store.ReadBucket(s.reader(sc))))
	})
}

func (s *Store) inTx(ctx context.Context, opts *options.TransactionOptionsBuilder, fn func(sc context.Context) error) error {
	sess, err := s.mdb.Client().StartSession()
	if err != nil {
		return fmt.Errorf("festival/mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := sess.StartTransaction(opts); err != nil {
		return fmt.Errorf("festival/mongo: start transaction: %w", err)
	}

	sc := mongo.NewSessionContext(ctx, sess)
	if err := fn(sc); err != nil {
		_ = sess.AbortTransaction(ctx)
		return err
	}
	if err := sess.CommitTransaction(ctx); err != nil {
		return fmt.Errorf("festival/mongo: commit: %w", err)
	}
	return nil
}

// reader returns a record reader bound to the session context sc.
func (s *Store) reader(sc context.Context) func(context.Context, string) ([]byte, error) {
	return func(_ context.Context, key string) ([]byte, error) {
		var m recordModel
		err := s.mdb.NewFind(&m).
			Filter(bson.M{"_id": key}).
			Scan(sc)
		if err != nil {
			if isNoDocuments(err) {
				return nil, store.ErrKeyNotFound
			}
			return nil, fmt.Errorf("festival/mongo: get record: %w", err)
		}
		return []byte(m.Value), nil
	}
}

// commit applies writes through the session carried by ctx.
func (s *Store) commit(ctx context.Context, writes []store.Write) error {
	coll := s.mdb.Collection(colRecords)

	at := now()
	for _, w := range writes {
		filter := bson.M{"_id": w.Key}
		if w.Deleted() {
			if _, err := coll.DeleteOne(ctx, filter); err != nil {
				return fmt.Errorf("festival/mongo: delete %s: %w", w.Key, err)
			}
			continue
		}
		_, err := coll.ReplaceOne(ctx, filter, toRecordDoc(w, at), options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("festival/mongo: write %s: %w", w.Key, err)
		}
	}
	return nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the Festival collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colRecords: {
			{Keys: bson.D{{Key: "kind", Value: 1}}},
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "updated_at", Value: -1}}},
		},
	}
}

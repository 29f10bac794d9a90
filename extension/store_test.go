package extension

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/vessel"

	"github.com/xraph/festival/store/badger"
	"github.com/xraph/festival/store/memory"
	"github.com/xraph/festival/store/sqlite"
)

type namedDriver struct{ name string }

func (d namedDriver) Name() string               { return d.name }
func (d namedDriver) Close() error               { return nil }
func (d namedDriver) Ping(context.Context) error { return nil }

func openSqliteGrove(t *testing.T) *grove.DB {
	t.Helper()
	sdb := sqlitedriver.New()
	if err := sdb.Open(context.Background(), filepath.Join(t.TempDir(), "festival.db")); err != nil {
		t.Fatal(err)
	}
	db, err := grove.Open(sdb)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGroveStoreByDriver(t *testing.T) {
	db := openSqliteGrove(t)
	s, err := groveStore(db)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*sqlite.Store); !ok {
		t.Fatalf("got %T, want *sqlite.Store", s)
	}

	other, err := grove.Open(namedDriver{name: "mysql"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := groveStore(other); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenStoreResolvesGroveDatabase(t *testing.T) {
	ctx := context.Background()
	db := openSqliteGrove(t)

	tests := []struct {
		name    string
		provide func(c vessel.Vessel) error
		dbName  string
		wantErr bool
	}{
		{
			name:    "default database",
			provide: func(c vessel.Vessel) error { return vessel.ProvideValue[*grove.DB](c, db) },
		},
		{
			name: "named database",
			provide: func(c vessel.Vessel) error {
				return vessel.ProvideValue[*grove.DB](c, db, vessel.WithName("tickets"))
			},
			dbName: "tickets",
		},
		{
			name:    "missing database",
			provide: func(vessel.Vessel) error { return nil },
			dbName:  "tickets",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := vessel.New()
			if err := tt.provide(c); err != nil {
				t.Fatal(err)
			}
			e := New(WithGroveDatabase(tt.dbName))

			s, err := e.openStore(c)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if _, ok := s.(*sqlite.Store); !ok {
				t.Fatalf("got %T, want *sqlite.Store", s)
			}
			if err := s.Migrate(ctx); err != nil {
				t.Fatalf("migrate: %v", err)
			}
			if err := s.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
		})
	}
}

func TestOpenStoreFallbacks(t *testing.T) {
	e := New()
	s, err := e.openStore(vessel.New())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Fatalf("got %T, want *memory.Store", s)
	}

	e = New(WithBadgerDir(t.TempDir()))
	s, err = e.openStore(vessel.New())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*badger.Store); !ok {
		t.Fatalf("got %T, want *badger.Store", s)
	}
}

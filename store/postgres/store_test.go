package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/xraph/grove/drivers/pgdriver"

	"github.com/xraph/festival/store/postgres"
	"github.com/xraph/festival/store/storetest"
)

// TestConformance runs against the database named by FESTIVAL_POSTGRES_DSN.
// The festival_records table is emptied before and after the run.
func TestConformance(t *testing.T) {
	dsn := os.Getenv("FESTIVAL_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FESTIVAL_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := postgres.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	truncate := func() {
		if _, err := pgdriver.Unwrap(s.DB()).Exec(ctx, "TRUNCATE festival_records"); err != nil {
			t.Errorf("truncate: %v", err)
		}
	}
	truncate()
	t.Cleanup(truncate)

	storetest.Run(t, s)
}

func TestOpenRejectsBadDSN(t *testing.T) {
	if _, err := postgres.Open(context.Background(), "://not-a-dsn"); err == nil {
		t.Fatal("expected error for malformed dsn")
	}
}

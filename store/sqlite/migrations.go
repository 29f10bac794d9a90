package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"

	// Registers the migration executor for the driver.
	_ "github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
)

// Migrations is the grove migration group for the Festival store (SQLite).
var Migrations = migrate.NewGroup("festival")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_festival_records",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS festival_records (
    record_key  TEXT PRIMARY KEY,
    kind        TEXT NOT NULL DEFAULT '',
    value       TEXT NOT NULL DEFAULT '',
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_festival_records_kind ON festival_records (kind);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS festival_records`)
				return err
			},
		},
	)
}

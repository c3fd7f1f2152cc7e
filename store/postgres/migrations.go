package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the membership store.
var Migrations = migrate.NewGroup("membership")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_membership_records",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS membership_records (
    member          TEXT PRIMARY KEY,
    expiration_tick TEXT NOT NULL CHECK (expiration_tick ~ '^[0-9]{1,20}$'),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_membership_records_updated ON membership_records (updated_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS membership_records`)
				return err
			},
		},
	)
}

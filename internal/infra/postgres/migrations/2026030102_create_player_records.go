package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createPlayerRecordsSQL = `
CREATE TABLE IF NOT EXISTS player_records (
	id         TEXT        PRIMARY KEY,
	data       JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createPlayerRecordsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS player_records`)
			return err
		},
	)
}

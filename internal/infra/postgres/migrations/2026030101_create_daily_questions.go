package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createDailyQuestionsSQL = `
CREATE TABLE IF NOT EXISTS daily_questions (
	date     TEXT    NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	day      INTEGER NOT NULL,
	data     JSONB   NOT NULL,
	PRIMARY KEY (date, position)
)`

// Migrations holds the schema steps applied by the migrate command.
var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createDailyQuestionsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS daily_questions`)
			return err
		},
	)
}

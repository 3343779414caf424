package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS completion_checks (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		completed BOOLEAN NOT NULL,
		status TEXT NOT NULL,
		checked_at TIMESTAMPTZ NOT NULL
	)`,
	`ALTER TABLE completion_checks ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
	`DROP INDEX IF EXISTS completion_checks_txn_idx`,
	`CREATE INDEX IF NOT EXISTS completion_checks_txn_seq_idx ON completion_checks (transaction_id, checked_at DESC, seq DESC)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id BIGSERIAL PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		type TEXT NOT NULL,
		payload JSONB NOT NULL,
		headers JSONB NOT NULL DEFAULT '{}'::jsonb,
		traceparent TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		relay_id TEXT,
		lease_until TIMESTAMPTZ,
		retry_count INT NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_status_idx ON outbox (status, id)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

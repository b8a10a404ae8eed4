package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// schema is applied idempotently on every startup so the process stays
// restartable without a separate migration step.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id         BIGSERIAL PRIMARY KEY,
		token      TEXT NOT NULL UNIQUE,
		username   TEXT NOT NULL DEFAULT '',
		balance    BIGINT NOT NULL DEFAULT 0,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS activations (
		id             BIGSERIAL PRIMARY KEY,
		account_id     BIGINT NOT NULL REFERENCES accounts (id),
		promo_code     TEXT NOT NULL,
		success        BOOLEAN NOT NULL,
		stars_received BIGINT NOT NULL DEFAULT 0,
		activated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_activations_account_id ON activations (account_id);`,
}

// EnsureSchema creates the accounts and activations tables when absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

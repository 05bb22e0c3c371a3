package db

import (
	"context"
	"fmt"
)

// schema is applied at startup. The table layout mirrors the negotiation
// record: identity, property, the three rent figures, status, and the
// conversation history as a JSONB document.
const schema = `
CREATE TABLE IF NOT EXISTS negotiations (
    id                  BIGINT PRIMARY KEY,
    tenant_name         TEXT NOT NULL,
    tenant_email        TEXT NOT NULL,
    address             TEXT NOT NULL DEFAULT '',
    city                TEXT NOT NULL DEFAULT '',
    state               TEXT NOT NULL DEFAULT '',
    zipcode             TEXT NOT NULL DEFAULT '',
    current_rent        INTEGER NOT NULL,
    initial_target_rent INTEGER NOT NULL,
    current_target_rent INTEGER NOT NULL,
    status              TEXT NOT NULL,
    history             JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_negotiations_email_updated
    ON negotiations (tenant_email, updated_at DESC);
`

// Migrate creates the schema if it does not exist yet. The table and its
// index apply in one transaction so a failed startup never leaves a
// half-created schema behind.
func (db *DB) Migrate(ctx context.Context) error {
	return db.WithTx(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, schema); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
		return nil
	})
}

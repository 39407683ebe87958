package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
// Open fails if the journal cannot be brought to it.
const ExpectedSchemaVersion = 2

// schemaStep moves the journal from version-1 to version.
type schemaStep struct {
	name       string
	statements []string
	version    int
}

var schemaSteps = []schemaStep{
	{
		version: 1,
		name:    "action journal",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS actions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				kind TEXT NOT NULL,
				product_id INTEGER NOT NULL,
				store_id INTEGER NOT NULL,
				priority TEXT,
				outcome TEXT NOT NULL,
				error TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		version: 2,
		name:    "idempotency keys and lookup indexes",
		statements: []string{
			`ALTER TABLE actions ADD COLUMN idempotency_key TEXT`,
			`CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_actions_key ON actions(product_id, store_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_actions_idempotency_key
				ON actions(idempotency_key) WHERE idempotency_key IS NOT NULL AND idempotency_key != ''`,
		},
	},
}

// Migrate brings the journal schema up to ExpectedSchemaVersion. Each step
// runs in its own transaction together with the user_version bump.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, step := range schemaSteps {
		if step.version <= current {
			continue
		}
		if err := s.applyStep(ctx, step); err != nil {
			return err
		}
		slog.Debug("applied journal migration", "version", step.version, "name", step.name)
	}

	final, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("journal schema is at version %d, want %d", final, ExpectedSchemaVersion)
	}
	return nil
}

func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (s *SQLiteStorage) applyStep(ctx context.Context, step schemaStep) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", step.version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range step.statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", step.version, step.name, err)
		}
	}
	if err = setSchemaVersion(ctx, tx, step.version); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", step.version, err)
	}
	return nil
}

func setSchemaVersion(ctx context.Context, tx *sql.Tx, v int) error {
	// PRAGMA does not accept bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("failed to set schema version %d: %w", v, err)
	}
	return nil
}

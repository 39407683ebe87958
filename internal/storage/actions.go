package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
)

const selectActions = `
	SELECT id, kind, product_id, store_id, priority, idempotency_key, outcome, error, created_at
	FROM actions`

// Record appends an entry to the action journal.
func (s *SQLiteStorage) Record(ctx context.Context, entry service.JournalEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (kind, product_id, store_id, priority, idempotency_key, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.Kind, entry.ProductID, entry.StoreID, nullString(string(entry.Priority)),
		nullString(entry.IdempotencyKey), entry.Outcome, nullString(entry.Error), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record %s action for %d@%d: %w", entry.Kind, entry.ProductID, entry.StoreID, err)
	}
	return nil
}

// List returns up to limit journal entries, newest first. A limit of zero
// returns every entry.
func (s *SQLiteStorage) List(ctx context.Context, limit int) ([]service.JournalEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	query := selectActions + ` ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryActions(ctx, query, args...)
}

// ListByKey returns every journal entry for one product/store, newest first.
func (s *SQLiteStorage) ListByKey(ctx context.Context, key model.RecommendationKey) ([]service.JournalEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryActions(ctx, selectActions+`
		WHERE product_id = ? AND store_id = ?
		ORDER BY created_at DESC, id DESC`, key.ProductID, key.StoreID)
}

// CountByOutcome returns the number of journal entries per outcome.
func (s *SQLiteStorage) CountByOutcome(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM actions GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteStorage) queryActions(ctx context.Context, query string, args ...any) ([]service.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []service.JournalEntry
	for rows.Next() {
		var entry service.JournalEntry
		var priority, idempotencyKey, errText sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.Kind,
			&entry.ProductID,
			&entry.StoreID,
			&priority,
			&idempotencyKey,
			&entry.Outcome,
			&errText,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		entry.Priority = model.Priority(priority.String)
		entry.IdempotencyKey = idempotencyKey.String
		entry.Error = errText.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}
	return entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// numberColumns maps a document prefix to the table and column holding its numbers.
var numberColumns = map[string]struct{ table, column string }{
	"JO":  {"job_orders", "order_number"},
	"Q":   {"quotes", "quote_number"},
	"JOB": {"jobs", "job_number"},
	"INV": {"invoices", "invoice_number"},
	"EMP": {"users", "employee_number"},
}

type SequenceRepository interface {
	// Increment atomically bumps the (prefix, year) counter and returns the new value.
	Increment(ctx context.Context, prefix string, year int) (int, error)
	// Raise moves the counter up to atLeast; it never moves it down.
	Raise(ctx context.Context, prefix string, year int, atLeast int) error
	// LatestNumber returns the lexicographically greatest identifier starting with stem,
	// or "" when none exists. Soft-deleted rows are included.
	LatestNumber(ctx context.Context, prefix, stem string) (string, error)
}

type sequenceRepo struct{ db *gorm.DB }

func NewSequenceRepository(db *gorm.DB) SequenceRepository { return &sequenceRepo{db: db} }

func (r *sequenceRepo) Increment(ctx context.Context, prefix string, year int) (int, error) {
	var value int
	err := conn(ctx, r.db).Raw(`
		INSERT INTO document_counters (prefix, year, value) VALUES (?, ?, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET value = document_counters.value + 1
		RETURNING value`, prefix, year).Scan(&value).Error
	return value, err
}

func (r *sequenceRepo) Raise(ctx context.Context, prefix string, year int, atLeast int) error {
	return conn(ctx, r.db).Exec(`
		INSERT INTO document_counters (prefix, year, value) VALUES (?, ?, ?)
		ON CONFLICT (prefix, year) DO UPDATE SET value = GREATEST(document_counters.value, EXCLUDED.value)`,
		prefix, year, atLeast).Error
}

func (r *sequenceRepo) LatestNumber(ctx context.Context, prefix, stem string) (string, error) {
	src, ok := numberColumns[prefix]
	if !ok {
		return "", fmt.Errorf("sequence: unknown prefix %q", prefix)
	}
	var latest string
	err := conn(ctx, r.db).Raw(
		fmt.Sprintf("SELECT %s FROM %s WHERE %s LIKE ? ORDER BY %s DESC LIMIT 1",
			src.column, src.table, src.column, src.column),
		stem+"%").Scan(&latest).Error
	return latest, err
}

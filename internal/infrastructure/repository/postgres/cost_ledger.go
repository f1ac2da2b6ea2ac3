package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

// CostLedger is an append-only record of paid model calls.
type CostLedger struct {
	db *sql.DB
}

func NewCostLedger(db *sql.DB) *CostLedger {
	return &CostLedger{db: db}
}

func (l *CostLedger) Record(ctx context.Context, rec domain.UsageRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx, `
INSERT INTO usage_records (id, model, operation, input_items, tokens, cost, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, rec.ID, rec.Model, rec.Operation, rec.InputItems, rec.Tokens, rec.Cost, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

func (l *CostLedger) Totals(ctx context.Context) (domain.UsageTotals, error) {
	row := l.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(tokens), 0), COALESCE(SUM(cost), 0)
FROM usage_records
`)

	var totals domain.UsageTotals
	if err := row.Scan(&totals.Calls, &totals.Tokens, &totals.Cost); err != nil {
		return domain.UsageTotals{}, fmt.Errorf("scan usage totals: %w", err)
	}
	return totals, nil
}

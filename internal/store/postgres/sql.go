package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RunSQL runs query inside a read-only transaction with args bound to $1..$N
// and returns each row keyed by column name.
func (c *Client) RunSQL(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("starting read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("reading sql rows: %w", err)
	}
	return results, nil
}

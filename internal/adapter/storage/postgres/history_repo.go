package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HistoryRepo implements ports.HistoryRepository. Rows are inserted and
// read, never updated or deleted.
type HistoryRepo struct {
	pool Pool
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(pool Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

// Append records an entry inside the caller's transaction.
func (r *HistoryRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.HistoryEntry) error {
	query := `INSERT INTO history (id, summary, source_token, target_token, amount, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.Summary, e.SourceToken, e.TargetToken,
		e.Amount, e.Success, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", classify(err))
	}
	return nil
}

// ListByWallet returns entries touching the wallet as source or target,
// newest first. Insertion order breaks timestamp ties.
func (r *HistoryRepo) ListByWallet(ctx context.Context, token uuid.UUID, page ports.Page) ([]domain.HistoryEntry, error) {
	query := `SELECT id, summary, source_token, target_token, amount, success, created_at
		FROM history
		WHERE source_token = $1 OR target_token = $1
		ORDER BY created_at DESC, seq DESC`

	args := []any{token}
	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.Summary, &e.SourceToken, &e.TargetToken,
			&e.Amount, &e.Success, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

// Totals replays the ledger for one wallet.
func (r *HistoryRepo) Totals(ctx context.Context, token uuid.UUID) (*ports.LedgerTotals, error) {
	query := `SELECT
			COALESCE(SUM(amount) FILTER (WHERE success AND target_token = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE success AND source_token = $1), 0)
		FROM history
		WHERE source_token = $1 OR target_token = $1`

	totals := &ports.LedgerTotals{}
	if err := r.pool.QueryRow(ctx, query, token).Scan(&totals.Credits, &totals.Debits); err != nil {
		return nil, fmt.Errorf("sum history: %w", err)
	}
	return totals, nil
}

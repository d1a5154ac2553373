package memory

import (
	"context"
	"fmt"
	"slices"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// HistoryRepo implements ports.HistoryRepository on a Store.
type HistoryRepo struct {
	store *Store
}

// NewHistoryRepo creates a history repository over the store.
func NewHistoryRepo(store *Store) *HistoryRepo {
	return &HistoryRepo{store: store}
}

// Append buffers the entry in tx; it becomes visible on Commit.
func (r *HistoryRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.HistoryEntry) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("insert history entry: %w", errCheckViolation)
	}
	if !r.store.walletExists(e.TargetToken) {
		return fmt.Errorf("insert history entry: target %s: %w", e.TargetToken, domain.ErrWalletNotFound)
	}
	if e.SourceToken != nil && !r.store.walletExists(*e.SourceToken) {
		return fmt.Errorf("insert history entry: source %s: %w", *e.SourceToken, domain.ErrWalletNotFound)
	}
	entry := *e
	if e.SourceToken != nil {
		source := *e.SourceToken
		entry.SourceToken = &source
	}
	t.entries = append(t.entries, entry)
	return nil
}

// ListByWallet returns committed entries touching the wallet, newest first.
func (r *HistoryRepo) ListByWallet(ctx context.Context, token uuid.UUID, page ports.Page) ([]domain.HistoryEntry, error) {
	r.store.mu.RLock()
	matched := make([]historyRow, 0)
	for _, row := range r.store.history {
		if touches(row.entry, token) {
			matched = append(matched, row)
		}
	}
	r.store.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b historyRow) int {
		if c := b.entry.CreatedAt.Compare(a.entry.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	start := min(page.Offset, len(matched))
	end := len(matched)
	if page.Limit > 0 {
		end = min(start+page.Limit, end)
	}

	entries := make([]domain.HistoryEntry, 0, end-start)
	for _, row := range matched[start:end] {
		entries = append(entries, row.entry)
	}
	return entries, nil
}

// Totals replays the committed ledger for one wallet.
func (r *HistoryRepo) Totals(ctx context.Context, token uuid.UUID) (*ports.LedgerTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totals := &ports.LedgerTotals{Credits: decimal.Zero, Debits: decimal.Zero}
	for _, row := range r.store.history {
		e := row.entry
		if !e.Success {
			continue
		}
		if e.TargetToken == token {
			totals.Credits = totals.Credits.Add(e.Amount)
		}
		if e.SourceToken != nil && *e.SourceToken == token {
			totals.Debits = totals.Debits.Add(e.Amount)
		}
	}
	return totals, nil
}

func touches(e domain.HistoryEntry, token uuid.UUID) bool {
	return e.TargetToken == token || (e.SourceToken != nil && *e.SourceToken == token)
}

package ports

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByToken(ctx context.Context, token uuid.UUID) (*domain.Wallet, error)
	GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token uuid.UUID) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	// AddToBalance applies a signed delta in storage (balance = balance + delta).
	// The balance is never read back into application code for the write.
	AddToBalance(ctx context.Context, tx pgx.Tx, token uuid.UUID, delta decimal.Decimal) error
}

// HistoryRepository is the append-only ledger store. There is no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.HistoryEntry) error
	// ListByWallet returns entries where the wallet is source or target, newest first.
	ListByWallet(ctx context.Context, token uuid.UUID, page Page) ([]domain.HistoryEntry, error)
	// Totals sums successful credits and debits of a wallet across the whole ledger.
	Totals(ctx context.Context, token uuid.UUID) (*LedgerTotals, error)
}

// Page selects a window of a newest-first listing. Limit 0 means no limit.
type Page struct {
	Limit  int
	Offset int
}

// LedgerTotals holds the ledger replay of one wallet.
type LedgerTotals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
}

// UserRepository defines persistence operations for account holders.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuditRepository persists audit records.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

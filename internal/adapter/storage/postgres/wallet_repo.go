package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumnList = `token, owner_id, balance, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumnList + `) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, w.Token, w.OwnerID, w.Balance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", classify(err))
	}
	return nil
}

// GetByToken fetches a wallet by its token (without locking).
func (r *WalletRepo) GetByToken(ctx context.Context, token uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumnList + ` FROM wallets WHERE token = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		return nil, fmt.Errorf("get wallet by token: %w", err)
	}
	return w, nil
}

// GetByTokenForUpdate fetches a wallet with pessimistic locking. The row
// stays locked until tx commits or rolls back.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumnList + ` FROM wallets WHERE token = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, token))
	if err != nil {
		return nil, fmt.Errorf("get wallet for update: %w", classify(err))
	}
	return w, nil
}

// ListByOwner returns every wallet owned by the user. Order is unspecified.
func (r *WalletRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumnList + ` FROM wallets WHERE owner_id = $1`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]domain.Wallet, 0)
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.Token, &w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// CountByOwner returns how many wallets the user owns.
func (r *WalletRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wallets WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count wallets: %w", err)
	}
	return count, nil
}

// AddToBalance applies delta inside tx with a single UPDATE. The database
// computes the new value, so concurrent credits never lose an update.
func (r *WalletRepo) AddToBalance(ctx context.Context, tx pgx.Tx, token uuid.UUID, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE token = $2`

	tag, err := tx.Exec(ctx, query, delta, token)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet balance %s: %w", token, domain.ErrWalletNotFound)
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.Token, &w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

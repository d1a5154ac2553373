package memory

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository on a Store.
type WalletRepo struct {
	store *Store
}

// NewWalletRepo creates a wallet repository over the store.
func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{store: store}
}

func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.wallets[w.Token]; ok {
		return fmt.Errorf("insert wallet: %w", domain.ErrAlreadyExists)
	}
	stored := *w
	r.store.wallets[w.Token] = &stored
	return nil
}

func (r *WalletRepo) GetByToken(ctx context.Context, token uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.wallets[token]
	if !ok {
		return nil, nil
	}
	out := *w
	return &out, nil
}

// GetByTokenForUpdate locks the row for the life of tx. The returned balance
// includes tx's own uncommitted delta, as a database session would see it.
func (r *WalletRepo) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token uuid.UUID) (*domain.Wallet, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}
	if !r.store.walletExists(token) {
		return nil, nil
	}
	if err := t.lock(ctx, token); err != nil {
		return nil, fmt.Errorf("lock wallet %s: %w", token, err)
	}
	w, err := r.GetByToken(ctx, token)
	if err != nil || w == nil {
		return w, err
	}
	w.Balance = w.Balance.Add(t.pending(token))
	return w, nil
}

func (r *WalletRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	wallets := make([]domain.Wallet, 0)
	for _, w := range r.store.wallets {
		if w.OwnerID == ownerID {
			wallets = append(wallets, *w)
		}
	}
	return wallets, nil
}

func (r *WalletRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, w := range r.store.wallets {
		if w.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// AddToBalance buffers delta in tx. Constraint violations visible from the
// committed state are reported immediately; Commit re-checks them.
func (r *WalletRepo) AddToBalance(ctx context.Context, tx pgx.Tx, token uuid.UUID, delta decimal.Decimal) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	w, ok := r.store.wallets[token]
	var committed decimal.Decimal
	if ok {
		committed = w.Balance
	}
	r.store.mu.RUnlock()

	if !ok {
		return fmt.Errorf("update wallet balance %s: %w", token, domain.ErrWalletNotFound)
	}

	next := t.pending(token).Add(delta)
	balance := committed.Add(next)
	if balance.IsNegative() {
		return fmt.Errorf("update wallet balance %s: %w", token, errCheckViolation)
	}
	if balance.GreaterThan(domain.MaxBalance) {
		return fmt.Errorf("update wallet balance %s: %w", token, domain.ErrBalanceOverflow)
	}
	t.deltas[token] = next
	return nil
}

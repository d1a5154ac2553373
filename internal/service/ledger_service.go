package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService. Writes go through the
// unexported record methods so only the wallet store can append, always
// inside its own transaction.
type LedgerServiceImpl struct {
	historyRepo ports.HistoryRepository
	walletRepo  ports.WalletRepository
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	historyRepo ports.HistoryRepository,
	walletRepo ports.WalletRepository,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		historyRepo: historyRepo,
		walletRepo:  walletRepo,
		log:         log,
	}
}

func (s *LedgerServiceImpl) recordDeposit(ctx context.Context, tx pgx.Tx, target uuid.UUID, amount decimal.Decimal) (*domain.HistoryEntry, error) {
	entry := &domain.HistoryEntry{
		ID:          uuid.New(),
		Summary:     domain.DepositSummary,
		TargetToken: target,
		Amount:      amount,
		Success:     true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.historyRepo.Append(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("record deposit: %w", err)
	}
	return entry, nil
}

func (s *LedgerServiceImpl) recordTransfer(ctx context.Context, tx pgx.Tx, source, target uuid.UUID, summary string, amount decimal.Decimal, success bool) (*domain.HistoryEntry, error) {
	entry := &domain.HistoryEntry{
		ID:          uuid.New(),
		Summary:     summary,
		SourceToken: &source,
		TargetToken: target,
		Amount:      amount,
		Success:     success,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.historyRepo.Append(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("record transfer: %w", err)
	}
	return entry, nil
}

// HistoryFor returns the entries touching the wallet, newest first.
func (s *LedgerServiceImpl) HistoryFor(ctx context.Context, token uuid.UUID, page ports.Page) ([]domain.HistoryEntry, error) {
	if page.Limit < 0 || page.Offset < 0 {
		return nil, apperror.Validation("limit and offset must not be negative")
	}
	entries, err := s.historyRepo.ListByWallet(ctx, token, page)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("list history: %w", err))
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

// Reconcile replays the wallet's successful entries and compares the result
// with the stored balance.
func (s *LedgerServiceImpl) Reconcile(ctx context.Context, token uuid.UUID) (*ports.Reconciliation, error) {
	wallet, err := s.walletRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	totals, err := s.historyRepo.Totals(ctx, token)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("ledger totals: %w", err))
	}

	ledger := totals.Credits.Sub(totals.Debits)
	rec := &ports.Reconciliation{
		Token:         token,
		StoredBalance: wallet.Balance,
		LedgerBalance: ledger,
		Credits:       totals.Credits,
		Debits:        totals.Debits,
		Consistent:    ledger.Equal(wallet.Balance),
	}

	if !rec.Consistent {
		s.log.Error().
			Str("wallet_token", token.String()).
			Str("stored_balance", wallet.Balance.String()).
			Str("ledger_balance", ledger.String()).
			Msg("wallet balance diverges from ledger")
	}
	return rec, nil
}

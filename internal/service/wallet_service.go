package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	ledger     *LedgerServiceImpl
	transactor ports.DBTransactor
	limits     config.WalletConfig
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	ledger *LedgerServiceImpl,
	transactor ports.DBTransactor,
	limits config.WalletConfig,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		ledger:     ledger,
		transactor: transactor,
		limits:     limits,
		log:        log,
	}
}

// CreateWallet allocates an empty wallet for the owner.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	wallet := domain.NewWallet(ownerID, time.Now().UTC())
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_token", wallet.Token.String()).
		Str("owner_id", ownerID.String()).
		Msg("wallet created")
	return wallet, nil
}

func (s *WalletServiceImpl) CountWalletsForOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	n, err := s.walletRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, apperror.FromStorage(fmt.Errorf("count wallets: %w", err))
	}
	return n, nil
}

// CanCreateNew reports whether the caller is below the wallet limit of its
// role. A limit of 0 means unlimited.
func (s *WalletServiceImpl) CanCreateNew(ctx context.Context, identity domain.Identity) (bool, error) {
	limit := s.limits.MaxByClient
	if identity.Role == domain.RoleCompany {
		limit = s.limits.MaxByCompany
	}
	if limit <= 0 {
		return true, nil
	}

	n, err := s.CountWalletsForOwner(ctx, identity.UserID)
	if err != nil {
		return false, err
	}
	return n < limit, nil
}

// GetByToken looks a wallet up by its external reference. A malformed
// reference is reported exactly like an unknown one.
func (s *WalletServiceImpl) GetByToken(ctx context.Context, rawToken string) (*domain.Wallet, error) {
	token, ok := domain.ParseToken(rawToken)
	if !ok {
		return nil, apperror.ErrWalletNotFound()
	}
	return s.getByToken(ctx, token)
}

func (s *WalletServiceImpl) getByToken(ctx context.Context, token uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return wallet, nil
}

func (s *WalletServiceImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("list wallets: %w", err))
	}
	if wallets == nil {
		wallets = []domain.Wallet{}
	}
	return wallets, nil
}

// GetUniqueByOwner returns the owner's wallet when it has exactly one,
// otherwise nil.
func (s *WalletServiceImpl) GetUniqueByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	wallets, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(wallets) != 1 {
		return nil, nil
	}
	return &wallets[0], nil
}

// Deposit credits the wallet and appends one ledger entry in a single
// transaction.
func (s *WalletServiceImpl) Deposit(ctx context.Context, token uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	if !amount.IsPositive() {
		return nil, apperror.FromValidation(domain.ErrAmountNotPositive)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.walletRepo.AddToBalance(ctx, dbTx, token, amount); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("credit wallet: %w", err))
	}
	entry, err := s.ledger.recordDeposit(ctx, dbTx, token, amount)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_token", token.String()).
		Str("amount", amount.String()).
		Str("entry_id", entry.ID.String()).
		Msg("deposit applied")

	return s.getByToken(ctx, token)
}

// Charge moves amount from the source wallet to target. The source row stays
// locked until commit so concurrent charges against it serialize. When the
// source cannot cover the amount, balances are left alone and a failed entry
// is recorded; the call then returns false with a nil error.
func (s *WalletServiceImpl) Charge(ctx context.Context, target *domain.Wallet, rawSourceToken string, amount decimal.Decimal, summary string) (bool, *domain.Wallet, error) {
	if !amount.IsPositive() {
		return false, nil, apperror.FromValidation(domain.ErrAmountNotPositive)
	}
	sourceToken, ok := domain.ParseToken(rawSourceToken)
	if !ok {
		return false, nil, apperror.ErrWalletNotFound()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, nil, apperror.FromStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	source, err := s.walletRepo.GetByTokenForUpdate(ctx, dbTx, sourceToken)
	if err != nil {
		return false, nil, apperror.FromStorage(fmt.Errorf("lock source wallet: %w", err))
	}
	if source == nil {
		return false, nil, apperror.ErrWalletNotFound()
	}

	success := source.Balance.GreaterThanOrEqual(amount)
	if success {
		if err := s.walletRepo.AddToBalance(ctx, dbTx, source.Token, amount.Neg()); err != nil {
			return false, nil, apperror.FromStorage(fmt.Errorf("debit source: %w", err))
		}
		if err := s.walletRepo.AddToBalance(ctx, dbTx, target.Token, amount); err != nil {
			return false, nil, apperror.FromStorage(fmt.Errorf("credit target: %w", err))
		}
	}

	entry, err := s.ledger.recordTransfer(ctx, dbTx, source.Token, target.Token, summary, amount, success)
	if err != nil {
		return false, nil, apperror.FromStorage(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return false, nil, apperror.FromStorage(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("source_token", source.Token.String()).
		Str("target_token", target.Token.String()).
		Str("amount", amount.String()).
		Str("entry_id", entry.ID.String()).
		Bool("success", success).
		Msg("charge recorded")

	updated, err := s.getByToken(ctx, target.Token)
	if err != nil {
		return false, nil, err
	}
	return success, updated, nil
}

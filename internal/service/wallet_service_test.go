package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc         *WalletServiceImpl
	walletRepo  *mocks.MockWalletRepository
	historyRepo *mocks.MockHistoryRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupWalletService(t *testing.T, limits config.WalletConfig) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo:  mocks.NewMockWalletRepository(ctrl),
		historyRepo: mocks.NewMockHistoryRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	ledger := NewLedgerService(d.historyRepo, d.walletRepo, zerolog.Nop())
	d.svc = NewWalletService(d.walletRepo, ledger, d.transactor, limits, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct {
	pgx.Tx
	commitErr error
	committed bool
}

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

// decimalEq matches decimals by value rather than representation.
type decimalEq struct{ want decimal.Decimal }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func eqDecimal(s string) gomock.Matcher { return decimalEq{want: dec(s)} }

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "decimal equal to " + m.want.String() }

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

// ==================== Deposit Tests ====================

func TestWalletService_Deposit_Success(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	token := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().AddToBalance(ctx, tx, token, eqDecimal("10.00")).Return(nil)
	d.historyRepo.EXPECT().Append(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, e *domain.HistoryEntry) error {
			assert.Equal(t, domain.DepositSummary, e.Summary)
			assert.Nil(t, e.SourceToken)
			assert.Equal(t, token, e.TargetToken)
			assert.True(t, e.Amount.Equal(dec("10.00")))
			assert.True(t, e.Success)
			return nil
		},
	)
	d.walletRepo.EXPECT().GetByToken(ctx, token).Return(&domain.Wallet{Token: token, Balance: dec("10.00")}, nil)

	wallet, err := d.svc.Deposit(ctx, token, dec("10.00"))
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.Equal(t, "10", wallet.Balance.String())
}

func TestWalletService_Deposit_UnknownWallet(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	token := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().AddToBalance(ctx, tx, token, gomock.Any()).
		Return(fmt.Errorf("add to balance: %w", domain.ErrWalletNotFound))

	_, err := d.svc.Deposit(ctx, token, dec("1.00"))
	assertAppError(t, err, "WAL_001")
	assert.False(t, tx.committed)
}

func TestWalletService_Deposit_RejectsNonPositive(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	_, err := d.svc.Deposit(context.Background(), uuid.New(), decimal.Zero)
	assertAppError(t, err, "VAL_001")
}

func TestWalletService_Deposit_Overflow(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	token := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().AddToBalance(ctx, tx, token, gomock.Any()).
		Return(fmt.Errorf("add to balance: %w", domain.ErrBalanceOverflow))

	_, err := d.svc.Deposit(ctx, token, dec("999999.99"))
	assertAppError(t, err, "VAL_001")
}

func TestWalletService_Deposit_CommitConflict(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	token := uuid.New()
	tx := &mockTx{commitErr: fmt.Errorf("commit: %w", domain.ErrConcurrencyConflict)}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().AddToBalance(ctx, tx, token, gomock.Any()).Return(nil)
	d.historyRepo.EXPECT().Append(ctx, tx, gomock.Any()).Return(nil)

	_, err := d.svc.Deposit(ctx, token, dec("5.00"))
	assertAppError(t, err, "SYS_002")
}

func TestWalletService_Deposit_BeginFails(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.transactor.EXPECT().Begin(ctx).Return(nil, errors.New("pool closed"))

	_, err := d.svc.Deposit(ctx, uuid.New(), dec("5.00"))
	assertAppError(t, err, "SYS_001")
}

// ==================== Charge Tests ====================

func TestWalletService_Charge_Success(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	source := &domain.Wallet{Token: uuid.New(), Balance: dec("15.00")}
	target := &domain.Wallet{Token: uuid.New(), Balance: dec("0")}
	tx := &mockTx{}

	gomock.InOrder(
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil),
		d.walletRepo.EXPECT().GetByTokenForUpdate(ctx, tx, source.Token).Return(source, nil),
		d.walletRepo.EXPECT().AddToBalance(ctx, tx, source.Token, eqDecimal("-10.00")).Return(nil),
		d.walletRepo.EXPECT().AddToBalance(ctx, tx, target.Token, eqDecimal("10.00")).Return(nil),
		d.historyRepo.EXPECT().Append(ctx, tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ pgx.Tx, e *domain.HistoryEntry) error {
				require.NotNil(t, e.SourceToken)
				assert.Equal(t, source.Token, *e.SourceToken)
				assert.Equal(t, target.Token, e.TargetToken)
				assert.Equal(t, "Order #1", e.Summary)
				assert.True(t, e.Success)
				return nil
			},
		),
		d.walletRepo.EXPECT().GetByToken(ctx, target.Token).Return(&domain.Wallet{Token: target.Token, Balance: dec("10.00")}, nil),
	)

	ok, updated, err := d.svc.Charge(ctx, target, source.Token.String(), dec("10.00"), "Order #1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, tx.committed)
	assert.True(t, updated.Balance.Equal(dec("10.00")))
}

func TestWalletService_Charge_InsufficientFunds(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	source := &domain.Wallet{Token: uuid.New(), Balance: dec("10.00")}
	target := &domain.Wallet{Token: uuid.New(), Balance: dec("0")}
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByTokenForUpdate(ctx, tx, source.Token).Return(source, nil)
	d.historyRepo.EXPECT().Append(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, e *domain.HistoryEntry) error {
			assert.False(t, e.Success)
			assert.True(t, e.Amount.Equal(dec("15.00")))
			return nil
		},
	)
	d.walletRepo.EXPECT().GetByToken(ctx, target.Token).Return(target, nil)

	ok, updated, err := d.svc.Charge(ctx, target, source.Token.String(), dec("15.00"), "Order #2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, tx.committed, "the failed attempt is still recorded")
	assert.True(t, updated.Balance.IsZero())
}

func TestWalletService_Charge_UnknownSource(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	sourceToken := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByTokenForUpdate(ctx, tx, sourceToken).Return(nil, nil)

	_, _, err := d.svc.Charge(ctx, &domain.Wallet{Token: uuid.New()}, sourceToken.String(), dec("1.00"), "x")
	assertAppError(t, err, "WAL_001")
	assert.False(t, tx.committed)
}

func TestWalletService_Charge_MalformedSource(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	_, _, err := d.svc.Charge(context.Background(), &domain.Wallet{Token: uuid.New()}, "not-a-token", dec("1.00"), "x")
	assertAppError(t, err, "WAL_001")
}

func TestWalletService_Charge_LedgerWriteFails(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	source := &domain.Wallet{Token: uuid.New(), Balance: dec("50.00")}
	target := &domain.Wallet{Token: uuid.New()}
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByTokenForUpdate(ctx, tx, source.Token).Return(source, nil)
	d.walletRepo.EXPECT().AddToBalance(ctx, tx, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.historyRepo.EXPECT().Append(ctx, tx, gomock.Any()).Return(errors.New("disk full"))

	_, _, err := d.svc.Charge(ctx, target, source.Token.String(), dec("5.00"), "x")
	assertAppError(t, err, "SYS_001")
	assert.False(t, tx.committed)
}

// ==================== Lookup Tests ====================

func TestWalletService_GetByToken(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	token := uuid.New()

	d.walletRepo.EXPECT().GetByToken(ctx, token).Return(&domain.Wallet{Token: token}, nil)
	wallet, err := d.svc.GetByToken(ctx, token.String())
	require.NoError(t, err)
	assert.Equal(t, token, wallet.Token)

	missing := uuid.New()
	d.walletRepo.EXPECT().GetByToken(ctx, missing).Return(nil, nil)
	_, err = d.svc.GetByToken(ctx, missing.String())
	assertAppError(t, err, "WAL_001")

	_, err = d.svc.GetByToken(ctx, "garbage")
	assertAppError(t, err, "WAL_001")
}

func TestWalletService_GetUniqueByOwner(t *testing.T) {
	owner := uuid.New()
	one := domain.Wallet{Token: uuid.New(), OwnerID: owner}

	tests := []struct {
		name    string
		wallets []domain.Wallet
		want    *domain.Wallet
	}{
		{"no wallets", nil, nil},
		{"exactly one", []domain.Wallet{one}, &one},
		{"two wallets", []domain.Wallet{one, {Token: uuid.New(), OwnerID: owner}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupWalletService(t, config.WalletConfig{})
			defer d.ctrl.Finish()

			d.walletRepo.EXPECT().ListByOwner(gomock.Any(), owner).Return(tt.wallets, nil)
			got, err := d.svc.GetUniqueByOwner(context.Background(), owner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalletService_CanCreateNew(t *testing.T) {
	limits := config.WalletConfig{MaxByClient: 2, MaxByCompany: 0}

	tests := []struct {
		name   string
		role   domain.Role
		count  int
		counts bool
		want   bool
	}{
		{"client below limit", domain.RoleClient, 1, true, true},
		{"client at limit", domain.RoleClient, 2, true, false},
		{"company unlimited", domain.RoleCompany, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupWalletService(t, limits)
			defer d.ctrl.Finish()

			identity := domain.Identity{UserID: uuid.New(), Role: tt.role}
			if tt.counts {
				d.walletRepo.EXPECT().CountByOwner(gomock.Any(), identity.UserID).Return(tt.count, nil)
			}

			got, err := d.svc.CanCreateNew(context.Background(), identity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalletService_CreateWallet(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	owner := uuid.New()
	d.walletRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, w *domain.Wallet) error {
			assert.Equal(t, owner, w.OwnerID)
			assert.True(t, w.Balance.IsZero())
			assert.NotEqual(t, uuid.Nil, w.Token)
			return nil
		},
	)

	wallet, err := d.svc.CreateWallet(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, owner, wallet.OwnerID)
}

func TestWalletService_ListByOwner_Empty(t *testing.T) {
	d := setupWalletService(t, config.WalletConfig{})
	defer d.ctrl.Finish()

	owner := uuid.New()
	d.walletRepo.EXPECT().ListByOwner(gomock.Any(), owner).Return(nil, nil)

	wallets, err := d.svc.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.NotNil(t, wallets)
	assert.Empty(t, wallets)
}

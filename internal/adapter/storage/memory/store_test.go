package memory

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedWallet(t *testing.T, repo *WalletRepo, balance string) *domain.Wallet {
	t.Helper()
	w := domain.NewWallet(uuid.New(), time.Now().UTC())
	w.Balance = dec(balance)
	require.NoError(t, repo.Create(context.Background(), w))
	return w
}

func TestTx_CommitAppliesAllWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	wallets := NewWalletRepo(store)
	history := NewHistoryRepo(store)
	w := seedWallet(t, wallets, "0")

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, wallets.AddToBalance(ctx, tx, w.Token, dec("10.00")))
	require.NoError(t, history.Append(ctx, tx, &domain.HistoryEntry{
		ID: uuid.New(), Summary: domain.DepositSummary, TargetToken: w.Token,
		Amount: dec("10.00"), Success: true, CreatedAt: time.Now().UTC(),
	}))

	// Nothing is visible before commit.
	got, _ := wallets.GetByToken(ctx, w.Token)
	assert.True(t, got.Balance.IsZero())
	entries, _ := history.ListByWallet(ctx, w.Token, ports.Page{})
	assert.Empty(t, entries)

	require.NoError(t, tx.Commit(ctx))

	got, _ = wallets.GetByToken(ctx, w.Token)
	assert.True(t, dec("10.00").Equal(got.Balance))
	entries, _ = history.ListByWallet(ctx, w.Token, ports.Page{})
	assert.Len(t, entries, 1)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	wallets := NewWalletRepo(store)
	history := NewHistoryRepo(store)
	w := seedWallet(t, wallets, "5.00")

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, wallets.AddToBalance(ctx, tx, w.Token, dec("-5.00")))
	require.NoError(t, history.Append(ctx, tx, &domain.HistoryEntry{
		ID: uuid.New(), Summary: "fee", TargetToken: w.Token,
		Amount: dec("5.00"), Success: true, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, tx.Rollback(ctx))

	got, _ := wallets.GetByToken(ctx, w.Token)
	assert.True(t, dec("5.00").Equal(got.Balance))
	entries, _ := history.ListByWallet(ctx, w.Token, ports.Page{})
	assert.Empty(t, entries)

	// Closed transactions reject further use.
	assert.Error(t, tx.Commit(ctx))
	assert.Error(t, wallets.AddToBalance(ctx, tx, w.Token, dec("1.00")))
}

func TestWalletRepo_GetByTokenForUpdate_BlocksSecondLocker(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	wallets := NewWalletRepo(store)
	w := seedWallet(t, wallets, "10.00")

	tx1, _ := store.Begin(ctx)
	_, err := wallets.GetByTokenForUpdate(ctx, tx1, w.Token)
	require.NoError(t, err)
	require.NoError(t, wallets.AddToBalance(ctx, tx1, w.Token, dec("-10.00")))

	locked := make(chan *domain.Wallet)
	go func() {
		tx2, _ := store.Begin(ctx)
		defer tx2.Rollback(ctx) //nolint:errcheck
		got, _ := wallets.GetByTokenForUpdate(ctx, tx2, w.Token)
		locked <- got
	}()

	select {
	case <-locked:
		t.Fatal("second transaction acquired a held row lock")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, tx1.Commit(ctx))

	select {
	case got := <-locked:
		require.NotNil(t, got)
		assert.True(t, got.Balance.IsZero(), "second locker sees the committed debit")
	case <-time.After(time.Second):
		t.Fatal("row lock was not released on commit")
	}
}

func TestWalletRepo_GetByTokenForUpdate_ContextCancelled(t *testing.T) {
	store := NewStore()
	wallets := NewWalletRepo(store)
	w := seedWallet(t, wallets, "1.00")

	tx1, _ := store.Begin(context.Background())
	_, err := wallets.GetByTokenForUpdate(context.Background(), tx1, w.Token)
	require.NoError(t, err)
	defer tx1.Rollback(context.Background()) //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	tx2, _ := store.Begin(context.Background())
	_, err = wallets.GetByTokenForUpdate(ctx, tx2, w.Token)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWalletRepo_GetByTokenForUpdate_Missing(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tx, _ := store.Begin(ctx)

	got, err := NewWalletRepo(store).GetByTokenForUpdate(ctx, tx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestWalletRepo_AddToBalance_Constraints(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	wallets := NewWalletRepo(store)
	w := seedWallet(t, wallets, "9999999999.00")

	tx, _ := store.Begin(ctx)
	defer tx.Rollback(ctx) //nolint:errcheck

	assert.ErrorIs(t, wallets.AddToBalance(ctx, tx, w.Token, dec("1.00")), domain.ErrBalanceOverflow)
	assert.ErrorIs(t, wallets.AddToBalance(ctx, tx, w.Token, dec("-9999999999.01")), errCheckViolation)
	assert.ErrorIs(t, wallets.AddToBalance(ctx, tx, uuid.New(), dec("1.00")), domain.ErrWalletNotFound)
	assert.NoError(t, wallets.AddToBalance(ctx, tx, w.Token, dec("0.99")))
}

func TestWalletRepo_ListAndCountByOwner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	wallets := NewWalletRepo(store)
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, wallets.Create(ctx, domain.NewWallet(owner, time.Now().UTC())))
	}
	seedWallet(t, wallets, "0")

	list, err := wallets.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	count, err := wallets.CountByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	empty, err := wallets.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestWalletRepo_CreateDuplicate(t *testing.T) {
	store := NewStore()
	wallets := NewWalletRepo(store)
	w := seedWallet(t, wallets, "0")

	assert.ErrorIs(t, wallets.Create(context.Background(), w), domain.ErrAlreadyExists)
}

func TestHistoryRepo_ListByWallet_OrderAndPaging(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	wallets := NewWalletRepo(store)
	history := NewHistoryRepo(store)
	a := seedWallet(t, wallets, "100.00")
	b := seedWallet(t, wallets, "0")

	base := time.Now().UTC()
	t1 := domain.HistoryEntry{ID: uuid.New(), Summary: domain.DepositSummary, TargetToken: a.Token,
		Amount: dec("1.00"), Success: true, CreatedAt: base}
	t2 := domain.HistoryEntry{ID: uuid.New(), Summary: "fee", SourceToken: &a.Token, TargetToken: b.Token,
		Amount: dec("2.00"), Success: true, CreatedAt: base.Add(time.Second)}
	t3 := domain.HistoryEntry{ID: uuid.New(), Summary: "fee", SourceToken: &a.Token, TargetToken: b.Token,
		Amount: dec("3.00"), Success: false, CreatedAt: base.Add(2 * time.Second)}

	// Commit out of timestamp order.
	for _, e := range []domain.HistoryEntry{t2, t3, t1} {
		tx, _ := store.Begin(ctx)
		require.NoError(t, history.Append(ctx, tx, &e))
		require.NoError(t, tx.Commit(ctx))
	}

	all, err := history.ListByWallet(ctx, a.Token, ports.Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{t3.ID, t2.ID, t1.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	forB, err := history.ListByWallet(ctx, b.Token, ports.Page{})
	require.NoError(t, err)
	assert.Len(t, forB, 2)

	page, err := history.ListByWallet(ctx, a.Token, ports.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, t2.ID, page[0].ID)

	beyond, err := history.ListByWallet(ctx, a.Token, ports.Page{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestHistoryRepo_Totals_IgnoresFailedEntries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	wallets := NewWalletRepo(store)
	history := NewHistoryRepo(store)
	a := seedWallet(t, wallets, "0")
	b := seedWallet(t, wallets, "0")

	entries := []domain.HistoryEntry{
		{ID: uuid.New(), Summary: domain.DepositSummary, TargetToken: a.Token, Amount: dec("10.00"), Success: true},
		{ID: uuid.New(), Summary: "fee", SourceToken: &a.Token, TargetToken: b.Token, Amount: dec("4.00"), Success: true},
		{ID: uuid.New(), Summary: "fee", SourceToken: &a.Token, TargetToken: b.Token, Amount: dec("50.00"), Success: false},
	}
	tx, _ := store.Begin(ctx)
	for i := range entries {
		require.NoError(t, history.Append(ctx, tx, &entries[i]))
	}
	require.NoError(t, tx.Commit(ctx))

	totals, err := history.Totals(ctx, a.Token)
	require.NoError(t, err)
	assert.True(t, dec("10.00").Equal(totals.Credits))
	assert.True(t, dec("4.00").Equal(totals.Debits))
}

func TestHistoryRepo_Append_RejectsUnknownWallet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tx, _ := store.Begin(ctx)

	err := NewHistoryRepo(store).Append(ctx, tx, &domain.HistoryEntry{
		ID: uuid.New(), Summary: domain.DepositSummary, TargetToken: uuid.New(), Amount: dec("1.00"),
	})
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestUserRepo_EmailIsUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(NewStore())

	u := &domain.User{ID: uuid.New(), Email: "Ada@Example.com", Role: domain.RoleClient}
	require.NoError(t, users.Create(ctx, u))

	dup := &domain.User{ID: uuid.New(), Email: "ada@example.com", Role: domain.RoleCompany}
	assert.ErrorIs(t, users.Create(ctx, dup), domain.ErrAlreadyExists)

	got, err := users.GetByEmail(ctx, "ADA@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	missing, err := users.GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAuditRepo_Entries(t *testing.T) {
	repo := NewAuditRepo(NewStore())
	require.NoError(t, repo.Create(context.Background(), &domain.AuditLog{ID: uuid.New(), Action: domain.AuditActionLogin}))
	require.NoError(t, repo.Create(context.Background(), &domain.AuditLog{ID: uuid.New(), Action: domain.AuditActionLogout}))

	entries := repo.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionLogin, entries[0].Action)
}

func TestStore_Health(t *testing.T) {
	store := NewStore()
	assert.Equal(t, "memory", store.Name())
	assert.NoError(t, store.Ping(context.Background()))
}

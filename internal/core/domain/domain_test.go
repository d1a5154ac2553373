package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"smallest unit", "0.01", "0.01", nil},
		{"integer", "10", "10", nil},
		{"two decimals", "15.00", "15", nil},
		{"json string", `"5.25"`, "5.25", nil},
		{"trailing zeros beyond scale", "1.500", "1.5", nil},
		{"maximum", "999999.99", "999999.99", nil},
		{"zero", "0", "", ErrAmountNotPositive},
		{"negative cent", "-0.01", "", ErrAmountNotPositive},
		{"negative zero", "-0.00", "", ErrAmountNotPositive},
		{"not a number", "ten", "", ErrAmountNotANumber},
		{"empty", "", "", ErrAmountNotANumber},
		{"garbage suffix", "10abc", "", ErrAmountNotANumber},
		{"three decimals", "0.001", "", ErrAmountPrecision},
		{"too large", "1000000", "", ErrAmountTooLarge},
		{"exponent notation", "1.5e2", "150", nil},
		{"exponent with trailing zeros", "1000e-3", "1", nil},
		{"exponent too precise", "1e-3", "", ErrAmountPrecision},
		{"huge exponent", "1e2000000000", "", ErrAmountTooLarge},
		{"huge negative exponent", "1e-2000000000", "", ErrAmountPrecision},
		{"long literal", strings.Repeat("9", 64), "", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseAmount_ExtremeExponentsRejectedQuickly(t *testing.T) {
	for _, raw := range []string{"1e2000000000", "1e-2000000000", "9e20000000", `"1E2147483647"`} {
		start := time.Now()
		_, err := ParseAmount(raw)
		assert.Error(t, err, raw)
		assert.Less(t, time.Since(start), 100*time.Millisecond, raw)
	}
}

func TestParseAmount_NotANumberDistinctFromNonPositive(t *testing.T) {
	_, nanErr := ParseAmount("abc")
	_, zeroErr := ParseAmount("0")
	assert.NotEqual(t, nanErr, zeroErr)
}

func TestValidateSummary(t *testing.T) {
	assert.NoError(t, ValidateSummary("Monthly fee"))
	assert.NoError(t, ValidateSummary(strings.Repeat("a", MaxSummaryLength)))
	assert.ErrorIs(t, ValidateSummary("   "), ErrSummaryRequired)
	assert.ErrorIs(t, ValidateSummary(strings.Repeat("a", MaxSummaryLength+1)), ErrSummaryTooLong)
	// Length is counted in characters, not bytes.
	assert.NoError(t, ValidateSummary(strings.Repeat("é", MaxSummaryLength)))
}

func TestNewWallet(t *testing.T) {
	owner := uuid.New()
	now := time.Now().UTC()

	w1 := NewWallet(owner, now)
	w2 := NewWallet(owner, now)

	assert.True(t, w1.Balance.IsZero())
	assert.Equal(t, owner, w1.OwnerID)
	assert.NotEqual(t, w1.Token, w2.Token)
	assert.True(t, w1.IsOwnedBy(owner))
	assert.False(t, w1.IsOwnedBy(uuid.New()))
	assert.Equal(t, WalletView{Token: w1.Token, Balance: decimal.Zero}, w1.View())
}

func TestParseToken(t *testing.T) {
	token := uuid.New()

	got, ok := ParseToken(token.String())
	assert.True(t, ok)
	assert.Equal(t, token, got)

	_, ok = ParseToken("not-a-token")
	assert.False(t, ok)
}

func TestHistoryEntry_NetEffectOn(t *testing.T) {
	source := uuid.New()
	target := uuid.New()
	amount := decimal.RequireFromString("10.00")

	transfer := &HistoryEntry{SourceToken: &source, TargetToken: target, Amount: amount, Success: true}
	assert.True(t, transfer.NetEffectOn(target).Equal(amount))
	assert.True(t, transfer.NetEffectOn(source).Equal(amount.Neg()))
	assert.True(t, transfer.NetEffectOn(uuid.New()).IsZero())
	assert.False(t, transfer.IsDeposit())

	failed := &HistoryEntry{SourceToken: &source, TargetToken: target, Amount: amount, Success: false}
	assert.True(t, failed.NetEffectOn(target).IsZero())
	assert.True(t, failed.NetEffectOn(source).IsZero())

	deposit := &HistoryEntry{Summary: DepositSummary, TargetToken: target, Amount: amount, Success: true}
	assert.True(t, deposit.IsDeposit())
	assert.True(t, deposit.NetEffectOn(target).Equal(amount))
}

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{"client", RoleClient, true},
		{"company", RoleCompany, true},
		{"unknown", Role("ADMIN"), false},
		{"empty", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Valid())
		})
	}
}

func TestUser_Identity(t *testing.T) {
	u := &User{ID: uuid.New(), Role: RoleCompany}
	assert.Equal(t, Identity{UserID: u.ID, Role: RoleCompany}, u.Identity())
}

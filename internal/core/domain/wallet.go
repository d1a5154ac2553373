package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxBalance is the largest balance a wallet can hold: NUMERIC(12,2).
var MaxBalance = decimal.RequireFromString("9999999999.99")

// Wallet holds a single-currency balance owned by exactly one user.
// Token is both the primary key and the external reference.
type Wallet struct {
	Token     uuid.UUID       `json:"token"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WalletView is the projection handed to the boundary layer.
type WalletView struct {
	Token   uuid.UUID       `json:"wallet"`
	Balance decimal.Decimal `json:"balance"`
}

// NewWallet allocates an empty wallet for the owner with a fresh random token.
func NewWallet(ownerID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{
		Token:     uuid.New(),
		OwnerID:   ownerID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// View returns the external projection of the wallet.
func (w *Wallet) View() WalletView {
	return WalletView{Token: w.Token, Balance: w.Balance}
}

// IsOwnedBy reports whether the user owns this wallet.
func (w *Wallet) IsOwnedBy(userID uuid.UUID) bool {
	return w.OwnerID == userID
}

// ParseToken parses an external wallet reference.
// Callers treat a parse failure exactly like an unknown wallet.
func ParseToken(raw string) (uuid.UUID, bool) {
	token, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return token, true
}

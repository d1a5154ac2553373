package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositSummary labels every deposit entry.
const DepositSummary = "Deposit"

// HistoryEntry is an immutable ledger record of a deposit or transfer attempt.
// A failed charge is recorded with Success=false and moves no money.
type HistoryEntry struct {
	ID          uuid.UUID       `json:"id"`
	Summary     string          `json:"summary"`
	SourceToken *uuid.UUID      `json:"source,omitempty"` // nil for deposits
	TargetToken uuid.UUID       `json:"target"`
	Amount      decimal.Decimal `json:"amount"`
	Success     bool            `json:"success"`
	CreatedAt   time.Time       `json:"date"`
}

// IsDeposit reports whether the entry has no debited wallet.
func (h *HistoryEntry) IsDeposit() bool {
	return h.SourceToken == nil
}

// NetEffectOn returns the signed balance change this entry applied to the
// given wallet. Failed entries and unrelated wallets yield zero.
func (h *HistoryEntry) NetEffectOn(token uuid.UUID) decimal.Decimal {
	if !h.Success {
		return decimal.Zero
	}
	net := decimal.Zero
	if h.TargetToken == token {
		net = net.Add(h.Amount)
	}
	if h.SourceToken != nil && *h.SourceToken == token {
		net = net.Sub(h.Amount)
	}
	return net
}

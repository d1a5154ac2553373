package dto

import (
	"encoding/json"
	"time"

	"wallet-ledger/internal/core/domain"
)

// RegisterRequest is the request body for client registration.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
	FirstName   string `json:"first_name" binding:"required,max=35"`
	LastName    string `json:"last_name" binding:"required,max=35"`
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
}

// CompanyRegisterRequest is the request body for company registration.
type CompanyRegisterRequest struct {
	RegisterRequest
	CompanyName string `json:"company_name" binding:"required,max=35"`
	CompanyURL  string `json:"company_url" binding:"required,max=70,safe_url" sanitize:"trim"`
}

// LoginRequest is the request body for login on either role route.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// UserResponse is the public view of a registered account.
type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	PhoneNumber string      `json:"phone_number"`
	CompanyName *string     `json:"company_name,omitempty"`
	CompanyURL  *string     `json:"company_url,omitempty"`
}

// NewUserResponse projects a user for the boundary.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Role:        u.Role,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		CompanyName: u.CompanyName,
		CompanyURL:  u.CompanyURL,
	}
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string      `json:"token"`
	Expiry int64       `json:"expiry"` // Unix timestamp
	Role   domain.Role `json:"role"`
}

// DepositRequest is the request body for a deposit. Amount is kept raw so
// that a non-numeric value can be told apart from a non-positive one.
type DepositRequest struct {
	Wallet string          `json:"wallet" binding:"required"`
	Amount json.RawMessage `json:"amount" binding:"required"`
}

// ChargeRequest is the request body for a company charging a wallet.
type ChargeRequest struct {
	Wallet  string          `json:"wallet" binding:"required"`
	Amount  json.RawMessage `json:"amount" binding:"required"`
	Summary string          `json:"summary" sanitize:"trim"`
}

// HistoryQuery selects a page of a wallet's history. Zero limit returns all.
type HistoryQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=0,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// WalletListResponse wraps the caller's wallets.
type WalletListResponse struct {
	Wallets []domain.WalletView `json:"wallets"`
}

// NewWalletListResponse projects wallets for the boundary.
func NewWalletListResponse(wallets []domain.Wallet) WalletListResponse {
	views := make([]domain.WalletView, 0, len(wallets))
	for i := range wallets {
		views = append(views, wallets[i].View())
	}
	return WalletListResponse{Wallets: views}
}

// HistoryView is one ledger entry as shown to wallet owners.
type HistoryView struct {
	Summary   string  `json:"summary"`
	Source    *string `json:"source,omitempty"`
	Target    string  `json:"target"`
	Amount    string  `json:"amount"`
	Timestamp string  `json:"timestamp"`
	Success   bool    `json:"success"`
}

// HistoryResponse wraps a page of history, newest first.
type HistoryResponse struct {
	Wallet    string        `json:"wallet"`
	Histories []HistoryView `json:"histories"`
}

// NewHistoryResponse projects ledger entries for the boundary.
func NewHistoryResponse(wallet string, entries []domain.HistoryEntry) HistoryResponse {
	views := make([]HistoryView, 0, len(entries))
	for _, e := range entries {
		v := HistoryView{
			Summary:   e.Summary,
			Target:    e.TargetToken.String(),
			Amount:    e.Amount.StringFixed(domain.AmountDecimalPlaces),
			Timestamp: e.CreatedAt.UTC().Format(time.RFC3339Nano),
			Success:   e.Success,
		}
		if e.SourceToken != nil {
			source := e.SourceToken.String()
			v.Source = &source
		}
		views = append(views, v)
	}
	return HistoryResponse{Wallet: wallet, Histories: views}
}

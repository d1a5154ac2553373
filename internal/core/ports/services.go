package ports

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(identity domain.Identity) (string, *TokenClaims, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	TokenID   string
	UserID    uuid.UUID
	Role      domain.Role
	ExpiresAt time.Time
}

// Identity returns the caller identity carried by the token.
func (c *TokenClaims) Identity() domain.Identity {
	return domain.Identity{UserID: c.UserID, Role: c.Role}
}

// TokenRevocationStore remembers logged-out tokens until they expire.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimiter counts requests per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, rule RateLimitRule) (*RateLimitResult, error)
}

// --- Service Ports (Business Logic) ---

// WalletService is the wallet store: identity, balance and the two mutations.
type WalletService interface {
	CreateWallet(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error)
	CountWalletsForOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	CanCreateNew(ctx context.Context, identity domain.Identity) (bool, error)
	GetByToken(ctx context.Context, rawToken string) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error)
	GetUniqueByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error)
	Deposit(ctx context.Context, token uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
	// Charge moves amount from the source wallet to target when the source can
	// cover it. The bool is false when funds were insufficient; the attempt is
	// still recorded.
	Charge(ctx context.Context, target *domain.Wallet, rawSourceToken string, amount decimal.Decimal, summary string) (bool, *domain.Wallet, error)
}

// LedgerService answers questions about the history log.
type LedgerService interface {
	HistoryFor(ctx context.Context, token uuid.UUID, page Page) ([]domain.HistoryEntry, error)
	Reconcile(ctx context.Context, token uuid.UUID) (*Reconciliation, error)
}

// Reconciliation compares a stored balance with the ledger replay.
type Reconciliation struct {
	Token         uuid.UUID       `json:"wallet"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Credits       decimal.Decimal `json:"credits"`
	Debits        decimal.Decimal `json:"debits"`
	Consistent    bool            `json:"consistent"`
}

// AuthService defines account registration and session logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, claims *TokenClaims) error
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Role        domain.Role
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	CompanyName *string
	CompanyURL  *string
}

// LoginRequest holds credentials presented on a role-specific login route.
type LoginRequest struct {
	Role     domain.Role
	Email    string
	Password string
}

// LoginResult holds an issued session token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes individual from organizational account holders.
type Role string

const (
	RoleClient  Role = "CLIENT"
	RoleCompany Role = "COMPANY"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleCompany
}

// User is a registered account holder. Company fields are set only for
// RoleCompany users.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	Role         Role      `json:"role"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	CompanyName  *string   `json:"company_name,omitempty"`
	CompanyURL   *string   `json:"company_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller as seen by the wallet core.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Identity returns the caller identity for this user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role}
}

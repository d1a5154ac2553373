package memory

import (
	"context"
	"fmt"
	"strings"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// UserRepo implements ports.UserRepository on a Store.
type UserRepo struct {
	store *Store
}

// NewUserRepo creates a user repository over the store.
func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("insert user: %w", domain.ErrAlreadyExists)
		}
	}
	stored := *u
	r.store.users[u.ID] = &stored
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

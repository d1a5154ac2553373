package memory

import (
	"context"

	"wallet-ledger/internal/core/domain"
)

// AuditRepo implements ports.AuditRepository on a Store.
type AuditRepo struct {
	store *Store
}

// NewAuditRepo creates an audit repository over the store.
func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{store: store}
}

func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audit = append(r.store.audit, *log)
	return nil
}

// Entries returns a snapshot of recorded audit logs in insertion order.
func (r *AuditRepo) Entries() []domain.AuditLog {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.AuditLog, len(r.store.audit))
	copy(out, r.store.audit)
	return out
}

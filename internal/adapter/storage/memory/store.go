// Package memory keeps wallets, history, users and audit records in process
// memory. It honours the same transaction contract as the PostgreSQL
// adapter: row locks on FOR UPDATE reads and all-or-nothing commits.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// errCheckViolation mirrors the balance >= 0 / amount > 0 CHECK constraints.
var errCheckViolation = errors.New("memory: check constraint violated")

type historyRow struct {
	seq   int64
	entry domain.HistoryEntry
}

// Store is the shared state behind the memory repositories.
type Store struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
	history []historyRow
	seq     int64
	users   map[uuid.UUID]*domain.User
	audit   []domain.AuditLog

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		wallets: make(map[uuid.UUID]*domain.Wallet),
		users:   make(map[uuid.UUID]*domain.User),
		locks:   make(map[uuid.UUID]chan struct{}),
	}
}

// Begin implements ports.DBTransactor.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:  s,
		held:   make(map[uuid.UUID]chan struct{}),
		deltas: make(map[uuid.UUID]decimal.Decimal),
	}, nil
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memory"
}

// rowLock returns the lock channel for a wallet row, creating it on first use.
// A send acquires the lock, a receive releases it.
func (s *Store) rowLock(token uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[token]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[token] = ch
	}
	return ch
}

func (s *Store) walletExists(token uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.wallets[token]
	return ok
}

// apply commits a transaction's buffered writes under the store mutex.
// Either every delta and entry lands or none does.
func (s *Store) apply(deltas map[uuid.UUID]decimal.Decimal, entries []domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[uuid.UUID]decimal.Decimal, len(deltas))
	for token, delta := range deltas {
		w, ok := s.wallets[token]
		if !ok {
			return fmt.Errorf("apply delta %s: %w", token, domain.ErrWalletNotFound)
		}
		balance := w.Balance.Add(delta)
		if balance.IsNegative() {
			return fmt.Errorf("wallet %s: %w", token, errCheckViolation)
		}
		if balance.GreaterThan(domain.MaxBalance) {
			return fmt.Errorf("wallet %s: %w", token, domain.ErrBalanceOverflow)
		}
		next[token] = balance
	}

	for token, balance := range next {
		w := s.wallets[token]
		w.Balance = balance
		w.UpdatedAt = nowUTC()
	}
	for _, e := range entries {
		s.seq++
		s.history = append(s.history, historyRow{seq: s.seq, entry: e})
	}
	return nil
}

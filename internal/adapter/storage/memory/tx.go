package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var errNoSQL = errors.New("memory: SQL is not supported by the in-memory store")

// Tx buffers balance deltas and history entries until Commit. Rows read
// with FOR UPDATE semantics stay locked until Commit or Rollback.
type Tx struct {
	store   *Store
	held    map[uuid.UUID]chan struct{}
	deltas  map[uuid.UUID]decimal.Decimal
	entries []domain.HistoryEntry
	closed  bool
}

func txFrom(tx pgx.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: foreign transaction %T", tx)
	}
	if t.closed {
		return nil, pgx.ErrTxClosed
	}
	return t, nil
}

// lock blocks until this transaction owns the wallet row or ctx is done.
func (t *Tx) lock(ctx context.Context, token uuid.UUID) error {
	if _, ok := t.held[token]; ok {
		return nil
	}
	ch := t.store.rowLock(token)
	select {
	case ch <- struct{}{}:
		t.held[token] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tx) release() {
	for token, ch := range t.held {
		<-ch
		delete(t.held, token)
	}
	t.closed = true
}

// pending returns the uncommitted delta this transaction holds for token.
func (t *Tx) pending(token uuid.UUID) decimal.Decimal {
	if d, ok := t.deltas[token]; ok {
		return d
	}
	return decimal.Zero
}

// Commit applies buffered writes atomically and releases row locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	defer t.release()
	return t.store.apply(t.deltas, t.entries)
}

// Rollback discards buffered writes and releases row locks.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.deltas = nil
	t.entries = nil
	t.release()
	return nil
}

// Begin rejects nested transactions.
func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("memory: nested transactions are not supported")
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errNoSQL
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *Tx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errNoSQL
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errNoSQL
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errNoSQL
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

func (t *Tx) Conn() *pgx.Conn { return nil }

type errRow struct{}

func (errRow) Scan(dest ...any) error { return errNoSQL }

func nowUTC() time.Time {
	return time.Now().UTC()
}

package postgres

import (
	"context"
	"errors"
	"testing"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_Commit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := NewTransactor(mock).Begin(context.Background())
	require.NoError(t, err)
	assert.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_CommitSerializationFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: codeSerializationFailure})

	tx, err := NewTransactor(mock).Begin(context.Background())
	require.NoError(t, err)

	err = tx.Commit(context.Background())
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Rollback(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := NewTransactor(mock).Begin(context.Background())
	require.NoError(t, err)
	assert.NoError(t, tx.Rollback(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	tx, err := NewTransactor(mock).Begin(context.Background())
	assert.Nil(t, tx)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"deadlock", codeDeadlockDetected, domain.ErrConcurrencyConflict},
		{"serialization", codeSerializationFailure, domain.ErrConcurrencyConflict},
		{"overflow", codeNumericOverflow, domain.ErrBalanceOverflow},
		{"unique", codeUniqueViolation, domain.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(&pgconn.PgError{Code: tt.code}), tt.want)
		})
	}

	plain := errors.New("plain")
	assert.Equal(t, plain, classify(plain))
	assert.Equal(t, "23514", classify(&pgconn.PgError{Code: "23514"}).(*pgconn.PgError).Code)
}

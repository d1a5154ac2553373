package domain

import "errors"

var (
	// ErrAmountNotANumber is returned when an amount is not an exact decimal literal.
	ErrAmountNotANumber = errors.New("amount must be a number")

	// ErrAmountNotPositive is returned for zero or negative amounts.
	ErrAmountNotPositive = errors.New("amount must be greater than 0")

	// ErrAmountPrecision is returned when an amount has more than two fractional digits.
	ErrAmountPrecision = errors.New("amount must have at most 2 decimal places")

	// ErrAmountTooLarge is returned when an amount exceeds MaxAmount.
	ErrAmountTooLarge = errors.New("amount exceeds the maximum allowed")

	// ErrSummaryRequired is returned for a blank charge summary.
	ErrSummaryRequired = errors.New("summary is required")

	// ErrSummaryTooLong is returned when a summary exceeds MaxSummaryLength.
	ErrSummaryTooLong = errors.New("summary must be at most 70 characters")

	// ErrWalletNotFound is returned by storage when no wallet has the token.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrAlreadyExists is returned by storage on a unique key collision.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrBalanceOverflow means a credit would push a balance past MaxBalance.
	ErrBalanceOverflow = errors.New("wallet balance limit exceeded")

	// ErrConcurrencyConflict marks a commit aborted by the storage engine
	// (deadlock, serialization failure). Nothing was applied; safe to retry.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

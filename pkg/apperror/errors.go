package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"wallet-ledger/internal/core/domain"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet (WAL) ----

func ErrWalletNotFound() *AppError {
	return New("WAL_001", "Wallet not found", http.StatusNotFound)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_002", "Insufficient funds in source wallet", http.StatusPaymentRequired)
}

func ErrWalletLimitExceeded() *AppError {
	return New("WAL_003", "Wallet limit exceeded for this account", http.StatusForbidden)
}

func ErrNotWalletOwner() *AppError {
	return New("WAL_004", "Wallet does not belong to the caller", http.StatusForbidden)
}

func ErrNoUniqueWallet() *AppError {
	return New("WAL_005", "Charging requires exactly one wallet on the account", http.StatusForbidden)
}

func ErrSelfCharge() *AppError {
	return New("WAL_006", "A wallet cannot charge itself", http.StatusBadRequest)
}

// ---- Validation (VAL) ----

// Validation returns a generic request validation error.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}

func ErrAmountNotANumber() *AppError {
	return New("VAL_002", domain.ErrAmountNotANumber.Error(), http.StatusBadRequest)
}

// amountFaults are reported as VAL_001 with the sentinel's own message.
var amountFaults = []error{
	domain.ErrAmountNotPositive,
	domain.ErrAmountPrecision,
	domain.ErrAmountTooLarge,
	domain.ErrSummaryRequired,
	domain.ErrSummaryTooLong,
	domain.ErrBalanceOverflow,
}

// FromValidation maps domain validation sentinels to their AppError.
// Errors that are not validation faults are returned as an internal error.
func FromValidation(err error) *AppError {
	if errors.Is(err, domain.ErrAmountNotANumber) {
		return ErrAmountNotANumber()
	}
	for _, fault := range amountFaults {
		if errors.Is(err, fault) {
			return Wrap("VAL_001", fault.Error(), http.StatusBadRequest, err)
		}
	}
	return InternalError(err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountDisabled() *AppError {
	return New("AUTH_004", "Account is disabled", http.StatusForbidden)
}

func ErrForbiddenRole() *AppError {
	return New("AUTH_005", "Operation not permitted for this account type", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrConcurrencyConflict means the storage engine aborted the transaction.
// Nothing was applied; the request is safe to retry unchanged.
func ErrConcurrencyConflict(err error) *AppError {
	return Wrap("SYS_002", "Concurrent update conflict, retry the request", http.StatusConflict, err)
}

// FromStorage classifies an error raised while talking to storage.
func FromStorage(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domain.ErrWalletNotFound):
		return ErrWalletNotFound()
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return ErrConcurrencyConflict(err)
	case errors.Is(err, domain.ErrBalanceOverflow):
		return FromValidation(err)
	default:
		return InternalError(err)
	}
}

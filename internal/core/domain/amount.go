package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// AmountDecimalPlaces is the scale shared by deposit and charge amounts.
	AmountDecimalPlaces = 2

	// MaxSummaryLength bounds the free-text label of a history entry.
	MaxSummaryLength = 70

	maxAmountIntegerDigits = 6
	maxAmountLiteral       = 32
)

// MaxAmount is the largest single deposit or charge: NUMERIC(8,2).
var MaxAmount = decimal.RequireFromString("999999.99")

// ParseAmount validates a deposit or charge amount.
// Non-numeric input yields ErrAmountNotANumber, which callers keep distinct
// from the zero/negative case (ErrAmountNotPositive).
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrAmountNotANumber
	}
	// JSON strings arrive quoted when the raw message is passed through.
	raw = strings.Trim(raw, `"`)

	if len(raw) > maxAmountLiteral {
		return decimal.Zero, ErrAmountTooLarge
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountNotANumber
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	// Bound the scale from the digits alone. Round and Cmp rescale by
	// 10^exponent, and exponent notation admits exponents near 2^31.
	digits := amount.Coefficient().String()
	significant := strings.TrimRight(digits, "0")
	if int64(amount.Exponent())+int64(len(digits)-len(significant)) < -AmountDecimalPlaces {
		return decimal.Zero, ErrAmountPrecision
	}
	if int64(amount.Exponent())+int64(len(digits)) > maxAmountIntegerDigits {
		return decimal.Zero, ErrAmountTooLarge
	}
	if !amount.Equal(amount.Round(AmountDecimalPlaces)) {
		return decimal.Zero, ErrAmountPrecision
	}
	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return amount.Round(AmountDecimalPlaces), nil
}

// ValidateSummary checks the free-text label of a charge.
func ValidateSummary(summary string) error {
	if strings.TrimSpace(summary) == "" {
		return ErrSummaryRequired
	}
	if utf8.RuneCountInString(summary) > MaxSummaryLength {
		return ErrSummaryTooLong
	}
	return nil
}

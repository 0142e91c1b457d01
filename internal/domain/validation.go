package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxEntryAmount   = "1000000000000" // 1 trillion
	DefaultPageSize  = 20
	MaxPageSize      = 100
	MaxCartLines     = 100
	MaxPaymentRefLen = 255

	// MoneyScale is the number of decimal places every stored amount carries.
	MoneyScale int32 = 2
)

var (
	maxEntryAmount = decimal.RequireFromString(MaxEntryAmount)
	hundred        = decimal.NewFromInt(100)
)

// RoundMoney rounds d half away from zero to MoneyScale places, the same rule
// Postgres applies when it stores a NUMERIC(20,2).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// HasMoneyScale reports whether d is representable without rounding.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(RoundMoney(d))
}

// ValidateAmount validates a ledger amount. decimal.Decimal cannot hold NaN or
// infinities, so positivity, scale and the upper bound are the only checks left.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !HasMoneyScale(amount) {
		return fmt.Errorf("%w: got %s", ErrInvalidMoneyScale, amount.String())
	}

	if amount.GreaterThan(maxEntryAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxEntryAmount)
	}

	return nil
}

// ValidatePercentage checks that p lies in [0, 100].
func ValidatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidPercentage, p.String())
	}
	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// ValidatePaymentRef validates a gateway payment reference.
func ValidatePaymentRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrMissingPaymentRef
	}
	if len(ref) > MaxPaymentRefLen {
		return fmt.Errorf("%w: payment reference exceeds %d characters", ErrValidation, MaxPaymentRefLen)
	}
	return nil
}

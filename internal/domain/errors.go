package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the core wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPaymentUnverified = errors.New("payment not received")
	ErrPersistence       = errors.New("persistence failure")
	ErrConflict          = errors.New("conflict")

	// ErrDuplicateToken is internal to tracking token generation and never surfaces to callers.
	ErrDuplicateToken = errors.New("tracking token already exists")
)

// Ledger errors
var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidAccountID = fmt.Errorf("%w: account id is required", ErrValidation)
	ErrInvalidBucket    = fmt.Errorf("%w: unknown wallet bucket", ErrValidation)

	ErrInvalidMoneyScale = fmt.Errorf("%w: amounts carry at most 2 decimal places", ErrValidation)
)

// Catalog and order errors
var (
	ErrAccountNotFound  = fmt.Errorf("%w: account", ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("%w: item", ErrNotFound)
	ErrDiscountNotFound = fmt.Errorf("%w: discount", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("%w: order", ErrNotFound)

	ErrEmptyCart             = fmt.Errorf("%w: cart has no lines", ErrValidation)
	ErrInvalidQuantity       = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrDuplicateCartItem     = fmt.Errorf("%w: item appears more than once in cart", ErrValidation)
	ErrInvalidPaymentMethod  = fmt.Errorf("%w: invalid payment method", ErrValidation)
	ErrMissingPaymentRef     = fmt.Errorf("%w: payment reference is required", ErrValidation)
	ErrDuplicatePaymentRef   = fmt.Errorf("%w: payment reference already used", ErrValidation)
	ErrInvalidDeliveryFee    = fmt.Errorf("%w: delivery fee must not be negative", ErrValidation)
	ErrInvalidPercentage     = fmt.Errorf("%w: percentage must be between 0 and 100", ErrValidation)
	ErrInvalidTrackingLevel  = fmt.Errorf("%w: invalid tracking level", ErrValidation)
	ErrOrderAlreadySettled   = fmt.Errorf("%w: order already settled", ErrConflict)
	ErrOrderRejected         = fmt.Errorf("%w: order was rejected", ErrConflict)
	ErrOrderRefunded         = fmt.Errorf("%w: order was refunded", ErrConflict)
	ErrIncompleteDelivery    = fmt.Errorf("%w: delivery details incomplete", ErrValidation)
	ErrPaymentVerifierFailed = fmt.Errorf("%w: payment verification unavailable", ErrPaymentUnverified)
)

// InsufficientStockError names the item whose stock could not cover the requested quantity.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.ItemName
	if name == "" {
		name = e.ItemID
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// SettlementOutcome classifies how far a failed settlement got.
type SettlementOutcome string

const (
	// OutcomeRejected means nothing was written.
	OutcomeRejected SettlementOutcome = "rejected"
	// OutcomeRolledBack means writes happened and every compensation succeeded.
	OutcomeRolledBack SettlementOutcome = "rolled_back"
	// OutcomePartiallyApplied means at least one compensation failed and manual reconciliation is needed.
	OutcomePartiallyApplied SettlementOutcome = "partially_applied"
)

// SettlementError reports a failed settlement together with the step it failed at.
type SettlementError struct {
	Err              error
	Outcome          SettlementOutcome
	Step             string
	OrderID          string
	AffectedAccounts []string
	StepIndex        int
}

func (e *SettlementError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "settlement %s at step %d (%s)", e.Outcome, e.StepIndex, e.Step)
	if e.OrderID != "" {
		fmt.Fprintf(&b, " for order %s", e.OrderID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SettlementError) Unwrap() error { return e.Err }

// Mutated reports whether any write happened before the failure.
func (e *SettlementError) Mutated() bool {
	return e.Outcome != OutcomeRejected
}

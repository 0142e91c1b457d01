package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultDeliveryEstimate and DefaultDropoffEstimate feed the dates shown in notifications.
	DefaultDeliveryEstimate = 7 * 24 * time.Hour
	DefaultDropoffEstimate  = 3 * 24 * time.Hour
)

package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/domain"
)

// PaymentVerification is a gateway's answer about one payment reference.
type PaymentVerification struct {
	Reference string
	Status    string
	Amount    decimal.Decimal
	Verified  bool
}

// PaymentVerifier confirms with a payment gateway that a reference was paid.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (*PaymentVerification, error)
}

// Notifier delivers order notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

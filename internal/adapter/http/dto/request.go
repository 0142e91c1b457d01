package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
)

// CartLineRequest is one line of a checkout.
type CartLineRequest struct {
	ItemID     string `json:"item_id"               validate:"required"`
	DiscountID string `json:"discount_id,omitempty"`
	Quantity   int    `json:"quantity"              validate:"required,min=1"`
}

// DeliveryRequest is the shipping address of a checkout.
type DeliveryRequest struct {
	Street       string `json:"street"                 validate:"required"`
	Apartment    string `json:"apartment,omitempty"`
	City         string `json:"city"                   validate:"required"`
	State        string `json:"state"                  validate:"required"`
	Zip          string `json:"zip,omitempty"`
	Phone        string `json:"phone"                  validate:"required"`
	Instructions string `json:"instructions,omitempty"`
}

// SettleOrderRequest is the body of POST /orders.
type SettleOrderRequest struct {
	BuyerID       string            `json:"buyer_id"       validate:"required"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
	PaymentRef    string            `json:"payment_ref"    validate:"required"`
	PaymentData   string            `json:"payment_data,omitempty"`
	DeliveryFee   string            `json:"delivery_fee"   validate:"required,numeric"`
	Lines         []CartLineRequest `json:"items"          validate:"required,min=1,max=100,dive"`
	Delivery      DeliveryRequest   `json:"delivery"       validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *SettleOrderRequest) ToUseCaseInput() (usecase.SettleOrderInput, error) {
	fee, err := decimal.NewFromString(r.DeliveryFee)
	if err != nil {
		return usecase.SettleOrderInput{}, fmt.Errorf("%w: invalid delivery_fee: %v", domain.ErrValidation, err)
	}
	if !domain.HasMoneyScale(fee) {
		return usecase.SettleOrderInput{}, fmt.Errorf("%w: delivery_fee %s", domain.ErrInvalidMoneyScale, r.DeliveryFee)
	}

	lines := make([]domain.CartLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.CartLine{ItemID: l.ItemID, DiscountID: l.DiscountID, Quantity: l.Quantity}
	}

	return usecase.SettleOrderInput{
		BuyerID:       r.BuyerID,
		PaymentMethod: r.PaymentMethod,
		PaymentRef:    r.PaymentRef,
		PaymentData:   r.PaymentData,
		Lines:         lines,
		DeliveryFee:   fee,
		Delivery: domain.DeliveryDetails{
			Street:       r.Delivery.Street,
			Apartment:    r.Delivery.Apartment,
			City:         r.Delivery.City,
			State:        r.Delivery.State,
			Zip:          r.Delivery.Zip,
			Phone:        r.Delivery.Phone,
			Instructions: r.Delivery.Instructions,
		},
	}, nil
}

// WalletMovementRequest is the body of the wallet credit and debit endpoints.
type WalletMovementRequest struct {
	Amount        string `json:"amount"                   validate:"required,numeric"`
	Bucket        string `json:"bucket"                   validate:"required,oneof=pending available"`
	Transaction   string `json:"transaction"              validate:"required,max=200"`
	PaymentMethod string `json:"payment_method,omitempty" validate:"max=50"`
	Details       string `json:"details,omitempty"        validate:"max=500"`
	ReferenceID   string `json:"reference_id,omitempty"`
	OrderID       string `json:"order_id,omitempty"`
	Provisional   bool   `json:"provisional,omitempty"`
}

// ToDraft converts the request into a ledger draft for accountID.
func (r *WalletMovementRequest) ToDraft(accountID string) (domain.EntryDraft, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.EntryDraft{}, fmt.Errorf("%w: invalid amount: %v", domain.ErrValidation, err)
	}
	if !domain.HasMoneyScale(amount) {
		return domain.EntryDraft{}, fmt.Errorf("%w: amount %s", domain.ErrInvalidMoneyScale, r.Amount)
	}

	status := domain.EntryStatusSettled
	if r.Provisional {
		status = domain.EntryStatusProvisional
	}

	draft := domain.EntryDraft{
		AccountID:     accountID,
		Bucket:        domain.Bucket(r.Bucket),
		Status:        status,
		ReferenceID:   r.ReferenceID,
		Transaction:   r.Transaction,
		PaymentMethod: r.PaymentMethod,
		Details:       r.Details,
		OrderID:       r.OrderID,
		Amount:        amount,
	}
	if r.OrderID != "" {
		draft.ReferenceType = domain.ReferenceTypeOrder
		if draft.ReferenceID == "" {
			draft.ReferenceID = r.OrderID
		}
	}
	return draft, nil
}

// TrackingProgressRequest is the body of POST /orders/{id}/tracking.
type TrackingProgressRequest struct {
	Level int `json:"level" validate:"required,min=1,max=3"`
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

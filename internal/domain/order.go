package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodPaystack    = "paystack"
	PaymentMethodFlutterwave = "flutterwave"
)

// NormalizePaymentMethod lower-cases and validates a payment method name.
func NormalizePaymentMethod(method string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	switch m {
	case PaymentMethodPaystack, PaymentMethodFlutterwave:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
}

// CartLine is one requested item in a checkout.
type CartLine struct {
	ItemID     string `json:"item_id"`
	DiscountID string `json:"discount_id,omitempty"`
	Quantity   int    `json:"quantity"`
}

// DeliveryDetails is the shipping address captured at checkout.
type DeliveryDetails struct {
	Street       string `json:"street"`
	Apartment    string `json:"apartment,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip,omitempty"`
	Phone        string `json:"phone"`
	Instructions string `json:"instructions,omitempty"`
}

// Validate requires the fields a courier needs.
func (d DeliveryDetails) Validate() error {
	required := []struct{ name, value string }{
		{"street", d.Street},
		{"city", d.City},
		{"state", d.State},
		{"phone", d.Phone},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteDelivery, strings.Join(missing, ", "))
	}
	return nil
}

// AddressLines formats the address for receipts.
func (d DeliveryDetails) AddressLines() []string {
	street := d.Street
	if d.Apartment != "" {
		street = d.Apartment + ", " + street
	}
	lines := []string{street, d.City + ", " + d.State}
	if d.Zip != "" {
		lines = append(lines, d.Zip)
	}
	return lines
}

// PriceBreakdown is the buyer-facing cost summary of an order.
type PriceBreakdown struct {
	TotalItemsPrice       decimal.Decimal `json:"total_items_price"`
	PlatformPercentage    decimal.Decimal `json:"platform_percentage"`
	PlatformFee           decimal.Decimal `json:"platform_fee"`
	DeliveryFee           decimal.Decimal `json:"delivery_fee"`
	TotalAccumulatedPrice decimal.Decimal `json:"total_accumulated_price"`
}

// PriceUsed records the price a seller was credited for one line.
type PriceUsed struct {
	ItemID             string          `json:"item"`
	SellerID           string          `json:"seller"`
	DiscountID         string          `json:"discount,omitempty"`
	AgreedPricePerItem decimal.Decimal `json:"agreed_price_per_item"`
	Total              decimal.Decimal `json:"total"`
	PercentageOff      decimal.Decimal `json:"percentage_off"`
	Quantity           int             `json:"qty"`
}

// TrackingLevel is a fulfilment milestone.
type TrackingLevel int

const (
	TrackingSentOut   TrackingLevel = 1
	TrackingInTransit TrackingLevel = 2
	TrackingReceived  TrackingLevel = 3
)

// Progress holds the fulfilment and dispute flags of an order. Flags only ever turn on.
type Progress struct {
	AcceptedBy       string `json:"accepted_by,omitempty"`
	RejectionReason  string `json:"rejection_reason,omitempty"`
	RefundReason     string `json:"refund_reason,omitempty"`
	SettlementReason string `json:"settlement_reason,omitempty"`
	SentOut          bool   `json:"is_sent_out"`
	InTransit        bool   `json:"is_in_transit"`
	Received         bool   `json:"is_received"`
	Accepted         bool   `json:"is_accepted"`
	Rejected         bool   `json:"is_rejected"`
	Refunded         bool   `json:"is_refunded"`
	Settled          bool   `json:"is_settled"`
}

// Order is a settled checkout.
type Order struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	OwnerID        string
	PaymentMethod  string
	PaymentRef     string
	PaymentData    string
	TrackingToken  string
	Lines          []CartLine
	Sellers        []string
	PriceUsed      []PriceUsed
	Delivery       DeliveryDetails
	PriceBreakdown PriceBreakdown
	Progress       Progress
	TotalPricePaid decimal.Decimal
}

// ItemQuantity returns the total number of units across all lines.
func (o *Order) ItemQuantity() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// HasSeller reports whether sellerID sold any line of the order.
func (o *Order) HasSeller(sellerID string) bool {
	for _, s := range o.Sellers {
		if s == sellerID {
			return true
		}
	}
	return false
}

// AdvanceTracking raises the fulfilment flag for level. Settled, rejected and
// refunded orders no longer move.
func (o *Order) AdvanceTracking(level TrackingLevel, now time.Time) error {
	switch {
	case o.Progress.Settled:
		return ErrOrderAlreadySettled
	case o.Progress.Rejected:
		return ErrOrderRejected
	case o.Progress.Refunded:
		return ErrOrderRefunded
	}

	switch level {
	case TrackingSentOut:
		o.Progress.SentOut = true
	case TrackingInTransit:
		o.Progress.InTransit = true
	case TrackingReceived:
		o.Progress.Received = true
	default:
		return fmt.Errorf("%w: %d", ErrInvalidTrackingLevel, level)
	}

	o.UpdatedAt = now
	return nil
}

// MarkRejected flags the order as rejected with reason.
func (o *Order) MarkRejected(reason string, now time.Time) error {
	if o.Progress.Settled {
		return ErrOrderAlreadySettled
	}
	o.Progress.Rejected = true
	o.Progress.RejectionReason = reason
	o.UpdatedAt = now
	return nil
}

package usecase

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/domain"
)

// SettleOrderInput is a checkout request.
type SettleOrderInput struct {
	BuyerID       string
	PaymentMethod string
	PaymentRef    string
	PaymentData   string
	Lines         []domain.CartLine
	Delivery      domain.DeliveryDetails
	DeliveryFee   decimal.Decimal
}

// SellerGroup is the part of a cart sold by one seller, priced at seller scope.
type SellerGroup struct {
	Seller      *domain.User
	SellerID    string
	Lines       []PricedLine
	Total       decimal.Decimal
	PlatformCut decimal.Decimal
	SellerCut   decimal.Decimal
}

// compensation undoes one applied step.
type compensation struct {
	undo        func(ctx context.Context) error
	step        string
	description string
}

// SettlementContext carries everything one settlement computes and applies,
// step by step. It is owned by a single SettleOrder call.
type SettlementContext struct {
	Buyer         *domain.User
	Order         *domain.Order
	BuyerDebit    *domain.Entry
	Items         map[string]*domain.Item
	Discounts     map[string]*domain.Discount
	Verification  *PaymentVerification
	Method        string
	OrderID       string
	TrackingToken string
	Input         SettleOrderInput
	BuyerLines    []PricedLine
	Groups        []*SellerGroup
	Entries       []*domain.Entry
	Breakdown     domain.PriceBreakdown

	compensations []compensation
	affected      []string
	completed     int
}

func newSettlementContext(input SettleOrderInput) *SettlementContext {
	return &SettlementContext{
		Input:     input,
		Items:     make(map[string]*domain.Item, len(input.Lines)),
		Discounts: make(map[string]*domain.Discount),
	}
}

// GrandTotal is what the buyer is charged.
func (sc *SettlementContext) GrandTotal() decimal.Decimal {
	return sc.Breakdown.TotalAccumulatedPrice
}

// SellerIDs returns the distinct sellers in first-seen order.
func (sc *SettlementContext) SellerIDs() []string {
	ids := make([]string, 0, len(sc.Groups))
	for _, g := range sc.Groups {
		ids = append(ids, g.SellerID)
	}
	return ids
}

// AffectedAccounts lists every account that received an entry.
func (sc *SettlementContext) AffectedAccounts() []string {
	return slices.Clone(sc.affected)
}

// CompletedStep is the index of the last step that finished.
func (sc *SettlementContext) CompletedStep() int {
	return sc.completed
}

func (sc *SettlementContext) onFailure(step, description string, undo func(ctx context.Context) error) {
	sc.compensations = append(sc.compensations, compensation{step: step, description: description, undo: undo})
}

func (sc *SettlementContext) recordEntry(e *domain.Entry) {
	sc.Entries = append(sc.Entries, e)
	if !slices.Contains(sc.affected, e.AccountID) {
		sc.affected = append(sc.affected, e.AccountID)
	}
}

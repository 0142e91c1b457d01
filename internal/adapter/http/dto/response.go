package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
)

// Envelope wraps every API response.
type Envelope struct {
	Data      any    `json:"data"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	Code      int    `json:"code"`
	Success   bool   `json:"success"`
}

// BalanceResponse represents wallet balances.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Pending   decimal.Decimal `json:"pending_balance"`
	Available decimal.Decimal `json:"available_balance"`
}

// BalanceFromDomain converts balances to a response.
func BalanceFromDomain(accountID string, b domain.Balances) *BalanceResponse {
	return &BalanceResponse{AccountID: accountID, Pending: b.Pending, Available: b.Available}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	CreatedAt        time.Time       `json:"created_at"`
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	Type             string          `json:"type"`
	Bucket           string          `json:"bucket"`
	Status           string          `json:"status"`
	ReferenceID      string          `json:"reference_id,omitempty"`
	ReferenceType    string          `json:"reference_type,omitempty"`
	Transaction      string          `json:"transaction"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	Details          string          `json:"details,omitempty"`
	OrderID          string          `json:"order_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	PendingBalance   decimal.Decimal `json:"pending_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		CreatedAt:        e.CreatedAt,
		ID:               e.ID,
		AccountID:        e.AccountID,
		Type:             string(e.Type),
		Bucket:           string(e.Bucket),
		Status:           string(e.Status),
		ReferenceID:      e.ReferenceID,
		ReferenceType:    string(e.ReferenceType),
		Transaction:      e.Transaction,
		PaymentMethod:    e.PaymentMethod,
		Details:          e.Details,
		OrderID:          e.OrderID,
		Amount:           e.Amount,
		PendingBalance:   e.PendingBalance,
		AvailableBalance: e.AvailableBalance,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	ID             string                 `json:"id"`
	OwnerID        string                 `json:"owner_id"`
	PaymentMethod  string                 `json:"payment_method"`
	PaymentRef     string                 `json:"payment_ref"`
	TrackingToken  string                 `json:"tracking_token"`
	Lines          []domain.CartLine      `json:"items"`
	Sellers        []string               `json:"sellers"`
	PriceUsed      []domain.PriceUsed     `json:"price_used"`
	Delivery       domain.DeliveryDetails `json:"delivery"`
	PriceBreakdown domain.PriceBreakdown  `json:"price_breakdown"`
	Progress       domain.Progress        `json:"progress"`
	TotalPricePaid decimal.Decimal        `json:"total_price_paid"`
}

// OrderFromDomain converts domain order to response.
func OrderFromDomain(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		ID:             o.ID,
		OwnerID:        o.OwnerID,
		PaymentMethod:  o.PaymentMethod,
		PaymentRef:     o.PaymentRef,
		TrackingToken:  o.TrackingToken,
		Lines:          o.Lines,
		Sellers:        o.Sellers,
		PriceUsed:      o.PriceUsed,
		Delivery:       o.Delivery,
		PriceBreakdown: o.PriceBreakdown,
		Progress:       o.Progress,
		TotalPricePaid: o.TotalPricePaid,
	}
}

// OrdersFromDomain converts domain orders to responses.
func OrdersFromDomain(orders []*domain.Order) []*OrderResponse {
	result := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = OrderFromDomain(o)
	}
	return result
}

// ReconciliationResponse represents the reconciliation of one account.
type ReconciliationResponse struct {
	CheckedAt    time.Time        `json:"checked_at"`
	AccountID    string           `json:"account_id"`
	BrokenEntry  string           `json:"broken_entry,omitempty"`
	Recorded     *BalanceResponse `json:"recorded"`
	Calculated   *BalanceResponse `json:"calculated"`
	Difference   *BalanceResponse `json:"difference"`
	EntryCount   int              `json:"entry_count"`
	IsReconciled bool             `json:"is_reconciled"`
}

// ReconciliationFromResult converts a reconciliation result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		CheckedAt:    r.LastChecked,
		AccountID:    r.AccountID,
		BrokenEntry:  r.BrokenEntry,
		Recorded:     BalanceFromDomain(r.AccountID, r.Recorded),
		Calculated:   BalanceFromDomain(r.AccountID, r.Calculated),
		Difference:   BalanceFromDomain(r.AccountID, r.Difference),
		EntryCount:   r.EntryCount,
		IsReconciled: r.IsReconciled,
	}
}

// ReconciliationReportResponse summarizes a run over every account.
type ReconciliationReportResponse struct {
	CheckedAt          time.Time                 `json:"checked_at"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
}

func ReconciliationReportFromUsecase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, 0, len(r.Discrepancies))
	for _, d := range r.Discrepancies {
		discrepancies = append(discrepancies, ReconciliationFromResult(d))
	}
	return &ReconciliationReportResponse{
		CheckedAt:          r.CheckedAt,
		Discrepancies:      discrepancies,
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
	}
}

// TrackingTokenResponse carries a freshly issued tracking token.
type TrackingTokenResponse struct {
	OrderID string `json:"order_id"`
	Token   string `json:"tracking_token"`
}

// SettlementFailure describes where a failed settlement stopped.
type SettlementFailure struct {
	Outcome          string   `json:"outcome"`
	Step             string   `json:"step"`
	OrderID          string   `json:"order_id,omitempty"`
	AffectedAccounts []string `json:"affected_accounts,omitempty"`
	StepIndex        int      `json:"step_index"`
}

// SettlementFailureFromError converts a settlement error to a response.
func SettlementFailureFromError(e *domain.SettlementError) *SettlementFailure {
	return &SettlementFailure{
		Outcome:          string(e.Outcome),
		Step:             e.Step,
		OrderID:          e.OrderID,
		AffectedAccounts: e.AffectedAccounts,
		StepIndex:        e.StepIndex,
	}
}

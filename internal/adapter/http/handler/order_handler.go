package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/marketledger/internal/adapter/http/dto"
	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
)

// Settler settles checkouts.
type Settler interface {
	SettleOrder(ctx context.Context, input usecase.SettleOrderInput) (*domain.Order, error)
}

// OrderService defines the order queries and tracking updates needed by OrderHandler.
type OrderService interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListAsBuyer(ctx context.Context, input usecase.ListOrdersInput) ([]*domain.Order, error)
	ListAsSeller(ctx context.Context, input usecase.ListOrdersInput) ([]*domain.Order, error)
	UpdateTrackingProgress(ctx context.Context, orderID string, level domain.TrackingLevel) (*domain.Order, error)
	IssueTrackingToken(ctx context.Context, orderID string) (string, bool, error)
}

// OrderHandler handles order HTTP requests.
type OrderHandler struct {
	settler Settler
	orders  OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(settler Settler, orders OrderService) *OrderHandler {
	return &OrderHandler{settler: settler, orders: orders}
}

// Settle settles a paid checkout into an order.
func (h *OrderHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleOrderRequest
	if err := dto.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.settler.SettleOrder(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "order placed", dto.OrderFromDomain(order))
}

// Get retrieves an order by ID.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "order retrieved", dto.OrderFromDomain(order))
}

// Track raises an order's fulfilment flag.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackingProgressRequest
	if err := dto.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.orders.UpdateTrackingProgress(r.Context(), chi.URLParam(r, "orderID"), domain.TrackingLevel(req.Level))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "tracking updated", dto.OrderFromDomain(order))
}

// IssueToken attaches a tracking token to an order, or returns the one it already has.
func (h *OrderHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	token, issued, err := h.orders.IssueTrackingToken(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := dto.TrackingTokenResponse{OrderID: orderID, Token: token}
	if !issued {
		writeJSON(w, http.StatusOK, "tracking token already assigned", resp)
		return
	}
	writeJSON(w, http.StatusCreated, "tracking token issued", resp)
}

// ListForUser lists a user's orders as buyer (default) or seller.
func (h *OrderHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	input := usecase.ListOrdersInput{
		UserID: chi.URLParam(r, "userID"),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	}

	var (
		orders []*domain.Order
		err    error
	)
	switch role := r.URL.Query().Get("role"); role {
	case "", "buyer":
		orders, err = h.orders.ListAsBuyer(r.Context(), input)
	case "seller":
		orders, err = h.orders.ListAsSeller(r.Context(), input)
	default:
		err = fmt.Errorf("%w: role must be buyer or seller, got %q", domain.ErrValidation, role)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "orders retrieved", dto.OrdersFromDomain(orders))
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/adapter/http/dto"
	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
	"github.com/iho/marketledger/internal/usecase/mocks"
)

type settlerStub struct {
	settleFn func(ctx context.Context, input usecase.SettleOrderInput) (*domain.Order, error)
}

func (s *settlerStub) SettleOrder(ctx context.Context, input usecase.SettleOrderInput) (*domain.Order, error) {
	return s.settleFn(ctx, input)
}

const checkoutBody = `{
	"buyer_id": "buyer-1",
	"payment_method": "Paystack",
	"payment_ref": "ref-001",
	"delivery_fee": "50",
	"items": [{"item_id": "item-x", "quantity": 1}],
	"delivery": {"street": "1 Marina", "city": "Lagos", "state": "Lagos", "phone": "+2348000000000"}
}`

func newOrderHandler(t *testing.T, settler Settler) (*OrderHandler, *mocks.MockOrderRepository) {
	t.Helper()

	orders := mocks.NewMockOrderRepository()
	now := time.Now().UTC()
	seed := []*domain.Order{
		{ID: "o1", OwnerID: "buyer-1", Sellers: []string{"seller-1"}, CreatedAt: now},
		{ID: "o2", OwnerID: "buyer-2", Sellers: []string{"seller-1", "seller-2"}, CreatedAt: now},
		{ID: "o3", OwnerID: "buyer-1", Sellers: []string{"seller-2"}, CreatedAt: now, Progress: domain.Progress{Settled: true}},
	}
	for _, o := range seed {
		if err := orders.Create(context.Background(), o); err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}

	tracking := usecase.NewTrackingUseCase(mocks.NewMockTrackingTokenRepository(), nil, zerolog.Nop())
	orderUC := usecase.NewOrderUseCase(orders, tracking, zerolog.Nop())
	return NewOrderHandler(settler, orderUC), orders
}

func TestOrderHandler_SettleSuccess(t *testing.T) {
	var captured usecase.SettleOrderInput
	h, _ := newOrderHandler(t, &settlerStub{settleFn: func(ctx context.Context, in usecase.SettleOrderInput) (*domain.Order, error) {
		captured = in
		return &domain.Order{ID: "order-9", OwnerID: in.BuyerID, TrackingToken: "TRK-ABCDE", TotalPricePaid: decimal.NewFromInt(1150)}, nil
	}})

	rr := httptest.NewRecorder()
	h.Settle(rr, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(checkoutBody)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var order dto.OrderResponse
	decodeEnvelope(t, rr, &order)
	if order.ID != "order-9" || order.TrackingToken != "TRK-ABCDE" {
		t.Fatalf("unexpected order %+v", order)
	}
	if captured.PaymentMethod != "Paystack" || !captured.DeliveryFee.Equal(decimal.NewFromInt(50)) || len(captured.Lines) != 1 {
		t.Fatalf("unexpected settlement input %+v", captured)
	}
}

func TestOrderHandler_SettleFailureCarriesStep(t *testing.T) {
	h, _ := newOrderHandler(t, &settlerStub{settleFn: func(ctx context.Context, in usecase.SettleOrderInput) (*domain.Order, error) {
		return nil, &domain.SettlementError{
			Outcome:   domain.OutcomeRejected,
			Step:      "reserve_stock",
			StepIndex: 2,
			Err:       &domain.InsufficientStockError{ItemID: "item-x", Requested: 1, Available: 0},
		}
	}})

	rr := httptest.NewRecorder()
	h.Settle(rr, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(checkoutBody)))

	var failure dto.SettlementFailure
	env := decodeEnvelope(t, rr, &failure)
	if rr.Code != http.StatusConflict || env.ErrorCode != CodeInsufficientStock {
		t.Fatalf("expected 409 insufficient stock, got %d %+v", rr.Code, env)
	}
	if failure.Outcome != "rejected" || failure.Step != "reserve_stock" {
		t.Fatalf("unexpected failure %+v", failure)
	}
}

func TestOrderHandler_SettleRejectsInvalidBody(t *testing.T) {
	called := false
	h, _ := newOrderHandler(t, &settlerStub{settleFn: func(ctx context.Context, in usecase.SettleOrderInput) (*domain.Order, error) {
		called = true
		return nil, nil
	}})

	rr := httptest.NewRecorder()
	h.Settle(rr, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"buyer_id":"b"}`)))

	if rr.Code != http.StatusBadRequest || called {
		t.Fatalf("expected 400 without settlement, got %d called=%v", rr.Code, called)
	}
}

func TestOrderHandler_Get(t *testing.T) {
	h, _ := newOrderHandler(t, nil)

	tests := []struct {
		id     string
		status int
	}{
		{"o1", http.StatusOK},
		{"missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.Get(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+tt.id, nil), "orderID", tt.id))
		if rr.Code != tt.status {
			t.Fatalf("order %s: expected %d, got %d", tt.id, tt.status, rr.Code)
		}
	}
}

func TestOrderHandler_Track(t *testing.T) {
	h, orders := newOrderHandler(t, nil)

	tests := []struct {
		name   string
		order  string
		body   string
		status int
	}{
		{"sent out", "o1", `{"level":1}`, http.StatusOK},
		{"in transit", "o1", `{"level":2}`, http.StatusOK},
		{"invalid level", "o1", `{"level":7}`, http.StatusBadRequest},
		{"settled order", "o3", `{"level":3}`, http.StatusConflict},
		{"unknown order", "nope", `{"level":1}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+tt.order+"/tracking", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.Track(rr, withURLParams(req, "orderID", tt.order))
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}

	o, err := orders.GetByID(context.Background(), "o1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !o.Progress.SentOut || !o.Progress.InTransit || o.Progress.Received {
		t.Fatalf("unexpected progress %+v", o.Progress)
	}
}

func TestOrderHandler_IssueToken(t *testing.T) {
	h, orders := newOrderHandler(t, nil)

	issue := func(orderID string) (*httptest.ResponseRecorder, dto.TrackingTokenResponse) {
		rr := httptest.NewRecorder()
		h.IssueToken(rr, withURLParams(httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/tracking-token", nil), "orderID", orderID))
		var resp dto.TrackingTokenResponse
		decodeEnvelope(t, rr, &resp)
		return rr, resp
	}

	rr, first := issue("o1")
	if rr.Code != http.StatusCreated || first.OrderID != "o1" || !strings.HasPrefix(first.Token, domain.DefaultTrackingPrefix) {
		t.Fatalf("unexpected token response %d %+v", rr.Code, first)
	}

	stored, _ := orders.GetByID(context.Background(), "o1")
	if stored.TrackingToken != first.Token {
		t.Fatalf("expected order to carry %s, got %q", first.Token, stored.TrackingToken)
	}

	rr, second := issue("o1")
	if rr.Code != http.StatusOK || second.Token != first.Token {
		t.Fatalf("expected existing token %s with 200, got %d %+v", first.Token, rr.Code, second)
	}
}

func TestOrderHandler_IssueTokenUnknownOrder(t *testing.T) {
	h, _ := newOrderHandler(t, nil)

	rr := httptest.NewRecorder()
	h.IssueToken(rr, withURLParams(httptest.NewRequest(http.MethodPost, "/api/v1/orders/ghost/tracking-token", nil), "orderID", "ghost"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestOrderHandler_ListForUser(t *testing.T) {
	h, _ := newOrderHandler(t, nil)

	tests := []struct {
		name   string
		user   string
		query  string
		status int
		want   []string
	}{
		{"buyer by default", "buyer-1", "", http.StatusOK, []string{"o3", "o1"}},
		{"seller role", "seller-1", "?role=seller", http.StatusOK, []string{"o2", "o1"}},
		{"seller paged", "seller-2", "?role=seller&limit=1", http.StatusOK, []string{"o3"}},
		{"unknown role", "buyer-1", "?role=admin", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+tt.user+"/orders"+tt.query, nil)
			rr := httptest.NewRecorder()
			h.ListForUser(rr, withURLParams(req, "userID", tt.user))

			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.want == nil {
				return
			}

			var orders []dto.OrderResponse
			decodeEnvelope(t, rr, &orders)
			var ids []string
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("expected %v, got %v", tt.want, ids)
			}
		})
	}
}

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/usecase"
	"github.com/iho/marketledger/internal/usecase/mocks"
)

type tokenIssuerStub struct {
	next      []string
	generated int
	released  []string
}

func newTokenIssuer(tokens ...string) *tokenIssuerStub {
	if len(tokens) == 0 {
		tokens = []string{"TRK-AAAAA"}
	}
	return &tokenIssuerStub{next: tokens}
}

func (s *tokenIssuerStub) Generate(ctx context.Context, orderID string) (string, error) {
	token := s.next[s.generated%len(s.next)]
	s.generated++
	return token, nil
}

func (s *tokenIssuerStub) Release(ctx context.Context, token string) error {
	s.released = append(s.released, token)
	return nil
}

func seedOrders(t *testing.T) *mocks.MockOrderRepository {
	t.Helper()

	repo := mocks.NewMockOrderRepository()
	for _, o := range []*domain.Order{
		{ID: "o1", OwnerID: "buyer-1", Sellers: []string{"seller-1"}},
		{ID: "o2", OwnerID: "buyer-1", Sellers: []string{"seller-1", "seller-2"}},
		{ID: "o3", OwnerID: "buyer-2", Sellers: []string{"seller-2"}},
		{ID: "o4", OwnerID: "buyer-2", Sellers: []string{"seller-1"}, Progress: domain.Progress{Settled: true}},
	} {
		if err := repo.Create(context.Background(), o); err != nil {
			t.Fatalf("seed order %s: %v", o.ID, err)
		}
	}
	return repo
}

func TestOrderUseCase_GetOrder(t *testing.T) {
	uc := usecase.NewOrderUseCase(seedOrders(t), newTokenIssuer(), zerolog.Nop())

	order, err := uc.GetOrder(context.Background(), "o2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OwnerID != "buyer-1" {
		t.Fatalf("expected owner buyer-1, got %s", order.OwnerID)
	}

	if _, err := uc.GetOrder(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrderUseCase_ListByRole(t *testing.T) {
	uc := usecase.NewOrderUseCase(seedOrders(t), newTokenIssuer(), zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		list func(context.Context, usecase.ListOrdersInput) ([]*domain.Order, error)
		user string
		want []string
	}{
		{"buyer-1 purchases", uc.ListAsBuyer, "buyer-1", []string{"o2", "o1"}},
		{"buyer-2 purchases", uc.ListAsBuyer, "buyer-2", []string{"o4", "o3"}},
		{"seller-1 sales", uc.ListAsSeller, "seller-1", []string{"o4", "o2", "o1"}},
		{"seller-2 sales", uc.ListAsSeller, "seller-2", []string{"o3", "o2"}},
		{"no orders", uc.ListAsBuyer, "seller-2", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := tt.list(ctx, usecase.ListOrdersInput{UserID: tt.user})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(orders) != len(tt.want) {
				t.Fatalf("expected %d orders, got %d", len(tt.want), len(orders))
			}
			for i, o := range orders {
				if o.ID != tt.want[i] {
					t.Fatalf("position %d: expected %s, got %s", i, tt.want[i], o.ID)
				}
			}
		})
	}

	if _, err := uc.ListAsSeller(ctx, usecase.ListOrdersInput{}); !errors.Is(err, domain.ErrInvalidAccountID) {
		t.Fatalf("expected invalid account id, got %v", err)
	}
}

func TestOrderUseCase_UpdateTrackingProgress(t *testing.T) {
	repo := seedOrders(t)
	uc := usecase.NewOrderUseCase(repo, newTokenIssuer(), zerolog.Nop())
	ctx := context.Background()

	if _, err := uc.UpdateTrackingProgress(ctx, "o1", domain.TrackingInTransit); err != nil {
		t.Fatalf("in transit: %v", err)
	}
	order, err := uc.UpdateTrackingProgress(ctx, "o1", domain.TrackingSentOut)
	if err != nil {
		t.Fatalf("sent out: %v", err)
	}

	if !order.Progress.SentOut || !order.Progress.InTransit {
		t.Fatalf("expected both flags set, got %+v", order.Progress)
	}

	stored, _ := repo.GetByID(ctx, "o1")
	if !stored.Progress.InTransit || !stored.Progress.SentOut || stored.Progress.Received {
		t.Fatalf("unexpected stored progress %+v", stored.Progress)
	}
}

func TestOrderUseCase_UpdateTrackingProgressErrors(t *testing.T) {
	repo := seedOrders(t)
	ctx := context.Background()
	for _, o := range []*domain.Order{
		{ID: "o5", OwnerID: "buyer-3", Progress: domain.Progress{Rejected: true, RejectionReason: "settlement rolled back"}},
		{ID: "o6", OwnerID: "buyer-3", Progress: domain.Progress{Refunded: true}},
	} {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("seed order %s: %v", o.ID, err)
		}
	}
	uc := usecase.NewOrderUseCase(repo, newTokenIssuer(), zerolog.Nop())

	tests := []struct {
		name    string
		orderID string
		level   domain.TrackingLevel
		want    error
	}{
		{"invalid level", "o1", domain.TrackingLevel(4), domain.ErrValidation},
		{"zero level", "o1", domain.TrackingLevel(0), domain.ErrInvalidTrackingLevel},
		{"settled order", "o4", domain.TrackingReceived, domain.ErrOrderAlreadySettled},
		{"rolled back order", "o5", domain.TrackingSentOut, domain.ErrOrderRejected},
		{"refunded order", "o6", domain.TrackingInTransit, domain.ErrOrderRefunded},
		{"unknown order", "o9", domain.TrackingSentOut, domain.ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.UpdateTrackingProgress(ctx, tt.orderID, tt.level)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOrderUseCase_UpdateProgressFailure(t *testing.T) {
	repo := seedOrders(t)
	repo.UpdateProgressFunc = func(context.Context, *domain.Order) error {
		return errors.New("connection refused")
	}
	uc := usecase.NewOrderUseCase(repo, newTokenIssuer(), zerolog.Nop())

	_, err := uc.UpdateTrackingProgress(context.Background(), "o1", domain.TrackingReceived)
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestOrderUseCase_RejectedOrderKeepsProgress(t *testing.T) {
	repo := seedOrders(t)
	ctx := context.Background()
	if err := repo.Create(ctx, &domain.Order{ID: "o7", OwnerID: "buyer-3", Progress: domain.Progress{Rejected: true}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	uc := usecase.NewOrderUseCase(repo, newTokenIssuer(), zerolog.Nop())

	if _, err := uc.UpdateTrackingProgress(ctx, "o7", domain.TrackingSentOut); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, err := uc.GetOrder(ctx, "o7")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.Progress.SentOut {
		t.Fatal("rejected order must not be marked sent out")
	}
}

func TestOrderUseCase_IssueTrackingToken(t *testing.T) {
	repo := seedOrders(t)
	tokens := newTokenIssuer("TRK-QWERT")
	uc := usecase.NewOrderUseCase(repo, tokens, zerolog.Nop())
	ctx := context.Background()

	token, issued, err := uc.IssueTrackingToken(ctx, "o1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !issued || token != "TRK-QWERT" {
		t.Fatalf("expected fresh TRK-QWERT, got %s issued=%v", token, issued)
	}
	stored, _ := repo.GetByID(ctx, "o1")
	if stored.TrackingToken != "TRK-QWERT" {
		t.Fatalf("token not attached to order, got %q", stored.TrackingToken)
	}

	token, issued, err = uc.IssueTrackingToken(ctx, "o1")
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if issued || token != "TRK-QWERT" {
		t.Fatalf("expected existing TRK-QWERT, got %s issued=%v", token, issued)
	}
	if tokens.generated != 1 {
		t.Fatalf("expected one generated token, got %d", tokens.generated)
	}
}

func TestOrderUseCase_IssueTrackingTokenUnknownOrder(t *testing.T) {
	tokens := newTokenIssuer()
	uc := usecase.NewOrderUseCase(seedOrders(t), tokens, zerolog.Nop())

	if _, _, err := uc.IssueTrackingToken(context.Background(), "o9"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
	if tokens.generated != 0 {
		t.Fatalf("no token should be reserved for a missing order, got %d", tokens.generated)
	}
}

func TestOrderUseCase_IssueTrackingTokenLostRace(t *testing.T) {
	repo := seedOrders(t)
	repo.AssignTrackingTokenFunc = func(ctx context.Context, orderID, token string, at time.Time) (bool, error) {
		// A concurrent request attaches its token first.
		repo.AssignTrackingTokenFunc = nil
		if _, err := repo.AssignTrackingToken(ctx, orderID, "TRK-FIRST", at); err != nil {
			return false, err
		}
		return false, nil
	}
	tokens := newTokenIssuer("TRK-LATER")
	uc := usecase.NewOrderUseCase(repo, tokens, zerolog.Nop())

	token, issued, err := uc.IssueTrackingToken(context.Background(), "o2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued || token != "TRK-FIRST" {
		t.Fatalf("expected winner TRK-FIRST, got %s issued=%v", token, issued)
	}
	if len(tokens.released) != 1 || tokens.released[0] != "TRK-LATER" {
		t.Fatalf("expected losing token released, got %v", tokens.released)
	}
}

func TestOrderUseCase_IssueTrackingTokenAssignFailure(t *testing.T) {
	repo := seedOrders(t)
	repo.AssignTrackingTokenFunc = func(context.Context, string, string, time.Time) (bool, error) {
		return false, errors.New("connection reset")
	}
	tokens := newTokenIssuer("TRK-ZXCVB")
	uc := usecase.NewOrderUseCase(repo, tokens, zerolog.Nop())

	if _, _, err := uc.IssueTrackingToken(context.Background(), "o1"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if len(tokens.released) != 1 {
		t.Fatalf("expected reserved token released, got %v", tokens.released)
	}
}

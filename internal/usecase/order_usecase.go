package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/domain"
)

// OrderUseCase serves order reads, fulfilment progress and tracking token assignment.
type OrderUseCase struct {
	orderRepo OrderRepository
	tokens    TokenIssuer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderUseCase creates a new OrderUseCase.
func NewOrderUseCase(orderRepo OrderRepository, tokens TokenIssuer, logger zerolog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		tokens:    tokens,
		logger:    logger.With().Str("component", "orders").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListOrdersInput represents input for listing a user's orders.
type ListOrdersInput struct {
	UserID string
	Limit  int
	Offset int
}

// GetOrder retrieves an order by ID.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrOrderNotFound
	}
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("get order", err)
	}
	return order, nil
}

// ListAsBuyer lists orders placed by the user, newest first.
func (uc *OrderUseCase) ListAsBuyer(ctx context.Context, input ListOrdersInput) ([]*domain.Order, error) {
	if input.UserID == "" {
		return nil, domain.ErrInvalidAccountID
	}
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	orders, err := uc.orderRepo.ListByOwner(ctx, input.UserID, limit, offset)
	if err != nil {
		return nil, persistence("list orders by owner", err)
	}
	return orders, nil
}

// ListAsSeller lists orders containing at least one line sold by the user, newest first.
func (uc *OrderUseCase) ListAsSeller(ctx context.Context, input ListOrdersInput) ([]*domain.Order, error) {
	if input.UserID == "" {
		return nil, domain.ErrInvalidAccountID
	}
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	orders, err := uc.orderRepo.ListBySeller(ctx, input.UserID, limit, offset)
	if err != nil {
		return nil, persistence("list orders by seller", err)
	}
	return orders, nil
}

// UpdateTrackingProgress raises the fulfilment flag matching level.
// Flags already set stay set. Settled, rejected and refunded orders are refused.
func (uc *OrderUseCase) UpdateTrackingProgress(ctx context.Context, orderID string, level domain.TrackingLevel) (*domain.Order, error) {
	order, err := uc.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.AdvanceTracking(level, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.orderRepo.UpdateProgress(ctx, order); err != nil {
		return nil, persistence("update order progress", err)
	}

	uc.logger.Info().
		Str("order_id", order.ID).
		Int("level", int(level)).
		Msg("tracking progress updated")

	return order, nil
}

// IssueTrackingToken returns the order's tracking token, reserving and attaching
// one first if the order has none. issued is false when an existing token is returned.
func (uc *OrderUseCase) IssueTrackingToken(ctx context.Context, orderID string) (token string, issued bool, err error) {
	order, err := uc.GetOrder(ctx, orderID)
	if err != nil {
		return "", false, err
	}
	if order.TrackingToken != "" {
		return order.TrackingToken, false, nil
	}

	token, err = uc.tokens.Generate(ctx, order.ID)
	if err != nil {
		return "", false, err
	}

	assigned, err := uc.orderRepo.AssignTrackingToken(ctx, order.ID, token, uc.now())
	if err != nil {
		uc.release(ctx, token)
		return "", false, persistence("assign tracking token", err)
	}
	if !assigned {
		// Lost a race with another request; hand back the token that won.
		uc.release(ctx, token)
		current, err := uc.GetOrder(ctx, order.ID)
		if err != nil {
			return "", false, err
		}
		return current.TrackingToken, false, nil
	}

	uc.logger.Info().Str("order_id", order.ID).Str("tracking_token", token).Msg("tracking token assigned")
	return token, true, nil
}

func (uc *OrderUseCase) release(ctx context.Context, token string) {
	if err := uc.tokens.Release(ctx, token); err != nil {
		uc.logger.Warn().Err(err).Str("tracking_token", token).Msg("failed to release tracking token")
	}
}


package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/postgres/generated"
)

// OrderRepository implements usecase.OrderRepository. Lines, delivery details,
// price breakdown, prices used and progress are stored as JSONB documents.
type OrderRepository struct {
	queries *generated.Queries
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return newOrderRepository(pool)
}

func newOrderRepository(db generated.DBTX) *OrderRepository {
	return &OrderRepository{queries: generated.New(db)}
}

// Create inserts a new order. A reused payment reference fails with ErrDuplicatePaymentRef.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	docs, err := marshalOrderDocuments(order)
	if err != nil {
		return err
	}

	err = r.queries.CreateOrder(ctx, generated.CreateOrderParams{
		ID:             order.ID,
		OwnerID:        order.OwnerID,
		PaymentMethod:  order.PaymentMethod,
		PaymentRef:     order.PaymentRef,
		PaymentData:    order.PaymentData,
		TrackingToken:  order.TrackingToken,
		Lines:          docs.lines,
		Sellers:        order.Sellers,
		PriceUsed:      docs.priceUsed,
		Delivery:       docs.delivery,
		PriceBreakdown: docs.breakdown,
		Progress:       docs.progress,
		TotalPricePaid: decimalToNumeric(order.TotalPricePaid),
		CreatedAt:      timeToPgTimestamptz(order.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(order.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicatePaymentRef, order.PaymentRef)
	}
	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row, err := r.queries.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return rowToOrder(row)
}

// GetByPaymentRef returns nil, nil when no order uses ref.
func (r *OrderRepository) GetByPaymentRef(ctx context.Context, ref string) (*domain.Order, error) {
	row, err := r.queries.GetOrderByPaymentRef(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rowToOrder(row)
}

// ListByOwner lists the buyer's orders newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Order, error) {
	rows, err := r.queries.ListOrdersByOwner(ctx, generated.ListOrdersByOwnerParams{
		OwnerID: ownerID,
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToOrders(rows)
}

// ListBySeller lists orders with at least one line from the seller, newest first.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*domain.Order, error) {
	rows, err := r.queries.ListOrdersBySeller(ctx, generated.ListOrdersBySellerParams{
		SellerID: sellerID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToOrders(rows)
}

// UpdateProgress persists the order's progress flags.
func (r *OrderRepository) UpdateProgress(ctx context.Context, order *domain.Order) error {
	progress, err := json.Marshal(order.Progress)
	if err != nil {
		return err
	}

	n, err := r.queries.UpdateOrderProgress(ctx, generated.UpdateOrderProgressParams{
		ID:        order.ID,
		Progress:  progress,
		UpdatedAt: timeToPgTimestamptz(order.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// AssignTrackingToken stores token on an order that has none yet. It reports
// false when the order already carries a token or does not exist.
func (r *OrderRepository) AssignTrackingToken(ctx context.Context, orderID, token string, at time.Time) (bool, error) {
	n, err := r.queries.AssignOrderTrackingToken(ctx, generated.AssignOrderTrackingTokenParams{
		ID:            orderID,
		TrackingToken: token,
		UpdatedAt:     timeToPgTimestamptz(at),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type orderDocuments struct {
	lines, priceUsed, delivery, breakdown, progress []byte
}

func marshalOrderDocuments(o *domain.Order) (orderDocuments, error) {
	var (
		docs orderDocuments
		err  error
	)
	lines := o.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	priceUsed := o.PriceUsed
	if priceUsed == nil {
		priceUsed = []domain.PriceUsed{}
	}

	if docs.lines, err = json.Marshal(lines); err != nil {
		return docs, err
	}
	if docs.priceUsed, err = json.Marshal(priceUsed); err != nil {
		return docs, err
	}
	if docs.delivery, err = json.Marshal(o.Delivery); err != nil {
		return docs, err
	}
	if docs.breakdown, err = json.Marshal(o.PriceBreakdown); err != nil {
		return docs, err
	}
	if docs.progress, err = json.Marshal(o.Progress); err != nil {
		return docs, err
	}
	return docs, nil
}

func rowsToOrders(rows []generated.Order) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := rowToOrder(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func rowToOrder(row generated.Order) (*domain.Order, error) {
	o := &domain.Order{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		PaymentMethod:  row.PaymentMethod,
		PaymentRef:     row.PaymentRef,
		PaymentData:    row.PaymentData,
		TrackingToken:  row.TrackingToken,
		Sellers:        row.Sellers,
		TotalPricePaid: numericToDecimal(row.TotalPricePaid),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}

	for _, doc := range []struct {
		name string
		data []byte
		dst  any
	}{
		{"lines", row.Lines, &o.Lines},
		{"price_used", row.PriceUsed, &o.PriceUsed},
		{"delivery", row.Delivery, &o.Delivery},
		{"price_breakdown", row.PriceBreakdown, &o.PriceBreakdown},
		{"progress", row.Progress, &o.Progress},
	} {
		if len(doc.data) == 0 {
			continue
		}
		if err := json.Unmarshal(doc.data, doc.dst); err != nil {
			return nil, fmt.Errorf("decode order %s %s: %w", row.ID, doc.name, err)
		}
	}

	return o, nil
}

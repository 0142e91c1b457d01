package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/postgres/generated"
)

// ItemRepository implements usecase.ItemRepository.
type ItemRepository struct {
	queries *generated.Queries
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return newItemRepository(pool)
}

func newItemRepository(db generated.DBTX) *ItemRepository {
	return &ItemRepository{queries: generated.New(db)}
}

// Create inserts a catalog item.
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	return r.queries.CreateItem(ctx, generated.CreateItemParams{
		ID:              item.ID,
		OwnerID:         item.OwnerID,
		Name:            item.Name,
		Price:           decimalToNumeric(item.Price),
		QuantityInStock: int32(item.QuantityInStock),
		CreatedAt:       timeToPgTimestamptz(item.CreatedAt),
		UpdatedAt:       timeToPgTimestamptz(item.UpdatedAt),
	})
}

// GetByID retrieves an item by ID.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	row, err := r.queries.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return rowToItem(row), nil
}

// GetByIDs retrieves the items that exist among ids, in no particular order.
func (r *ItemRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Item, error) {
	rows, err := r.queries.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToItem(row))
	}
	return items, nil
}

// DecrementStock removes qty units in a single guarded update, so two
// concurrent checkouts can never take the stock below zero.
func (r *ItemRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	n, err := r.queries.DecrementItemStock(ctx, generated.DecrementItemStockParams{ID: id, Quantity: int32(qty)})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	item, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Requested: qty,
		Available: item.QuantityInStock,
	}
}

// RestoreStock adds qty units back.
func (r *ItemRepository) RestoreStock(ctx context.Context, id string, qty int) error {
	n, err := r.queries.RestoreItemStock(ctx, generated.RestoreItemStockParams{ID: id, Quantity: int32(qty)})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("restore stock: %w", domain.ErrItemNotFound)
	}
	return nil
}

func rowToItem(row generated.Item) *domain.Item {
	return &domain.Item{
		ID:              row.ID,
		OwnerID:         row.OwnerID,
		Name:            row.Name,
		Price:           numericToDecimal(row.Price),
		QuantityInStock: int(row.QuantityInStock),
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
}

// DiscountRepository implements usecase.DiscountRepository.
type DiscountRepository struct {
	queries *generated.Queries
}

// NewDiscountRepository creates a new DiscountRepository.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return newDiscountRepository(pool)
}

func newDiscountRepository(db generated.DBTX) *DiscountRepository {
	return &DiscountRepository{queries: generated.New(db)}
}

// Create inserts a discount rule.
func (r *DiscountRepository) Create(ctx context.Context, d *domain.Discount) error {
	return r.queries.CreateDiscount(ctx, generated.CreateDiscountParams{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		PercentageOff: decimalToNumeric(d.PercentageOff),
		MinQuantity:   int32(d.MinQuantity),
		CreatedAt:     timeToPgTimestamptz(d.CreatedAt),
	})
}

// GetByID retrieves a discount by ID.
func (r *DiscountRepository) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	row, err := r.queries.GetDiscountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDiscountNotFound
		}
		return nil, err
	}

	return &domain.Discount{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		PercentageOff: numericToDecimal(row.PercentageOff),
		MinQuantity:   int(row.MinQuantity),
		CreatedAt:     row.CreatedAt.Time,
	}, nil
}

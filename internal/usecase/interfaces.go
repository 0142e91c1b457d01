package usecase

import (
	"context"
	"time"

	"github.com/iho/marketledger/internal/domain"
)

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// LockAccount serializes appends to one account for the lifetime of tx.
	LockAccount(ctx context.Context, tx Transaction, accountID string) error
	// GetLatest returns the most recent entry of an account, or nil when it has none.
	GetLatest(ctx context.Context, tx Transaction, accountID string) (*domain.Entry, error)
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	// ListByAccount returns entries newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	// ListAllByAccount returns the full history oldest first.
	ListAllByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error)
	// ListAccountIDs returns every account that has at least one entry.
	ListAccountIDs(ctx context.Context) ([]string, error)
}

// OrderRepository defines data access for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// GetByPaymentRef returns nil, nil when no order uses ref.
	GetByPaymentRef(ctx context.Context, ref string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*domain.Order, error)
	UpdateProgress(ctx context.Context, order *domain.Order) error
	// AssignTrackingToken sets token only if the order has none, reporting whether it did.
	AssignTrackingToken(ctx context.Context, orderID, token string, at time.Time) (bool, error)
}

// ItemRepository defines data access for catalog items.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Item, error)
	// DecrementStock removes qty units, failing with ErrInsufficientStock if fewer remain.
	DecrementStock(ctx context.Context, id string, qty int) error
	RestoreStock(ctx context.Context, id string, qty int) error
}

// DiscountRepository defines data access for discounts.
type DiscountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Discount, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// TrackingTokenRepository defines data access for tracking tokens.
type TrackingTokenRepository interface {
	Exists(ctx context.Context, token string) (bool, error)
	// Create fails with ErrDuplicateToken if token is already taken.
	Create(ctx context.Context, token *domain.TrackingToken) error
	Delete(ctx context.Context, token string) error
	GetByOrder(ctx context.Context, orderID string) (*domain.TrackingToken, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation while it fails with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}

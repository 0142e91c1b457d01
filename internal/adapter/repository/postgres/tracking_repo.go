package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/postgres/generated"
)

// TrackingTokenRepository implements usecase.TrackingTokenRepository.
// The primary key on token is what makes a reservation unique.
type TrackingTokenRepository struct {
	queries *generated.Queries
}

// NewTrackingTokenRepository creates a new TrackingTokenRepository.
func NewTrackingTokenRepository(pool *pgxpool.Pool) *TrackingTokenRepository {
	return newTrackingTokenRepository(pool)
}

func newTrackingTokenRepository(db generated.DBTX) *TrackingTokenRepository {
	return &TrackingTokenRepository{queries: generated.New(db)}
}

// Exists reports whether token is already reserved.
func (r *TrackingTokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	return r.queries.TrackingTokenExists(ctx, token)
}

// Create reserves token for an order, failing with ErrDuplicateToken if it is taken.
func (r *TrackingTokenRepository) Create(ctx context.Context, token *domain.TrackingToken) error {
	err := r.queries.CreateTrackingToken(ctx, generated.CreateTrackingTokenParams{
		Token:     token.Token,
		OrderID:   token.OrderID,
		CreatedAt: timeToPgTimestamptz(token.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrDuplicateToken
	}
	return err
}

// Delete releases token. Deleting an unknown token is not an error.
func (r *TrackingTokenRepository) Delete(ctx context.Context, token string) error {
	return r.queries.DeleteTrackingToken(ctx, token)
}

// GetByOrder returns the token reserved for orderID, or ErrNotFound.
func (r *TrackingTokenRepository) GetByOrder(ctx context.Context, orderID string) (*domain.TrackingToken, error) {
	row, err := r.queries.GetTrackingTokenByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &domain.TrackingToken{Token: row.Token, OrderID: row.OrderID, CreatedAt: row.CreatedAt.Time}, nil
}

package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/metrics"
)

// TrackingUseCase issues unique tracking tokens for orders.
type TrackingUseCase struct {
	tokenRepo TrackingTokenRepository
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	prefix    string
	nextCode  func() (string, error)
	now       func() time.Time
}

// TrackingOption customizes a TrackingUseCase.
type TrackingOption func(*TrackingUseCase)

// WithTrackingPrefix overrides the token prefix.
func WithTrackingPrefix(prefix string) TrackingOption {
	return func(uc *TrackingUseCase) {
		uc.prefix = prefix
	}
}

// WithCodeSource replaces the random code source.
func WithCodeSource(next func() (string, error)) TrackingOption {
	return func(uc *TrackingUseCase) {
		uc.nextCode = next
	}
}

// NewTrackingUseCase creates a new TrackingUseCase. m may be nil.
func NewTrackingUseCase(tokenRepo TrackingTokenRepository, m *metrics.Metrics, logger zerolog.Logger, opts ...TrackingOption) *TrackingUseCase {
	uc := &TrackingUseCase{
		tokenRepo: tokenRepo,
		metrics:   m,
		logger:    logger,
		prefix:    domain.DefaultTrackingPrefix,
		nextCode:  randomTrackingCode,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Generate reserves a fresh token for orderID. Candidates are drawn until one is
// free; there is no attempt limit, only ctx bounds the loop.
func (uc *TrackingUseCase) Generate(ctx context.Context, orderID string) (string, error) {
	if orderID == "" {
		return "", fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", persistence("generate tracking token", err)
		}

		code, err := uc.nextCode()
		if err != nil {
			return "", persistence("generate tracking token", err)
		}
		token := uc.prefix + code

		taken, err := uc.tokenRepo.Exists(ctx, token)
		if err != nil {
			return "", persistence("check tracking token", err)
		}
		if taken {
			uc.collision(token, attempt)
			continue
		}

		err = uc.tokenRepo.Create(ctx, &domain.TrackingToken{Token: token, OrderID: orderID, CreatedAt: uc.now()})
		if errors.Is(err, domain.ErrDuplicateToken) {
			// Lost a race with a concurrent reservation.
			uc.collision(token, attempt)
			continue
		}
		if err != nil {
			return "", persistence("reserve tracking token", err)
		}

		if uc.metrics != nil {
			uc.metrics.TrackingTokensIssued.Inc()
		}
		return token, nil
	}
}

// Release frees a token reserved for an order that was never completed.
func (uc *TrackingUseCase) Release(ctx context.Context, token string) error {
	if err := uc.tokenRepo.Delete(ctx, token); err != nil {
		return persistence("release tracking token", err)
	}
	return nil
}

func (uc *TrackingUseCase) collision(token string, attempt int) {
	if uc.metrics != nil {
		uc.metrics.TrackingTokenCollisions.Inc()
	}
	uc.logger.Debug().Str("token", token).Int("attempt", attempt).Msg("tracking token collision")
}

var trackingAlphabetSize = big.NewInt(int64(len(domain.TrackingAlphabet)))

func randomTrackingCode() (string, error) {
	code := make([]byte, domain.TrackingCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, trackingAlphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = domain.TrackingAlphabet[n.Int64()]
	}
	return string(code), nil
}

package payment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/usecase"
)

// VerificationCache stores confirmed payments per gateway.
type VerificationCache interface {
	Get(ctx context.Context, method, reference string) (*usecase.PaymentVerification, error)
	Put(ctx context.Context, method string, v *usecase.PaymentVerification) error
}

// CachingVerifier consults cache before asking the gateway. Cache failures
// degrade to a direct gateway call.
type CachingVerifier struct {
	next   usecase.PaymentVerifier
	cache  VerificationCache
	method string
	logger zerolog.Logger
}

// NewCachingVerifier wraps next for the given payment method.
func NewCachingVerifier(method string, next usecase.PaymentVerifier, cache VerificationCache, logger zerolog.Logger) *CachingVerifier {
	return &CachingVerifier{next: next, cache: cache, method: method, logger: logger}
}

// Verify implements usecase.PaymentVerifier.
func (c *CachingVerifier) Verify(ctx context.Context, reference string) (*usecase.PaymentVerification, error) {
	cached, err := c.cache.Get(ctx, c.method, reference)
	if err != nil {
		c.logger.Warn().Err(err).Str("reference", reference).Msg("payment cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	v, err := c.next.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(ctx, c.method, v); err != nil {
		c.logger.Warn().Err(err).Str("reference", reference).Msg("payment cache write failed")
	}
	return v, nil
}

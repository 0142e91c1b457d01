package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/usecase"
)

const defaultVerificationTTL = 24 * time.Hour

type cachedVerification struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
}

// VerificationCache remembers gateway confirmations so a retried checkout
// does not hit the gateway again. Only verified payments are stored.
type VerificationCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewVerificationCache creates a VerificationCache.
func NewVerificationCache(client *redis.Client, ttl time.Duration) *VerificationCache {
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	return &VerificationCache{
		client: client,
		prefix: "marketledger:payment:",
		ttl:    ttl,
	}
}

// Get returns the cached verification for method and reference, or nil on a miss.
func (c *VerificationCache) Get(ctx context.Context, method, reference string) (*usecase.PaymentVerification, error) {
	raw, err := c.client.Get(ctx, c.key(method, reference)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cv cachedVerification
	if err := json.Unmarshal(raw, &cv); err != nil {
		return nil, err
	}
	return &usecase.PaymentVerification{
		Reference: cv.Reference,
		Status:    cv.Status,
		Amount:    cv.Amount,
		Verified:  true,
	}, nil
}

// Put stores v when it is verified and ignores it otherwise.
func (c *VerificationCache) Put(ctx context.Context, method string, v *usecase.PaymentVerification) error {
	if v == nil || !v.Verified {
		return nil
	}
	raw, err := json.Marshal(cachedVerification{
		Reference: v.Reference,
		Status:    v.Status,
		Amount:    v.Amount,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(method, v.Reference), raw, c.ttl).Err()
}

func (c *VerificationCache) key(method, reference string) string {
	return c.prefix + method + ":" + reference
}

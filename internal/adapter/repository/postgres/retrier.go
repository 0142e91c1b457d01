package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes a ledger append may safely repeat.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"

	// Class 08 covers dropped and refused connections.
	pgClassConnectionException = "08"
)

// RetryPolicy bounds how often and how long Retrier repeats an operation.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy suits short ledger transactions.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
	MaxElapsedTime:  10 * time.Second,
}

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	logger zerolog.Logger
	policy RetryPolicy
}

// NewRetrier creates a retrier using DefaultRetryPolicy.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return NewRetrierWithPolicy(logger, DefaultRetryPolicy)
}

// NewRetrierWithPolicy creates a retrier with an explicit policy.
func NewRetrierWithPolicy(logger zerolog.Logger, policy RetryPolicy) *Retrier {
	return &Retrier{
		logger: logger.With().Str("component", "pg_retrier").Logger(),
		policy: policy,
	}
}

// Retry runs operation, repeating it while it fails with a transient
// PostgreSQL error. Other errors are returned after the first attempt.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.policy.InitialInterval
	eb.MaxInterval = r.policy.MaxInterval
	eb.MaxElapsedTime = r.policy.MaxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, r.policy.MaxRetries), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err == nil || isRetryableError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("sqlstate", sqlState(err)).
			Dur("wait", wait).
			Msg("transient database error, retrying")
	})
}

// isRetryableError reports whether err is a conflict or connection failure
// that a fresh transaction may get past.
func isRetryableError(err error) bool {
	code := sqlState(err)
	switch {
	case code == pgErrDeadlock, code == pgErrSerializationFailure, code == pgErrLockNotAvailable:
		return true
	case strings.HasPrefix(code, pgClassConnectionException):
		return true
	}
	return pgconn.SafeToRetry(err)
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

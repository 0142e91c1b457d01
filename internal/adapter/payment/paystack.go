package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/marketledger/internal/usecase"
)

const (
	defaultPaystackURL = "https://api.paystack.co"
	statusSuccess      = "success"
	maxBodyBytes       = 1 << 20
)

// PaystackConfig configures a PaystackVerifier.
type PaystackConfig struct {
	HTTPClient    *http.Client
	BaseURL       string
	SecretKey     string
	Timeout       time.Duration
	RetryInterval time.Duration
	MaxRetries    uint64
}

// PaystackVerifier confirms payments through the Paystack verify endpoint.
type PaystackVerifier struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	maxRetries uint64
	interval   time.Duration
	logger     zerolog.Logger
}

type paystackResponse struct {
	Data    *paystackTransaction `json:"data"`
	Message string               `json:"message"`
	Status  bool                 `json:"status"`
}

type paystackTransaction struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"` // minor units
}

// retryableError marks a failure worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// NewPaystackVerifier creates a PaystackVerifier.
func NewPaystackVerifier(cfg PaystackConfig, logger zerolog.Logger) *PaystackVerifier {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultPaystackURL
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}

	return &PaystackVerifier{
		httpClient: client,
		baseURL:    base,
		secretKey:  cfg.SecretKey,
		maxRetries: retries,
		interval:   interval,
		logger:     logger.With().Str("gateway", "paystack").Logger(),
	}
}

// Verify asks Paystack whether reference was paid. A declined or abandoned
// payment is a valid answer with Verified false, not an error.
func (v *PaystackVerifier) Verify(ctx context.Context, reference string) (*usecase.PaymentVerification, error) {
	if reference == "" {
		return nil, errors.New("payment reference is required")
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = v.interval
	eb.MaxElapsedTime = 30 * time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(eb, v.maxRetries), ctx)

	var result *usecase.PaymentVerification
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		res, err := v.verifyOnce(ctx, reference)
		if err == nil {
			result = res
			return nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return backoff.Permanent(err)
		}
		v.logger.Warn().Err(err).Int("attempt", attempt).Str("reference", reference).Msg("paystack verify failed, retrying")
		return err
	}, b)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (v *PaystackVerifier) verifyOnce(ctx context.Context, reference string) (*usecase.PaymentVerification, error) {
	endpoint := v.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{err: fmt.Errorf("paystack request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("read paystack response: %w", err)}
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &retryableError{err: fmt.Errorf("paystack returned %d", resp.StatusCode)}
	}

	var parsed paystackResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("paystack returned %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}

	out := &usecase.PaymentVerification{Reference: reference}
	if parsed.Data != nil {
		out.Status = parsed.Data.Status
		out.Amount = decimal.New(parsed.Data.Amount, -2)
	}
	out.Verified = parsed.Status && out.Status == statusSuccess

	v.logger.Debug().
		Str("reference", reference).
		Str("status", out.Status).
		Bool("verified", out.Verified).
		Msg("paystack verification")

	return out, nil
}

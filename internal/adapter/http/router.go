package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/marketledger/internal/adapter/http/handler"
	"github.com/iho/marketledger/internal/adapter/http/middleware"
	"github.com/iho/marketledger/internal/infrastructure/metrics"
	"github.com/iho/marketledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler    *handler.WalletHandler
	OrderHandler     *handler.OrderHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Get("/reconciliation", cfg.WalletHandler.ReconcileAll)

		r.Route("/wallets/{accountID}", func(r chi.Router) {
			r.Get("/balance", cfg.WalletHandler.Balance)
			r.Get("/history", cfg.WalletHandler.History)
			r.Post("/credit", cfg.WalletHandler.Credit)
			r.Post("/debit", cfg.WalletHandler.Debit)
			r.Get("/reconciliation", cfg.WalletHandler.Reconcile)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.OrderHandler.Settle)
			r.Get("/{orderID}", cfg.OrderHandler.Get)
			r.Post("/{orderID}/tracking", cfg.OrderHandler.Track)
			r.Post("/{orderID}/tracking-token", cfg.OrderHandler.IssueToken)
		})

		r.Get("/users/{userID}/orders", cfg.OrderHandler.ListForUser)
	})

	return r
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/marketledger/internal/adapter/http"
	"github.com/iho/marketledger/internal/adapter/http/handler"
	"github.com/iho/marketledger/internal/adapter/http/middleware"
	"github.com/iho/marketledger/internal/adapter/payment"
	postgresRepo "github.com/iho/marketledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/marketledger/internal/adapter/repository/redis"
	"github.com/iho/marketledger/internal/domain"
	"github.com/iho/marketledger/internal/infrastructure/config"
	"github.com/iho/marketledger/internal/infrastructure/eventpublisher"
	"github.com/iho/marketledger/internal/infrastructure/logger"
	"github.com/iho/marketledger/internal/infrastructure/metrics"
	"github.com/iho/marketledger/internal/infrastructure/postgres"
	"github.com/iho/marketledger/internal/infrastructure/redis"
	"github.com/iho/marketledger/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Output:  os.Stderr,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "marketledger",
	})
	if envErr != nil {
		log.Debug().Msg(".env file not found, relying on environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	orderRepo := postgresRepo.NewOrderRepository(pool)
	itemRepo := postgresRepo.NewItemRepository(pool)
	discountRepo := postgresRepo.NewDiscountRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	tokenRepo := postgresRepo.NewTrackingTokenRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	walletUC := usecase.NewWalletUseCase(txManager, entryRepo, idGen, retrier, m, log)
	reconciliationUC := usecase.NewReconciliationUseCase(entryRepo, log)
	trackingUC := usecase.NewTrackingUseCase(tokenRepo, m, log, usecase.WithTrackingPrefix(cfg.TrackingTokenPrefix))
	orderUC := usecase.NewOrderUseCase(orderRepo, trackingUC, log)

	pricing, err := usecase.NewPricingEngine(discountRepo, cfg.PlatformFeePercentage)
	if err != nil {
		return fmt.Errorf("pricing engine: %w", err)
	}

	settlementUC := usecase.NewSettlementUseCase(usecase.SettlementDependencies{
		Ledger:    walletUC,
		Pricing:   pricing,
		Tracking:  trackingUC,
		Orders:    orderRepo,
		Items:     itemRepo,
		Users:     userRepo,
		Notifier:  usecase.NewOutboxNotifier(outboxRepo, idGen),
		IDGen:     idGen,
		Metrics:   m,
		Verifiers: buildVerifiers(cfg, redisClient, log),
	}, usecase.SettlementConfig{
		PlatformAccountID: cfg.PlatformAccountID,
		Currency:          cfg.Currency,
		FundBuyerWallet:   cfg.FundBuyerWallet,
		DeliveryEstimate:  cfg.DeliveryEstimate(),
		DropoffEstimate:   cfg.DropoffEstimate(),
	}, log)

	// HTTP
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:    handler.NewWalletHandler(walletUC, reconciliationUC),
		OrderHandler:     handler.NewOrderHandler(settlementUC, orderUC),
		HealthHandler:    newHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  buildPublisher(cfg, redisClient, log),
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("event publisher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if removed := rateLimiter.CleanupLimiters(time.Hour); removed > 0 {
					log.Debug().Int("removed", removed).Msg("dropped idle rate limiters")
				}
			}
		}
	})

	return g.Wait()
}

// buildVerifiers registers a gateway verifier for every payment method with
// credentials. Methods left out are refused as unverified at settlement.
func buildVerifiers(cfg *config.Config, client *goredis.Client, log zerolog.Logger) map[string]usecase.PaymentVerifier {
	verifiers := make(map[string]usecase.PaymentVerifier)

	if cfg.PaystackSecretKey == "" {
		log.Warn().Msg("PAYSTACK_SECRET_KEY not set, paystack payments cannot be verified")
		return verifiers
	}

	paystack := payment.NewPaystackVerifier(payment.PaystackConfig{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
		Timeout:   cfg.PaystackTimeout,
	}, log)

	var verifier usecase.PaymentVerifier = paystack
	if client != nil {
		cache := redisRepo.NewVerificationCache(client, cfg.PaymentCacheTTL)
		verifier = payment.NewCachingVerifier(domain.PaymentMethodPaystack, paystack, cache, log)
	}
	verifiers[domain.PaymentMethodPaystack] = verifier

	return verifiers
}

func buildPublisher(cfg *config.Config, client *goredis.Client, log zerolog.Logger) eventpublisher.Publisher {
	if cfg.NotificationSink == "log" {
		return eventpublisher.NewLogPublisher(log)
	}
	return redisRepo.NewPublisher(client, cfg.NotificationChannel)
}

func newHealthHandler(pool *pgxpool.Pool, client *goredis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(
		[]string{"postgres", "redis"},
		map[string]handler.Probe{
			"postgres": pool.Ping,
			"redis":    redis.Pinger(client),
		},
	)
}

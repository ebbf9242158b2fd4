package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/vkotov/finbook/internal/adapter/http"
	"github.com/vkotov/finbook/internal/adapter/http/handler"
	postgresRepo "github.com/vkotov/finbook/internal/adapter/repository/postgres"
	redisRepo "github.com/vkotov/finbook/internal/adapter/repository/redis"
	"github.com/vkotov/finbook/internal/infrastructure/auth"
	"github.com/vkotov/finbook/internal/infrastructure/config"
	"github.com/vkotov/finbook/internal/infrastructure/eventpublisher"
	"github.com/vkotov/finbook/internal/infrastructure/logging"
	"github.com/vkotov/finbook/internal/infrastructure/metrics"
	"github.com/vkotov/finbook/internal/infrastructure/postgres"
	"github.com/vkotov/finbook/internal/infrastructure/redis"
	"github.com/vkotov/finbook/internal/jobs"
	"github.com/vkotov/finbook/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	appLogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set when authentication is enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	incomeRepo := postgresRepo.NewIncomeRepository(pool)
	receiptRepo := postgresRepo.NewReceiptRepository(pool)
	productRepo := postgresRepo.NewProductRepository(pool)
	sellerRepo := postgresRepo.NewSellerRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	integrityRepo := postgresRepo.NewIntegrityRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()

	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Use cases
	balanceUC := usecase.NewBalanceUseCase(accountRepo, m)
	accountUC := usecase.NewAccountUseCase(accountRepo, cache, idGen)
	expenseUC := usecase.NewExpenseUseCase(txManager, expenseRepo, balanceUC, cache, outboxRepo, auditRepo, idGen, retrier, m)
	incomeUC := usecase.NewIncomeUseCase(txManager, incomeRepo, balanceUC, cache, outboxRepo, auditRepo, idGen, retrier, m)
	receiptUC := usecase.NewReceiptUseCase(txManager, receiptRepo, productRepo, sellerRepo, balanceUC, cache, outboxRepo, auditRepo, idGen, retrier, m)
	integrityUC := usecase.NewIntegrityUseCase(accountRepo, integrityRepo)
	userUC := usecase.NewUserUseCase(userRepo, jwtManager, idGen)

	// Background workers
	importQueue := jobs.NewImportQueue(receiptUC, appLogger.WithComponent("import_queue"), m, jobs.QueueConfig{
		Workers:   cfg.ImportWorkers,
		Retention: cfg.ImportJobRetention,
	})
	go importQueue.Start(ctx)

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(appLogger.Logger),
		Logger:     appLogger.WithComponent("event_publisher").Logger,
		BatchSize:  cfg.PublisherBatchSize,
		Interval:   cfg.PublisherInterval,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Handlers
	authHandler := handler.NewAuthHandler(userUC)
	accountHandler := handler.NewAccountHandler(accountUC)
	expenseHandler := handler.NewExpenseHandler(expenseUC)
	incomeHandler := handler.NewIncomeHandler(incomeUC)
	receiptHandler := handler.NewReceiptHandler(receiptUC, importQueue)
	integrityHandler := handler.NewIntegrityHandler(integrityUC, accountUC)
	auditHandler := handler.NewAuditHandler(auditRepo)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      authHandler,
		AccountHandler:   accountHandler,
		ExpenseHandler:   expenseHandler,
		IncomeHandler:    incomeHandler,
		ReceiptHandler:   receiptHandler,
		IntegrityHandler: integrityHandler,
		AuditHandler:     auditHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          m,
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

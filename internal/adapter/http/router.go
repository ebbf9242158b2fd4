package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vkotov/finbook/internal/adapter/http/handler"
	"github.com/vkotov/finbook/internal/adapter/http/middleware"
	"github.com/vkotov/finbook/internal/infrastructure/auth"
	"github.com/vkotov/finbook/internal/infrastructure/metrics"
	"github.com/vkotov/finbook/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler      *handler.AuthHandler
	AccountHandler   *handler.AccountHandler
	ExpenseHandler   *handler.ExpenseHandler
	IncomeHandler    *handler.IncomeHandler
	ReceiptHandler   *handler.ReceiptHandler
	IntegrityHandler *handler.IntegrityHandler
	AuditHandler     *handler.AuditHandler
	HealthHandler    *handler.HealthHandler

	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Metrics
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recovery)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			}

			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Delete("/{id}", cfg.AccountHandler.Delete)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", cfg.ExpenseHandler.Create)
				r.Get("/", cfg.ExpenseHandler.List)
				r.Get("/{id}", cfg.ExpenseHandler.Get)
				r.Put("/{id}", cfg.ExpenseHandler.Update)
				r.Delete("/{id}", cfg.ExpenseHandler.Delete)
			})

			r.Route("/incomes", func(r chi.Router) {
				r.Post("/", cfg.IncomeHandler.Create)
				r.Get("/", cfg.IncomeHandler.List)
				r.Get("/{id}", cfg.IncomeHandler.Get)
				r.Put("/{id}", cfg.IncomeHandler.Update)
				r.Delete("/{id}", cfg.IncomeHandler.Delete)
			})

			r.Route("/receipts", func(r chi.Router) {
				r.Post("/", cfg.ReceiptHandler.Create)
				r.Get("/", cfg.ReceiptHandler.List)
				r.Post("/import", cfg.ReceiptHandler.Import)
				r.Post("/import/async", cfg.ReceiptHandler.ImportAsync)
				r.Get("/import/{jobID}", cfg.ReceiptHandler.ImportStatus)
				r.Get("/{id}", cfg.ReceiptHandler.Get)
				r.Put("/{id}", cfg.ReceiptHandler.Update)
				r.Delete("/{id}", cfg.ReceiptHandler.Delete)
			})

			r.Route("/integrity", func(r chi.Router) {
				r.Get("/accounts/{id}", cfg.IntegrityHandler.CheckAccount)
				r.Get("/report", cfg.IntegrityHandler.Report)
			})

			r.Get("/audit", cfg.AuditHandler.List)
		})
	})

	return r
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Balance engine metrics
	BalanceWrites     prometheus.Counter
	BalanceAdjustments *prometheus.CounterVec
	AccountBalance    *prometheus.GaugeVec

	// Operation metrics
	ExpensesCreated prometheus.Counter
	IncomesCreated  prometheus.Counter
	ReceiptsCreated prometheus.Counter
	ReceiptImports  *prometheus.CounterVec
	OperationErrors *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBErrors      *prometheus.CounterVec
	DBConnections prometheus.Gauge

	// Job metrics
	ImportJobsQueued    prometheus.Counter
	ImportJobsCompleted *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		BalanceWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbook_balance_writes_total",
			Help: "Total number of account balance writes through the engine",
		}),
		BalanceAdjustments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbook_balance_adjustments_total",
				Help: "Total balance adjustments by kind",
			},
			[]string{"kind"},
		),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finbook_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_id", "currency"},
		),

		ExpensesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbook_expenses_created_total",
			Help: "Total number of expenses created",
		}),
		IncomesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbook_incomes_created_total",
			Help: "Total number of incomes created",
		}),
		ReceiptsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbook_receipts_created_total",
			Help: "Total number of receipts created",
		}),
		ReceiptImports: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbook_receipt_imports_total",
				Help: "Total receipt import attempts by outcome",
			},
			[]string{"outcome"},
		),
		OperationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbook_operation_errors_total",
				Help: "Total operation errors by type",
			},
			[]string{"error_type"},
		),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbook_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finbook_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbook_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "finbook_db_connections",
			Help: "Current number of database connections",
		}),

		ImportJobsQueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbook_import_jobs_queued_total",
			Help: "Total receipt import jobs queued",
		}),
		ImportJobsCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbook_import_jobs_completed_total",
				Help: "Total receipt import jobs completed by status",
			},
			[]string{"status"},
		),
	}
}

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций для метки result.
const (
	ResultOK           = "ok"
	ResultValidation   = "validation"
	ResultNotFound     = "not_found"
	ResultInvalidState = "invalid_state"
	ResultError        = "error"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "produccion_operations_total",
		Help: "Lifecycle operations by name and result",
	}, []string{"operation", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "produccion_operation_duration_seconds",
		Help:    "Lifecycle operation latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	planFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "produccion_plan_generation_failures_total",
		Help: "Production plans that failed to generate after order creation",
	})

	lotsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "produccion_lots_created_total",
		Help: "Lots created by origin (order, adhoc, split)",
	}, []string{"origin"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "produccion_http_requests_total",
		Help: "HTTP requests by method and status code",
	}, []string{"method", "code"})
)

// ObserveOperation учитывает выполнение операции.
func ObserveOperation(op, result string, elapsed time.Duration) {
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// PlanGenerationFailed учитывает неудачную генерацию плана.
func PlanGenerationFailed() {
	planFailures.Inc()
}

// LotsCreated учитывает созданные партии.
func LotsCreated(origin string, n int) {
	lotsCreated.WithLabelValues(origin).Add(float64(n))
}

// HTTPRequest учитывает HTTP запрос.
func HTTPRequest(method, code string) {
	httpRequests.WithLabelValues(method, code).Inc()
}

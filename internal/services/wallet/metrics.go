package wallet

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                         {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                        {}
func (n *NoopMetricsCollector) RecordError(string, string)                    {}
func (n *NoopMetricsCollector) RecordTransaction(string, float64)             {}

// PrometheusMetrics exports wallet metrics through client_golang.
type PrometheusMetrics struct {
	duration     *prometheus.HistogramVec
	results      *prometheus.CounterVec
	errors       *prometheus.CounterVec
	cache        *prometheus.CounterVec
	transactions *prometheus.CounterVec
	volume       *prometheus.CounterVec
}

func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_operation_duration_seconds",
			Help:    "Duration of wallet operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_operation_results_total",
			Help: "Wallet operation outcomes.",
		}, []string{"operation", "result"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_operation_errors_total",
			Help: "Wallet operation failures by error code.",
		}, []string{"operation", "code"}),
		cache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_cache_lookups_total",
			Help: "Wallet cache lookups.",
		}, []string{"key", "outcome"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_transactions_total",
			Help: "Committed money movements.",
		}, []string{"kind"}),
		volume: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_transaction_volume_total",
			Help: "Committed money volume.",
		}, []string{"kind"}),
	}
}

func (m *PrometheusMetrics) RecordOperationDuration(operation string, d time.Duration) {
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordOperationResult(operation, result string) {
	m.results.WithLabelValues(operation, result).Inc()
}

func (m *PrometheusMetrics) RecordCacheHit(key string) {
	m.cache.WithLabelValues(key, "hit").Inc()
}

func (m *PrometheusMetrics) RecordCacheMiss(key string) {
	m.cache.WithLabelValues(key, "miss").Inc()
}

func (m *PrometheusMetrics) RecordError(operation, code string) {
	m.errors.WithLabelValues(operation, code).Inc()
}

func (m *PrometheusMetrics) RecordTransaction(kind string, amount float64) {
	m.transactions.WithLabelValues(kind).Inc()
	m.volume.WithLabelValues(kind).Add(amount)
}

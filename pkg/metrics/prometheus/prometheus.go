package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JoeShih716/go-mem-bank/pkg/metrics"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	// Ledger
	operations        *prometheus.CounterVec
	operationLatency  *prometheus.HistogramVec
	accountsTotal     prometheus.Gauge
	transactionsTotal prometheus.Gauge

	// Transports
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	grpcRequests *prometheus.CounterVec
	grpcLatency  *prometheus.HistogramVec
}

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Total number of ledger operations per operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Ledger operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15), // 10µs to ~160ms
			},
			[]string{"operation"},
		),
		accountsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ledger_accounts",
				Help:      "Current number of accounts in the ledger",
			},
		),
		transactionsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ledger_transactions",
				Help:      "Current number of transactions in the ledger",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		grpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
		grpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "gRPC request latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// Register registers all metrics with the given Prometheus registerer.
func (pc *PrometheusCollector) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.operations,
		pc.operationLatency,
		pc.accountsTotal,
		pc.transactionsTotal,
		pc.httpRequests,
		pc.httpLatency,
		pc.grpcRequests,
		pc.grpcLatency,
	}

	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordOperation records a ledger operation.
func (pc *PrometheusCollector) RecordOperation(op string, outcome string, duration time.Duration) {
	pc.operations.WithLabelValues(op, outcome).Inc()
	pc.operationLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordLedgerSize records the current number of accounts and transactions.
func (pc *PrometheusCollector) RecordLedgerSize(accounts int, transactions int) {
	pc.accountsTotal.Set(float64(accounts))
	pc.transactionsTotal.Set(float64(transactions))
}

// RecordHTTPRequest records a served HTTP request.
func (pc *PrometheusCollector) RecordHTTPRequest(method string, route string, status int, duration time.Duration) {
	pc.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	pc.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGRPCRequest records a served gRPC request.
func (pc *PrometheusCollector) RecordGRPCRequest(method string, code string, duration time.Duration) {
	pc.grpcRequests.WithLabelValues(method, code).Inc()
	pc.grpcLatency.WithLabelValues(method).Observe(duration.Seconds())
}

var _ metrics.Collector = (*PrometheusCollector)(nil)

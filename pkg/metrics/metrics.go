package metrics

import (
	"time"
)

// Collector defines the interface for collecting ledger and transport metrics.
// Implementations can export metrics to various backends (Prometheus, in-memory, etc.).
type Collector interface {
	// Ledger operations, outcome is domain.Classify of the returned error
	RecordOperation(op string, outcome string, duration time.Duration)
	RecordLedgerSize(accounts int, transactions int)

	// Transports
	RecordHTTPRequest(method string, route string, status int, duration time.Duration)
	RecordGRPCRequest(method string, code string, duration time.Duration)
}

// NoOpCollector is a no-op implementation of Collector.
// It's used as the default collector when metrics are disabled.
type NoOpCollector struct{}

// RecordOperation does nothing.
func (NoOpCollector) RecordOperation(op string, outcome string, duration time.Duration) {}

// RecordLedgerSize does nothing.
func (NoOpCollector) RecordLedgerSize(accounts int, transactions int) {}

// RecordHTTPRequest does nothing.
func (NoOpCollector) RecordHTTPRequest(method string, route string, status int, duration time.Duration) {
}

// RecordGRPCRequest does nothing.
func (NoOpCollector) RecordGRPCRequest(method string, code string, duration time.Duration) {}

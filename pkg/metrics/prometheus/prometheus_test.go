package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_Records(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewPrometheusCollector("bank")
	require.NoError(t, collector.Register(registry))

	collector.RecordOperation("add_funds", "ok", time.Millisecond)
	collector.RecordOperation("add_funds", "ok", time.Millisecond)
	collector.RecordOperation("add_funds", "insufficient_funds", time.Millisecond)
	collector.RecordLedgerSize(3, 7)
	collector.RecordHTTPRequest("POST", "/money", 403, 2*time.Millisecond)
	collector.RecordGRPCRequest("/bank.v1.BankService/AddFunds", "OK", time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := make(map[string]int)
	for i, mf := range families {
		byName[mf.GetName()] = i
	}

	ops := families[byName["bank_ledger_operations_total"]]
	require.Len(t, ops.GetMetric(), 2)
	var total float64
	for _, m := range ops.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(3), total)

	accounts := families[byName["bank_ledger_accounts"]]
	assert.Equal(t, float64(3), accounts.GetMetric()[0].GetGauge().GetValue())
	transactions := families[byName["bank_ledger_transactions"]]
	assert.Equal(t, float64(7), transactions.GetMetric()[0].GetGauge().GetValue())

	httpRequests := families[byName["bank_http_requests_total"]]
	labels := map[string]string{}
	for _, lp := range httpRequests.GetMetric()[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	assert.Equal(t, map[string]string{"method": "POST", "route": "/money", "status": "403"}, labels)

	assert.Contains(t, byName, "bank_grpc_requests_total")
	assert.Contains(t, byName, "bank_http_request_duration_seconds")
}

func TestPrometheusCollector_RegisterTwiceFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, NewPrometheusCollector("bank").Register(registry))
	assert.Error(t, NewPrometheusCollector("bank").Register(registry))
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	// 同一指标不能重复注册
	assert.Error(t, Register(reg))

	IncCounterVec(OrdersTotal, map[string]string{"result": ResultSuccess})
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["bookstore_orders_total"])
}

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}

// 指标是全局的，按增量断言
func TestCounter(t *testing.T) {
	before := getCounterValue(t, CopiesReservedTotal)

	IncCounter(CopiesReservedTotal)
	AddCounter(CopiesReservedTotal, 2)

	assert.Equal(t, before+3, getCounterValue(t, CopiesReservedTotal))
}

func TestCounterVec(t *testing.T) {
	labels := map[string]string{"action": "create", "result": ResultRejected}
	before := getCounterVecValue(t, RentalsTotal, labels)

	IncCounterVec(RentalsTotal, labels)
	IncCounterVec(RentalsTotal, map[string]string{"action": "return", "result": ResultSuccess})
	IncCounterVec(RentalsTotal, labels)

	assert.Equal(t, before+2, getCounterVecValue(t, RentalsTotal, labels))
}

func TestGauge(t *testing.T) {
	before := getGaugeValue(t, HTTPRequestsInProgress)

	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	assert.Equal(t, before+2, getGaugeValue(t, HTTPRequestsInProgress))

	DecGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)
	assert.Equal(t, before, getGaugeValue(t, HTTPRequestsInProgress))
}

func TestGaugeVec(t *testing.T) {
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "event-publisher"}, 1)
	assert.Equal(t, float64(1), getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "event-publisher"}))
}

func TestHistogram(t *testing.T) {
	before := getHistogramCount(t, OrderCreationDuration)

	ObserveHistogram(OrderCreationDuration, 0.05)
	ObserveHistogram(OrderCreationDuration, 0.5)

	assert.Equal(t, before+2, getHistogramCount(t, OrderCreationDuration))
}

func TestHistogramVec(t *testing.T) {
	labels := map[string]string{"method": "POST", "path": "/api/v1/orders"}
	before := getHistogramVecCount(t, HTTPRequestDuration, labels)

	ObserveHistogramVec(HTTPRequestDuration, labels, 0.05)
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "GET", "path": "/api/v1/orders"}, 0.1)

	assert.Equal(t, before+1, getHistogramVecCount(t, HTTPRequestDuration, labels))
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.Counter.GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	t.Helper()
	return getCounterValue(t, counterVec.With(labels))
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.Gauge.GetValue()
}

func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	t.Helper()
	return getGaugeValue(t, gaugeVec.With(labels))
}

func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, histogram.Write(&metric))
	return metric.Histogram.GetSampleCount()
}

func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, histogramVec.With(labels).(prometheus.Histogram).Write(&metric))
	return metric.Histogram.GetSampleCount()
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestWorkflowMetrics_Counters(t *testing.T) {
	m := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordOrderConfirmed()
	m.RecordPaymentFailed()
	m.RecordInsufficientStock()
	m.RecordInvalidTransition()

	if got := counterValue(t, m.ordersCreated); got != 2 {
		t.Fatalf("orders created = %v, want 2", got)
	}
	if got := counterValue(t, m.ordersConfirmed); got != 1 {
		t.Fatalf("orders confirmed = %v, want 1", got)
	}
	if got := counterValue(t, m.paymentsFailed); got != 1 {
		t.Fatalf("payments failed = %v, want 1", got)
	}
	if got := counterValue(t, m.insufficientStock); got != 1 {
		t.Fatalf("insufficient stock = %v, want 1", got)
	}
	if got := counterValue(t, m.invalidTransitions); got != 1 {
		t.Fatalf("invalid transitions = %v, want 1", got)
	}
}

func TestWorkflowMetrics_ReservedUnitsGauge(t *testing.T) {
	m := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	m.AddReservedUnits(5)
	m.AddReservedUnits(-2)

	if got := gaugeValue(t, m.reservedUnits); got != 3 {
		t.Fatalf("reserved units = %v, want 3", got)
	}
}

func TestWorkflowMetrics_DoubleRegistrationReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newWorkflowMetricsWithRegisterer(registry)
	second := newWorkflowMetricsWithRegisterer(registry)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	if got := counterValue(t, second.ordersCreated); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func TestWorkflowMetrics_Histograms(t *testing.T) {
	m := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordCheckoutDuration(15 * time.Millisecond)
	m.RecordChargeDuration(120 * time.Millisecond)

	var metric dto.Metric
	if err := m.checkoutDuration.Write(&metric); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	if metric.GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("checkout samples = %d, want 1", metric.GetHistogram().GetSampleCount())
	}
}

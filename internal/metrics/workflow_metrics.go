package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики конвейера заказов.
type WorkflowMetrics struct {
	// Счётчики событий жизненного цикла
	ordersCreated   prometheus.Counter
	ordersConfirmed prometheus.Counter
	ordersCanceled  prometheus.Counter
	ordersShipped   prometheus.Counter
	ordersDelivered prometheus.Counter
	ordersRefunded  prometheus.Counter

	// Счётчики отказов
	paymentsFailed     prometheus.Counter
	insufficientStock  prometheus.Counter
	invalidTransitions prometheus.Counter

	// Гистограммы времени выполнения
	checkoutDuration prometheus.Histogram
	chargeDuration   prometheus.Histogram

	// Счётчики событий timeline/outbox
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	// Gauge зарезервированных единиц по живым заказам
	reservedUnits prometheus.Gauge
}

// NewWorkflowMetrics создаёт метрики workflow в default registry.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders created from carts",
		}),
		ordersConfirmed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_confirmed_total",
			Help: "Total number of orders confirmed after successful payment",
		}),
		ordersCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_canceled_total",
			Help: "Total number of orders canceled",
		}),
		ordersShipped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_shipped_total",
			Help: "Total number of orders shipped",
		}),
		ordersDelivered: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_delivered_total",
			Help: "Total number of orders delivered",
		}),
		ordersRefunded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_refunded_total",
			Help: "Total number of orders refunded",
		}),
		paymentsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_payments_failed_total",
			Help: "Total number of payment attempts declined by a processor",
		}),
		insufficientStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_insufficient_stock_total",
			Help: "Total number of checkouts rejected due to insufficient stock",
		}),
		invalidTransitions: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_invalid_transitions_total",
			Help: "Total number of workflow events rejected by a state guard",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of CreateOrder calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		chargeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_charge_duration_seconds",
			Help:    "Duration of payment processor calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		reservedUnits: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_reserved_units",
			Help: "Units of stock currently reserved by live orders",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *WorkflowMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderConfirmed увеличивает счётчик подтверждённых заказов.
func (m *WorkflowMetrics) RecordOrderConfirmed() {
	m.ordersConfirmed.Inc()
}

// RecordOrderCanceled увеличивает счётчик отменённых заказов.
func (m *WorkflowMetrics) RecordOrderCanceled() {
	m.ordersCanceled.Inc()
}

// RecordOrderShipped увеличивает счётчик отгруженных заказов.
func (m *WorkflowMetrics) RecordOrderShipped() {
	m.ordersShipped.Inc()
}

// RecordOrderDelivered увеличивает счётчик доставленных заказов.
func (m *WorkflowMetrics) RecordOrderDelivered() {
	m.ordersDelivered.Inc()
}

// RecordOrderRefunded увеличивает счётчик возвратов.
func (m *WorkflowMetrics) RecordOrderRefunded() {
	m.ordersRefunded.Inc()
}

// RecordPaymentFailed увеличивает счётчик отклонённых платежей.
func (m *WorkflowMetrics) RecordPaymentFailed() {
	m.paymentsFailed.Inc()
}

// RecordInsufficientStock увеличивает счётчик отказов из-за нехватки стока.
func (m *WorkflowMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// RecordInvalidTransition увеличивает счётчик событий, отклонённых guard'ом.
func (m *WorkflowMetrics) RecordInvalidTransition() {
	m.invalidTransitions.Inc()
}

// RecordCheckoutDuration записывает длительность CreateOrder.
func (m *WorkflowMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordChargeDuration записывает длительность обращения к процессору.
func (m *WorkflowMetrics) RecordChargeDuration(duration time.Duration) {
	m.chargeDuration.Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *WorkflowMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *WorkflowMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// AddReservedUnits корректирует gauge зарезервированных единиц (delta может быть отрицательной).
func (m *WorkflowMetrics) AddReservedUnits(delta int64) {
	m.reservedUnits.Add(float64(delta))
}

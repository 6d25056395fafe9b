package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks order placement and back-office mutations.
type OrderMetrics struct {
	placed      *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	adjustments *prometheus.CounterVec
	value       prometheus.Histogram
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed, by shipping method.",
	}, []string{"shipping_method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Order placements rejected, by reason.",
	}, []string{"reason"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status changes, by target status.",
	}, []string{"status"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_adjustments_total",
		Help: "Committed order adjustments, by type.",
	}, []string{"type"})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_amount",
		Help:    "Order totals at placement.",
		Buckets: []float64{250, 500, 1000, 2000, 5000, 10000, 25000},
	})
	reg.MustRegister(placed, rejected, transitions, adjustments, value)
	return &OrderMetrics{
		placed:      placed,
		rejected:    rejected,
		transitions: transitions,
		adjustments: adjustments,
		value:       value,
	}
}

// ObservePlaced records a placed order and its total.
func (m *OrderMetrics) ObservePlaced(shippingMethod string, total float64) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(shippingMethod)).Inc()
	m.value.Observe(total)
}

// IncRejected counts a rejected placement.
func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *OrderMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *OrderMetrics) IncAdjustment(adjType string) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(adjType)).Inc()
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry, so construction is repeatable and the
// handler serves exactly what the service registered.
type Metrics struct {
	registry *prometheus.Registry

	OrdersPlaced         prometheus.Counter
	PaymentVerifications *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
}

func New() *Metrics {
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "atlasarrow",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Total number of orders placed.",
	})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atlasarrow",
		Subsystem: "payment",
		Name:      "verifications_total",
		Help:      "Payment signature verifications by result.",
	}, []string{"result"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "atlasarrow",
		Subsystem: "notify",
		Name:      "dropped_total",
		Help:      "Notifications dropped due to a full queue.",
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(ordersPlaced, verifications, dropped)

	return &Metrics{
		registry:             registry,
		OrdersPlaced:         ordersPlaced,
		PaymentVerifications: verifications,
		NotificationsDropped: dropped,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Cart mutation labels.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
)

// Checkout outcome labels.
const (
	OutcomePlaced    = "placed"
	OutcomeEmptyCart = "empty_cart"
)

// StoreMetrics holds the storefront's Prometheus collectors. A nil
// *StoreMetrics records nothing.
type StoreMetrics struct {
	cartMutations    *prometheus.CounterVec
	checkoutOutcomes *prometheus.CounterVec
	orderValue       prometheus.Histogram

	activeSessions prometheus.Gauge
	sessionsSwept  prometheus.Counter

	trackingUpdates prometheus.Counter
	trackingClients prometheus.Gauge
}

// NewStoreMetrics registers the collectors on the default registry.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"operation"}),
		checkoutOutcomes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_total",
			Help: "Checkout attempts by outcome",
		}, []string{"outcome"}),
		orderValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_total_amount",
			Help:    "Total amount of placed orders including shipping",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Signed-in sessions currently holding a cart",
		}),
		sessionsSwept: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_sessions_swept_total",
			Help: "Sessions dropped after idle expiry",
		}),
		trackingUpdates: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_tracking_updates_total",
			Help: "Order tracking updates posted by admins",
		}),
		trackingClients: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_tracking_ws_clients",
			Help: "Connected order tracking websocket clients",
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

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
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

func (m *StoreMetrics) RecordCartMutation(operation string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(operation).Inc()
}

// RecordOrderPlaced counts a successful checkout and observes its total.
func (m *StoreMetrics) RecordOrderPlaced(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.checkoutOutcomes.WithLabelValues(OutcomePlaced).Inc()
	m.orderValue.Observe(total.InexactFloat64())
}

func (m *StoreMetrics) RecordEmptyCartRejected() {
	if m == nil {
		return
	}
	m.checkoutOutcomes.WithLabelValues(OutcomeEmptyCart).Inc()
}

func (m *StoreMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *StoreMetrics) RecordSessionsSwept(n int) {
	if m == nil {
		return
	}
	m.sessionsSwept.Add(float64(n))
}

func (m *StoreMetrics) RecordTrackingUpdate() {
	if m == nil {
		return
	}
	m.trackingUpdates.Inc()
}

func (m *StoreMetrics) TrackingClientConnected() {
	if m == nil {
		return
	}
	m.trackingClients.Inc()
}

func (m *StoreMetrics) TrackingClientDisconnected() {
	if m == nil {
		return
	}
	m.trackingClients.Dec()
}

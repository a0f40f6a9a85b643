// internal/metrics/metrics.go
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rabbit-labs/launchpad/internal/events"
)

// Metrics exposes launchpad counters on a prometheus registry. All values are
// fed from bus events, so instrumentation stays out of the trade path.
type Metrics struct {
	registry *prometheus.Registry

	instrumentsCreated prometheus.Counter
	tradesTotal        *prometheus.CounterVec
	graduationsTotal   prometheus.Counter
	accessChanges      *prometheus.CounterVec
	failuresTotal      *prometheus.CounterVec
	busPending         prometheus.GaugeFunc

	subs []events.Subscription
}

func New(bus *events.Bus) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		instrumentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "instruments_created_total",
			Help:      "Number of instruments created.",
		}),
		tradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "trades_total",
			Help:      "Number of settled trades by side.",
		}, []string{"side"}),
		graduationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "graduations_total",
			Help:      "Number of instruments moved to the external venue.",
		}),
		accessChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "access_state_changes_total",
			Help:      "Administrative state transitions by kind.",
		}, []string{"change"}),
		failuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "operation_failures_total",
			Help:      "Rejected or failed engine operations by operation name.",
		}, []string{"operation"}),
		busPending: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "launchpad",
			Name:      "event_bus_pending",
			Help:      "Events queued on the bus awaiting delivery.",
		}, func() float64 { return float64(bus.Pending()) }),
	}

	m.registry.MustRegister(
		m.instrumentsCreated,
		m.tradesTotal,
		m.graduationsTotal,
		m.accessChanges,
		m.failuresTotal,
		m.busPending,
	)

	m.subs = append(m.subs,
		bus.SubscribeFunc(events.InstrumentCreated, m.onCreated),
		bus.SubscribeFunc(events.TradeCompleted, m.onTrade),
		bus.SubscribeFunc(events.InstrumentGraduated, m.onGraduated),
		bus.SubscribeFunc(events.AccessStateChanged, m.onAccessChanged),
	)

	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordFailure counts one rejected or failed operation. Failures never reach
// the bus, so the API layer reports them directly.
func (m *Metrics) RecordFailure(operation string) {
	m.failuresTotal.WithLabelValues(operation).Inc()
}

// Detach unsubscribes from the bus.
func (m *Metrics) Detach() {
	for _, sub := range m.subs {
		sub.Unsubscribe()
	}
	m.subs = nil
}

func (m *Metrics) onCreated(context.Context, events.Event) error {
	m.instrumentsCreated.Inc()
	return nil
}

func (m *Metrics) onTrade(_ context.Context, event events.Event) error {
	if trade, ok := event.(events.TradeCompletedEvent); ok {
		m.tradesTotal.WithLabelValues(string(trade.Side)).Inc()
	}
	return nil
}

func (m *Metrics) onGraduated(context.Context, events.Event) error {
	m.graduationsTotal.Inc()
	return nil
}

func (m *Metrics) onAccessChanged(_ context.Context, event events.Event) error {
	if change, ok := event.(events.AccessStateChangedEvent); ok {
		m.accessChanges.WithLabelValues(change.Change).Inc()
	}
	return nil
}

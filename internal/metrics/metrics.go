package metrics

import (
	"net/http"

	"github.com/klokku/focusweek/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics turns lifecycle events into Prometheus series.
type Metrics struct {
	registry *prometheus.Registry

	dayTransitions   *prometheus.CounterVec
	tasksCompleted   *prometheus.CounterVec
	tasksExpired     prometheus.Counter
	weekTransitions  *prometheus.CounterVec
	passes           prometheus.Counter
	passFailures     prometheus.Counter
	passDuration     prometheus.Histogram
	lastPassExpiries prometheus.Gauge
}

func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		// Labels: from, to (day status)
		dayTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "focusweek",
			Subsystem: "day",
			Name:      "transitions_total",
			Help:      "Day status transitions",
		}, []string{"from", "to"}),
		tasksCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "focusweek",
			Subsystem: "task",
			Name:      "completed_total",
			Help:      "Tasks moved to the done zone",
		}, []string{"category"}),
		tasksExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "focusweek",
			Subsystem: "task",
			Name:      "expired_total",
			Help:      "Active tasks dropped by day expiry",
		}),
		weekTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "focusweek",
			Subsystem: "week",
			Name:      "transitions_total",
			Help:      "Week status transitions, from is empty for created weeks",
		}, []string{"from", "to"}),
		passes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "focusweek",
			Subsystem: "reconciliation",
			Name:      "passes_total",
			Help:      "Completed reconciliation passes",
		}),
		passFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "focusweek",
			Subsystem: "reconciliation",
			Name:      "failures_total",
			Help:      "Store failures skipped during reconciliation passes",
		}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "focusweek",
			Subsystem: "reconciliation",
			Name:      "duration_seconds",
			Help:      "Reconciliation pass duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		lastPassExpiries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "focusweek",
			Subsystem: "reconciliation",
			Name:      "last_expired_days",
			Help:      "Days expired by the most recent pass",
		}),
	}
}

// Subscribe registers the metric handlers on the bus.
func (m *Metrics) Subscribe(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.DayStatusChangedType, func(e event_bus.EventT[event_bus.DayStatusChanged]) error {
		m.dayTransitions.WithLabelValues(e.Data.From, e.Data.To).Inc()
		if e.Data.To == "expired" {
			m.tasksExpired.Add(float64(e.Data.ExpiredCount))
		}
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.TaskCompletedType, func(e event_bus.EventT[event_bus.TaskCompleted]) error {
		m.tasksCompleted.WithLabelValues(e.Data.Category).Inc()
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.WeekStatusChangedType, func(e event_bus.EventT[event_bus.WeekStatusChanged]) error {
		m.weekTransitions.WithLabelValues(e.Data.From, e.Data.To).Inc()
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.ReconciliationCompletedType, func(e event_bus.EventT[event_bus.ReconciliationCompleted]) error {
		m.passes.Inc()
		m.passFailures.Add(float64(e.Data.Failures))
		m.passDuration.Observe(e.Data.Duration.Seconds())
		m.lastPassExpiries.Set(float64(e.Data.ExpiredDays))
		return nil
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

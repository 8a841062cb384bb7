package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry              *prometheus.Registry
	earnEventsTotal       *prometheus.CounterVec
	pointsAwardedTotal    *prometheus.CounterVec
	withdrawalsRequested  *prometheus.CounterVec
	withdrawalTransitions *prometheus.CounterVec
}

// New registers all collectors on a private registry so several servers can
// coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		earnEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rewards",
				Subsystem: "ledger",
				Name:      "earn_events_total",
				Help:      "Earn attempts partitioned by event type and result.",
			},
			[]string{"type", "result"},
		),
		pointsAwardedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rewards",
				Subsystem: "ledger",
				Name:      "points_awarded_total",
				Help:      "Points credited partitioned by event type.",
			},
			[]string{"type"},
		),
		withdrawalsRequested: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rewards",
				Subsystem: "withdrawals",
				Name:      "requested_total",
				Help:      "Withdrawal requests partitioned by method and result.",
			},
			[]string{"method", "result"},
		),
		withdrawalTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rewards",
				Subsystem: "withdrawals",
				Name:      "transitions_total",
				Help:      "Admin status transitions partitioned by target status.",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) ObserveEarn(eventType, result string, points int64) {
	if m == nil {
		return
	}
	m.earnEventsTotal.WithLabelValues(eventType, result).Inc()
	if points > 0 {
		m.pointsAwardedTotal.WithLabelValues(eventType).Add(float64(points))
	}
}

func (m *Metrics) ObserveWithdrawalRequest(method, result string) {
	if m == nil {
		return
	}
	m.withdrawalsRequested.WithLabelValues(method, result).Inc()
}

func (m *Metrics) ObserveWithdrawalTransition(status string) {
	if m == nil {
		return
	}
	m.withdrawalTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

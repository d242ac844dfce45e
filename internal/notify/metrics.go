package notify

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the poller's Prometheus collectors.
type Metrics struct {
	FetchTotal     *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	Unread         prometheus.Gauge
	ReadStateSaves *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which tests rely on.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmwatch_notification_fetch_total",
				Help: "Notification fetches by outcome",
			},
			[]string{"outcome"},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pmwatch_notification_fetch_duration_seconds",
				Help:    "Duration of notification fetches",
				Buckets: prometheus.DefBuckets,
			},
		),
		Unread: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pmwatch_unread_notifications",
				Help: "Unread notifications after the last update",
			},
		),
		ReadStateSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmwatch_readstate_saves_total",
				Help: "Read-state writes by status",
			},
			[]string{"status"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.FetchTotal, m.FetchDuration, m.Unread, m.ReadStateSaves)
	}
	return m
}

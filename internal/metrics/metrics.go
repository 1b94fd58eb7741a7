package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "push_relay_registrations_total",
		Help: "Total device registrations by outcome.",
	}, []string{"outcome"})

	PublishesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "push_relay_publishes_total",
		Help: "Total publish attempts by outcome (ok or relay error kind).",
	}, []string{"outcome"})

	PublishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "push_relay_publish_duration_seconds",
		Help:    "End-to-end latency of relay publish calls.",
		Buckets: prometheus.DefBuckets,
	})
)

func Register() {
	prometheus.MustRegister(
		RegistrationsTotal,
		PublishesTotal,
		PublishDuration,
	)
}

package region

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "regiond"

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "ticks_total",
		Help:      "Ticks executed, by kind.",
	}, []string{"kind"})

	tickSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "tick_duration_seconds",
		Help:      "Time spent inside one tick, by kind.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"kind"})

	scriptErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "script_errors_total",
		Help:      "Script calls that raised an error.",
	})

	suppressedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "suppressed_events_total",
		Help:      "Script events dropped because they already ran this tick.",
	})

	droppedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "dropped_messages_total",
		Help:      "Messages dropped because a channel was full.",
	}, []string{"direction"})

	activeRegions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "regions_active",
		Help:      "Regions currently registered.",
	})
)

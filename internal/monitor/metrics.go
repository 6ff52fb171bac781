package monitor

import "github.com/prometheus/client_golang/prometheus"

// Pipeline metrics, exposed on /metrics alongside the HTTP metrics.
var (
	readingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "thermwatch_readings_total",
			Help: "Total number of sensor readings processed.",
		},
	)
	anomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermwatch_anomalies_total",
			Help: "Total number of readings classified as anomalous, by injected fault type.",
		},
		[]string{"fault"},
	)
	temperatureCelsius = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "thermwatch_temperature_celsius",
			Help: "Most recent sensor reading.",
		},
	)
	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thermwatch_tick_duration_seconds",
			Help:    "Time spent processing one detection tick, excluding the inter-tick pause.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(readingsTotal)
	prometheus.MustRegister(anomaliesTotal)
	prometheus.MustRegister(temperatureCelsius)
	prometheus.MustRegister(tickDuration)
}

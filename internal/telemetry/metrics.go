package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weather-clock/internal/common"
)

var (
	// Refreshes counts refresh attempts per source and outcome kind ("ok" on success).
	Refreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "weatherclock",
			Name:      "refreshes_total",
			Help:      "Total number of refresh attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// LastSuccess records the unix time of the last successful refresh per source.
	LastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "weatherclock",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh by source",
		},
		[]string{"source"},
	)

	// SignalStrength is the last polled RSSI in dBm.
	SignalStrength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "weatherclock",
			Name:      "signal_strength_dbm",
			Help:      "Last polled received signal strength",
		},
	)

	// Temperature is the displayed temperature in degrees Celsius.
	Temperature = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "weatherclock",
			Name:      "temperature_celsius",
			Help:      "Last fetched temperature",
		},
	)

	// Ensure metrics are only registered once
	registerOnce sync.Once
)

// Register adds the collectors to the default registry.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Refreshes, LastSuccess, SignalStrength, Temperature)
	})
}

// ObserveRefresh records the outcome of one refresh attempt.
func ObserveRefresh(source string, err error, at time.Time) {
	if err != nil {
		Refreshes.WithLabelValues(source, string(common.KindOf(err))).Inc()
		return
	}
	Refreshes.WithLabelValues(source, "ok").Inc()
	LastSuccess.WithLabelValues(source).Set(float64(at.Unix()))
}

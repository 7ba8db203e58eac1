package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cycle outcome labels.
const (
	StatusOK         = "ok"
	StatusNoop       = "noop"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
	StatusStoreError = "store_error"
)

// Metrics bundles watcher metrics.
type Metrics struct {
	CyclesTotal      *prometheus.CounterVec
	CycleDuration    prometheus.Histogram
	StationsFetched  *prometheus.GaugeVec
	NewStationsTotal *prometheus.CounterVec
	NotifyFailures   prometheus.Counter
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chargewatch_provider_cycles_total",
				Help: "Total provider reconciliation cycles by provider and status",
			},
			[]string{"provider", "status"},
		),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chargewatch_provider_cycle_duration_seconds",
			Help:    "Provider cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		StationsFetched: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chargewatch_stations_fetched",
				Help: "Stations decoded from the last list fetch per provider",
			},
			[]string{"provider"},
		),
		NewStationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chargewatch_new_stations_total",
				Help: "Total newly discovered stations per provider",
			},
			[]string{"provider"},
		),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chargewatch_notify_failures_total",
			Help: "Total notification delivery failures",
		}),
	}
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.StationsFetched,
		m.NewStationsTotal,
		m.NotifyFailures,
	)
	return m
}

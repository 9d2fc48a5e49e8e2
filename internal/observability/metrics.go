package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bggeo"

// Metrics holds the Prometheus collectors for the adapter, the replay binding,
// and the location relay.
type Metrics struct {
	// Adapter metrics.
	NativeCalls     *prometheus.CounterVec // labels: method={configure,start,stop,startTask,endTask,getCurrentLocation,on}
	StreamEmissions *prometheus.CounterVec // labels: stream
	StreamErrors    *prometheus.CounterVec // labels: stream

	// Replay binding metrics.
	ReplayFixes   prometheus.Counter
	ReplayRunning prometheus.Gauge

	// Relay metrics.
	LocationsReceived  prometheus.Counter
	LocationsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	RelayRunning       prometheus.Gauge
	BatchSize          prometheus.Histogram
	BatchLoadDuration  prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewUnregisteredMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewUnregisteredMetrics creates Metrics that are not attached to any
// registry. Tests and library callers without a /metrics endpoint use it to
// avoid "already registered" panics.
func NewUnregisteredMetrics() *Metrics {
	return &Metrics{
		NativeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "native_calls_total",
			Help:      "Calls forwarded to the native binding, by method.",
		}, []string{"method"}),
		StreamEmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_emissions_total",
			Help:      "Values emitted on adapter streams, by stream.",
		}, []string{"stream"}),
		StreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_errors_total",
			Help:      "Adapter streams terminated with an error, by stream.",
		}, []string{"stream"}),
		ReplayFixes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replay_fixes_total",
			Help:      "Fixes emitted by the replay binding.",
		}),
		ReplayRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replay_running",
			Help:      "1 while the replay binding is started, 0 otherwise.",
		}),
		LocationsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_received_total",
			Help:      "Locations received by the relay from the location stream.",
		}),
		LocationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_published_total",
			Help:      "Locations written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed batch loads.",
		}),
		RelayRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_running",
			Help:      "1 when the relay is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of locations per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_load_duration_seconds",
			Help:      "Duration of a successful batch load.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.NativeCalls,
		m.StreamEmissions,
		m.StreamErrors,
		m.ReplayFixes,
		m.ReplayRunning,
		m.LocationsReceived,
		m.LocationsPublished,
		m.PublishErrors,
		m.RelayRunning,
		m.BatchSize,
		m.BatchLoadDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}

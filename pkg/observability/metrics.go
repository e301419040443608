package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
//
//	reg := prometheus.NewRegistry()
//	m := observability.NewMetrics(reg)
//	m.Install()
//	defer prometheus.WriteToTextfile("lanebook.prom", reg)
type Metrics struct {
	edits          *prometheus.CounterVec
	editDuration   *prometheus.HistogramVec
	lanes          prometheus.Gauge
	measures       prometheus.Gauge
	inconsistent   prometheus.Counter
	builds         *prometheus.CounterVec
	buildDuration  prometheus.Histogram
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	cacheEvents    *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanebook", Name: "edits_total",
			Help: "Session edits by operation and outcome.",
		}, []string{"op", "outcome"}),
		editDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lanebook", Name: "edit_duration_seconds",
			Help:    "Time spent in one session edit.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op"}),
		lanes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanebook", Name: "lanes",
			Help: "Lane count after the most recent edit.",
		}),
		measures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanebook", Name: "measures",
			Help: "Measure count after the most recent edit.",
		}),
		inconsistent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lanebook", Name: "inconsistencies_total",
			Help: "Sessions that stopped accepting edits.",
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanebook", Name: "builds_total",
			Help: "Script builds by outcome.",
		}, []string{"outcome"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lanebook", Name: "build_duration_seconds",
			Help:    "Time spent replaying a chart script.",
			Buckets: prometheus.DefBuckets,
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanebook", Name: "renders_total",
			Help: "Rendered artifacts by format and outcome.",
		}, []string{"format", "outcome"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lanebook", Name: "render_duration_seconds",
			Help:    "Time spent rendering all requested formats.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanebook", Name: "cache_events_total",
			Help: "Cache lookups and writes by key type and event.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanebook", Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
	}
	reg.MustRegister(
		m.edits, m.editDuration, m.lanes, m.measures, m.inconsistent,
		m.builds, m.buildDuration, m.renders, m.renderDuration,
		m.cacheEvents, m.cacheBytes,
	)
	return m
}

// Install registers m as the layout, pipeline and cache hooks.
func (m *Metrics) Install() {
	SetLayoutHooks(m)
	SetPipelineHooks(m)
	SetCacheHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnEdit(op string, lanes, measures int, d time.Duration, err error) {
	m.edits.WithLabelValues(op, outcome(err)).Inc()
	m.editDuration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		m.lanes.Set(float64(lanes))
		m.measures.Set(float64(measures))
	}
}

func (m *Metrics) OnInconsistency(error) { m.inconsistent.Inc() }

func (m *Metrics) OnBuildStart(context.Context, string) {}

func (m *Metrics) OnBuildComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	m.builds.WithLabelValues(outcome(err)).Inc()
	m.buildDuration.Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	for _, f := range formats {
		m.renders.WithLabelValues(f, outcome(err)).Inc()
	}
	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ LayoutHooks   = (*Metrics)(nil)
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
)

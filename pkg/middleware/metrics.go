package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/vdom"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hyper").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "hyper",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for hyper apps and sessions.
type Metrics struct {
	dispatchesTotal     *prometheus.CounterVec
	dispatchDuration    *prometheus.HistogramVec
	patchesTotal        prometheus.Counter
	rendersTotal        prometheus.Counter
	activeSubscriptions prometheus.Gauge
	activeSessions      prometheus.Gauge
	wsErrors            *prometheus.CounterVec

	// Last reported subscription count per app, for gauge deltas.
	mu   sync.Mutex
	subs map[*app.App]int
}

// Collectors are shared per registry: registering the same names twice
// would panic.
var (
	registryMetrics   = make(map[prometheus.Registerer]*Metrics)
	registryMetricsMu sync.Mutex
)

func newMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of dispatched actions by kind and status",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Time to resolve, render and run effects for one action",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		patchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of DOM patches applied",
			ConstLabels: config.ConstLabels,
		}),

		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of view renders",
			ConstLabels: config.ConstLabels,
		}),

		activeSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_subscriptions",
			Help:        "Number of running subscriptions across all apps",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		subs: make(map[*app.App]int),
	}
}

// Prometheus returns the metrics registered on the configured registry,
// creating them on first use.
//
// Metrics collected:
//   - hyper_dispatches_total: Counter of actions by kind and status
//   - hyper_dispatch_duration_seconds: Histogram of dispatch duration
//   - hyper_patches_total: Counter of applied patches
//   - hyper_renders_total: Counter of renders
//   - hyper_active_subscriptions: Gauge of running subscriptions
//   - hyper_active_sessions: Gauge of WebSocket sessions
//   - hyper_websocket_errors_total: Counter of WebSocket errors
//
// Example:
//
//	m := middleware.Prometheus(middleware.WithNamespace("myapp"))
//	a, err := app.Mount(cfg, m.Options()...)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	registryMetricsMu.Lock()
	defer registryMetricsMu.Unlock()
	if m := registryMetrics[config.Registry]; m != nil {
		return m
	}
	m := newMetrics(config)
	registryMetrics[config.Registry] = m
	return m
}

// Middleware times and counts every dispatched action. A panicking action
// is counted with status "panic" and the panic continues.
func (m *Metrics) Middleware() app.Middleware {
	return func(next app.DispatchFunc) app.DispatchFunc {
		return func(action app.Action, payload any) {
			kind := app.Kind(action)
			start := time.Now()
			status := "panic"
			defer func() {
				m.dispatchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
				m.dispatchesTotal.WithLabelValues(kind, status).Inc()
			}()

			next(action, payload)
			status = "ok"
		}
	}
}

// Observer counts renders and patches and tracks running subscriptions.
func (m *Metrics) Observer() app.Observer {
	return app.Observer{
		OnRender: func(_ *app.App, patches []vdom.Patch) {
			m.rendersTotal.Inc()
			m.patchesTotal.Add(float64(len(patches)))
		},
		OnSubscriptions: m.recordSubscriptions,
	}
}

// Options installs both Middleware and Observer on an app.
func (m *Metrics) Options() []app.Option {
	return []app.Option{
		app.WithMiddleware(m.Middleware()),
		app.WithObserver(m.Observer()),
	}
}

func (m *Metrics) recordSubscriptions(a *app.App, active int) {
	m.mu.Lock()
	prev := m.subs[a]
	if active == 0 {
		delete(m.subs, a)
	} else {
		m.subs[a] = active
	}
	m.mu.Unlock()
	m.activeSubscriptions.Add(float64(active - prev))
}

// SessionOpened records a new WebSocket session.
func (m *Metrics) SessionOpened() { m.activeSessions.Inc() }

// SessionClosed records a closed WebSocket session.
func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }

// WebSocketError records a WebSocket error. errorType should be a small
// fixed set ("read", "write", "upgrade", "decode") to keep label
// cardinality low.
func (m *Metrics) WebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}

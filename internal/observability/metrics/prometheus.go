package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every exported metric.
const DefaultNamespace = "sbobine"

// durationBuckets cover both sub-second HTTP work and multi-minute pipeline stages.
//
//nolint:gochecknoglobals // static histogram layout
var durationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800}

// PrometheusOptions configures a PrometheusSink.
type PrometheusOptions struct {
	Namespace string
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// PrometheusSink adapts Sink calls onto Prometheus collectors.
// Collectors are created on first use of a name; the label set is fixed by that first call
// and later calls fill missing labels with "" and drop unknown ones.
type PrometheusSink struct {
	namespace string
	registry  *prometheus.Registry
	logger    *slog.Logger

	mu         sync.Mutex
	counters   map[string]*labeled[*prometheus.CounterVec]
	gauges     map[string]*labeled[*prometheus.GaugeVec]
	histograms map[string]*labeled[*prometheus.HistogramVec]
}

type labeled[T any] struct {
	vec    T
	labels []string
}

var _ Sink = (*PrometheusSink)(nil)

// NewPrometheusSink builds a sink over its own registry.
func NewPrometheusSink(opts PrometheusOptions) *PrometheusSink {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PrometheusSink{
		namespace:  ns,
		registry:   reg,
		logger:     logger.With("component", "metrics"),
		counters:   make(map[string]*labeled[*prometheus.CounterVec]),
		gauges:     make(map[string]*labeled[*prometheus.GaugeVec]),
		histograms: make(map[string]*labeled[*prometheus.HistogramVec]),
	}
}

// Registry exposes the underlying registry.
func (p *PrometheusSink) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Count implements Sink.
func (p *PrometheusSink) Count(name string, value int64, tags map[string]string) {
	if value < 0 {
		return
	}
	p.mu.Lock()
	c, ok := p.counters[name]
	if !ok {
		labels := labelNames(tags)
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      metricName(name) + "_total",
			Help:      "Count of " + name + " events.",
		}, labels)
		c = &labeled[*prometheus.CounterVec]{vec: register(p, vec), labels: labels}
		p.counters[name] = c
	}
	p.mu.Unlock()
	if c.vec != nil {
		c.vec.WithLabelValues(labelValues(c.labels, tags)...).Add(float64(value))
	}
}

// Gauge implements Sink.
func (p *PrometheusSink) Gauge(name string, value float64, tags map[string]string) {
	p.mu.Lock()
	g, ok := p.gauges[name]
	if !ok {
		labels := labelNames(tags)
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      metricName(name),
			Help:      "Current value of " + name + ".",
		}, labels)
		g = &labeled[*prometheus.GaugeVec]{vec: register(p, vec), labels: labels}
		p.gauges[name] = g
	}
	p.mu.Unlock()
	if g.vec != nil {
		g.vec.WithLabelValues(labelValues(g.labels, tags)...).Set(value)
	}
}

// Timing implements Sink.
func (p *PrometheusSink) Timing(name string, value time.Duration, tags map[string]string) {
	p.mu.Lock()
	h, ok := p.histograms[name]
	if !ok {
		labels := labelNames(tags)
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      metricName(name) + "_seconds",
			Help:      "Duration of " + name + " in seconds.",
			Buckets:   durationBuckets,
		}, labels)
		h = &labeled[*prometheus.HistogramVec]{vec: register(p, vec), labels: labels}
		p.histograms[name] = h
	}
	p.mu.Unlock()
	if h.vec != nil {
		h.vec.WithLabelValues(labelValues(h.labels, tags)...).Observe(value.Seconds())
	}
}

// register adds c to the registry, reusing an identical existing collector.
// A nil return means the metric could not be registered and is dropped.
func register[C prometheus.Collector](p *PrometheusSink, c C) C {
	if err := p.registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		p.logger.Warn("metric registration failed", "error", err)
		var zero C
		return zero
	}
	return c
}

func metricName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func labelNames(tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	for k := range tags {
		if k != "" {
			names = append(names, metricName(k))
		}
	}
	sort.Strings(names)
	return names
}

func labelValues(labels []string, tags map[string]string) []string {
	normalized := make(map[string]string, len(tags))
	for k, v := range tags {
		normalized[metricName(k)] = v
	}
	values := make([]string, len(labels))
	for i, l := range labels {
		values[i] = normalized[l]
	}
	return values
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider is a Provider backed by client_golang collectors,
// registered against a caller-supplied prometheus.Registerer. Instruments
// are created on demand by name (first WithAttributes call on a name fixes
// its label set) and reused for the same name thereafter.
type PrometheusProvider struct {
	mu         sync.Mutex
	reg        prometheus.Registerer
	counters   map[string]*prometheus.CounterVec
	updowns    map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusProvider constructs a Provider registering its instruments
// against reg. Pass prometheus.DefaultRegisterer to use the global registry.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	return &PrometheusProvider{
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		updowns:    make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func labelNames(attrs map[string]string) []string {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	return names
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return &prometheusCounter{vec: c, cfg: applyOptions(opts)}
	}
	cfg := applyOptions(opts)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: cfg.Description,
	}, labelNames(cfg.Attributes))
	p.reg.MustRegister(vec)
	p.counters[name] = vec
	return &prometheusCounter{vec: vec, cfg: cfg}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.updowns[name]; ok {
		return &prometheusUpDownCounter{vec: g, cfg: applyOptions(opts)}
	}
	cfg := applyOptions(opts)
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: cfg.Description,
	}, labelNames(cfg.Attributes))
	p.reg.MustRegister(vec)
	p.updowns[name] = vec
	return &prometheusUpDownCounter{vec: vec, cfg: cfg}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return &prometheusHistogram{vec: h, cfg: applyOptions(opts)}
	}
	cfg := applyOptions(opts)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: name,
		Help: cfg.Description,
	}, labelNames(cfg.Attributes))
	p.reg.MustRegister(vec)
	p.histograms[name] = vec
	return &prometheusHistogram{vec: vec, cfg: cfg}
}

type prometheusCounter struct {
	vec *prometheus.CounterVec
	cfg InstrumentConfig
}

func (c *prometheusCounter) Add(n int64) {
	c.vec.With(prometheus.Labels(c.cfg.Attributes)).Add(float64(n))
}

type prometheusUpDownCounter struct {
	vec *prometheus.GaugeVec
	cfg InstrumentConfig
}

func (u *prometheusUpDownCounter) Add(n int64) {
	u.vec.With(prometheus.Labels(u.cfg.Attributes)).Add(float64(n))
}

type prometheusHistogram struct {
	vec *prometheus.HistogramVec
	cfg InstrumentConfig
}

func (h *prometheusHistogram) Record(v float64) {
	h.vec.With(prometheus.Labels(h.cfg.Attributes)).Observe(v)
}

package observability

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Metrics holds every counter the service exports. Init wires a process-wide
// instance; tests construct their own via newMetrics.
type Metrics struct {
	APIRequests *CounterVec // route, method, status
	APILatency  *HistogramVec
	APIInflight *Gauge

	AdviceRequests *CounterVec // outcome: ok|error|not_configured
	AdviceLatency  *HistogramVec
	AdviceTokens   *CounterVec // kind: prompt|completion

	HintCache   *CounterVec // result: hit|miss
	RateLimited *Counter
}

var (
	current *Metrics
	initMu  sync.Mutex
	enabled atomic.Bool
)

func Init() *Metrics {
	initMu.Lock()
	defer initMu.Unlock()
	if current == nil {
		current = newMetrics()
	}
	val := strings.TrimSpace(strings.ToLower(os.Getenv("METRICS_ENABLED")))
	enabled.Store(val != "0" && val != "false" && val != "off")
	return current
}

func Current() *Metrics {
	initMu.Lock()
	defer initMu.Unlock()
	if current == nil {
		current = newMetrics()
		enabled.Store(true)
	}
	return current
}

func Enabled() bool {
	return enabled.Load()
}

func newMetrics() *Metrics {
	latencyBuckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	return &Metrics{
		APIRequests:    NewCounterVec("api_requests_total", "HTTP requests by route, method and status.", "route", "method", "status"),
		APILatency:     NewHistogramVec("api_request_duration_seconds", "HTTP request latency.", latencyBuckets, "route"),
		APIInflight:    NewGauge("api_inflight_requests", "HTTP requests currently being served."),
		AdviceRequests: NewCounterVec("advice_requests_total", "Remote advice calls by outcome.", "outcome"),
		AdviceLatency:  NewHistogramVec("advice_request_duration_seconds", "Remote advice call latency.", latencyBuckets, "model"),
		AdviceTokens:   NewCounterVec("advice_tokens_total", "Tokens consumed by advice calls.", "kind"),
		HintCache:      NewCounterVec("hint_cache_ops_total", "Hint cache lookups by result.", "result"),
		RateLimited:    NewCounter("hint_rate_limited_total", "Hint requests rejected by the per-conversation rate limit."),
	}
}

// WritePrometheus renders every metric in Prometheus text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.APIRequests.write(w)
	m.APILatency.write(w)
	m.APIInflight.write(w)
	m.AdviceRequests.write(w)
	m.AdviceLatency.write(w)
	m.AdviceTokens.write(w)
	m.HintCache.write(w)
	m.RateLimited.write(w)
}

// --- primitives ---

type Counter struct {
	name, help string
	bits       atomic.Uint64
}

func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(delta float64) {
	for {
		old := c.bits.Load()
		newVal := math.Float64bits(math.Float64frombits(old) + delta)
		if c.bits.CompareAndSwap(old, newVal) {
			return
		}
	}
}

func (c *Counter) Value() float64 {
	return math.Float64frombits(c.bits.Load())
}

func (c *Counter) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %g\n", c.name, c.help, c.name, c.name, c.Value())
}

type CounterVec struct {
	name, help string
	labels     []string
	mu         sync.Mutex
	values     map[string]float64
}

func NewCounterVec(name, help string, labels ...string) *CounterVec {
	return &CounterVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func (c *CounterVec) Inc(labelValues ...string) { c.Add(1, labelValues...) }

func (c *CounterVec) Add(delta float64, labelValues ...string) {
	key := labelString(c.labels, labelValues)
	c.mu.Lock()
	c.values[key] += delta
	c.mu.Unlock()
}

func (c *CounterVec) Value(labelValues ...string) float64 {
	key := labelString(c.labels, labelValues)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

func (c *CounterVec) write(w io.Writer) {
	c.mu.Lock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", c.name, c.help, c.name)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s %g\n", c.name, k, c.values[k])
	}
	c.mu.Unlock()
}

type Gauge struct {
	name, help string
	bits       atomic.Uint64
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

func (g *Gauge) Set(v float64) { g.bits.Store(math.Float64bits(v)) }

func (g *Gauge) Add(delta float64) {
	for {
		old := g.bits.Load()
		newVal := math.Float64bits(math.Float64frombits(old) + delta)
		if g.bits.CompareAndSwap(old, newVal) {
			return
		}
	}
}

func (g *Gauge) Inc() { g.Add(1) }
func (g *Gauge) Dec() { g.Add(-1) }

func (g *Gauge) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}

func (g *Gauge) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n", g.name, g.help, g.name, g.name, g.Value())
}

type HistogramVec struct {
	name, help string
	labels     []string
	buckets    []float64
	mu         sync.Mutex
	series     map[string]*histogram
}

type histogram struct {
	counts []uint64
	sum    float64
	count  uint64
}

func NewHistogramVec(name, help string, buckets []float64, labels ...string) *HistogramVec {
	return &HistogramVec{name: name, help: help, labels: labels, buckets: buckets, series: make(map[string]*histogram)}
}

func (h *HistogramVec) Observe(v float64, labelValues ...string) {
	key := labelString(h.labels, labelValues)
	h.mu.Lock()
	s, ok := h.series[key]
	if !ok {
		s = &histogram{counts: make([]uint64, len(h.buckets))}
		h.series[key] = s
	}
	for i, le := range h.buckets {
		if v <= le {
			s.counts[i]++
		}
	}
	s.sum += v
	s.count++
	h.mu.Unlock()
}

func (h *HistogramVec) write(w io.Writer) {
	h.mu.Lock()
	keys := make([]string, 0, len(h.series))
	for k := range h.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	for _, k := range keys {
		s := h.series[k]
		for i, le := range h.buckets {
			fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", le)), s.counts[i])
		}
		fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), s.count)
		fmt.Fprintf(w, "%s_sum%s %g\n", h.name, k, s.sum)
		fmt.Fprintf(w, "%s_count%s %d\n", h.name, k, s.count)
	}
	h.mu.Unlock()
}

func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(names))
	for i, name := range names {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		pairs = append(pairs, fmt.Sprintf(`%s="%s"`, name, escapeLabel(val)))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func withLe(labelStr, le string) string {
	if labelStr == "" {
		return fmt.Sprintf("{le=%q}", le)
	}
	return strings.TrimSuffix(labelStr, "}") + fmt.Sprintf(",le=%q}", le)
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

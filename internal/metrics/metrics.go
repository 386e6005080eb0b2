package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder — то, что сервисы и клиенты сообщают о своей работе.
type Recorder interface {
	CacheRequest(cache, result string)
	UpstreamRequest(provider, operation, outcome string)
	ObserveGetPrices(d time.Duration, err error)
}

// Nop — Recorder, который ничего не делает.
type Nop struct{}

func (Nop) CacheRequest(string, string)            {}
func (Nop) UpstreamRequest(string, string, string) {}
func (Nop) ObserveGetPrices(time.Duration, error)  {}

// OrNop возвращает rec или Nop, если rec не задан.
func OrNop(rec Recorder) Recorder {
	if rec == nil {
		return Nop{}
	}
	return rec
}

// Prometheus — Recorder поверх client_golang.
type Prometheus struct {
	cacheRequests    *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	getPrices        *prometheus.HistogramVec
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptoquotes",
			Name:      "cache_requests_total",
			Help:      "Cache lookups by cache name and result",
		}, []string{"cache", "result"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptoquotes",
			Name:      "upstream_requests_total",
			Help:      "Calls to upstream providers",
		}, []string{"provider", "operation", "outcome"}),
		getPrices: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cryptoquotes",
			Name:      "get_prices_duration_seconds",
			Help:      "Duration of quote aggregation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	reg.MustRegister(p.cacheRequests, p.upstreamRequests, p.getPrices)
	return p
}

func (p *Prometheus) CacheRequest(cache, result string) {
	p.cacheRequests.WithLabelValues(cache, result).Inc()
}

func (p *Prometheus) UpstreamRequest(provider, operation, outcome string) {
	p.upstreamRequests.WithLabelValues(provider, operation, outcome).Inc()
}

func (p *Prometheus) ObserveGetPrices(d time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	p.getPrices.WithLabelValues(outcome).Observe(d.Seconds())
}

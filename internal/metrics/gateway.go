// Package metrics collects prometheus metrics about calls made to the remote
// church-administration service.
package metrics

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "celestial"

// GatewayMetrics is safe to use through a nil pointer, in which case nothing
// is recorded.
type GatewayMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	refused  *prometheus.CounterVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	f := promauto.With(reg)
	return &GatewayMetrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Remote calls by method, route and outcome",
			},
			[]string{"method", "route", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Remote call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		refused: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "refused_total",
				Help:      "Calls refused locally before reaching the network",
			},
			[]string{"reason"},
		),
	}
}

// Observe records a completed call. path is normalized with Route.
func (m *GatewayMetrics) Observe(method, path, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	route := Route(path)
	m.requests.With(prometheus.Labels{"method": method, "route": route, "outcome": outcome}).Inc()
	m.duration.With(prometheus.Labels{"method": method, "route": route}).Observe(d.Seconds())
}

// Refused records a call that never left the process.
func (m *GatewayMetrics) Refused(reason string) {
	if m == nil {
		return
	}
	m.refused.WithLabelValues(reason).Inc()
}

// Route replaces id-like path segments with ":param" to keep label
// cardinality bounded. Query strings are dropped.
func Route(path string) string {
	path, _, _ = strings.Cut(path, "?")
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
			segs[i] = ":param"
		}
	}
	return strings.Join(segs, "/")
}

// RouteStat is one row of the stats report.
type RouteStat struct {
	Method  string
	Route   string
	Outcome string
	Count   float64
}

// Summarize reads the request counters back from g, sorted by route,
// method and outcome.
func Summarize(g prometheus.Gatherer) ([]RouteStat, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []RouteStat
	for _, mf := range families {
		if mf.GetName() != namespace+"_gateway_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			st := RouteStat{Count: metric.GetCounter().GetValue()}
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "method":
					st.Method = lp.GetValue()
				case "route":
					st.Route = lp.GetValue()
				case "outcome":
					st.Outcome = lp.GetValue()
				}
			}
			out = append(out, st)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Route != out[j].Route {
			return out[i].Route < out[j].Route
		}
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out, nil
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts /api calls per operation.
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the API collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "motel",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API calls by operation and HTTP status.",
		}, []string{"fn", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "motel",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"fn"}),
	}
}

func (r *Recorder) Observe(fn string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(fn, strconv.Itoa(status)).Inc()
	r.duration.WithLabelValues(fn).Observe(elapsed.Seconds())
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanso_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "kanso_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "path"},
	)

	Classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanso_classifications_total",
			Help: "Classified messages by outcome",
		},
		[]string{"outcome"},
	)

	StreakTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanso_streak_transitions_total",
			Help: "Observed changes of a habit's current weekly streak",
		},
		[]string{"direction"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanso_cache_lookups_total",
			Help: "Redis cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	DroppedJobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kanso_worker_dropped_jobs_total",
			Help: "Progress jobs dropped because the queue was full",
		},
	)
)

var registerOnce sync.Once

func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(RequestCount, RequestDuration, Classifications, StreakTransitions, CacheLookups, DroppedJobs)
	})
}

// Package metrics exports dashboard resolution telemetry to Prometheus.
package metrics

import (
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "xd"

type Recorder struct {
	tierAttempts *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	resolutions  *prometheus.CounterVec
	duration     prometheus.Histogram
	ticksSkipped prometheus.Counter
}

var _ ports.Recorder = (*Recorder)(nil)

// NewRecorder registers the dashboard metrics on reg. Pass a fresh registry
// per Recorder; registering twice on the same one panics.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		tierAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_attempts_total",
			Help:      "Dashboard data source attempts by tier and outcome.",
		}, []string{"tier", "outcome"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Completed dashboard resolutions by result.",
		}, []string{"result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving one dashboard snapshot across all tiers.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}),
		ticksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_ticks_skipped_total",
			Help:      "Scheduled refreshes skipped because a resolution was already running.",
		}),
	}
}

func (r *Recorder) TierAttempt(tier domain.Tier, outcome ports.TierOutcome) {
	r.tierAttempts.WithLabelValues(string(tier), string(outcome)).Inc()
}

func (r *Recorder) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) Resolution(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.resolutions.WithLabelValues(result).Inc()
	r.duration.Observe(duration.Seconds())
}

func (r *Recorder) TickSkipped() {
	r.ticksSkipped.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for family discovery and duplicate matching.
type Metrics struct {
	// Full Discover call latency
	DiscoveryLatency prometheus.Histogram

	// Results returned per Discover call, after dedup and truncation
	DiscoveryResults prometheus.Histogram

	// Inference patterns that errored or panicked, by pattern name
	PatternFailures *prometheus.CounterVec

	// Full FindDuplicates call latency
	MatchLatency prometheus.Histogram

	// Candidates returned per FindDuplicates call
	MatchResults prometheus.Histogram

	// Pool sizes before intersection, by pool ("address", "religion", "intersection")
	CandidatePoolSize *prometheus.HistogramVec

	// Candidates flagged high-confidence
	HighConfidenceMatches prometheus.Counter
}

// New registers the family metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the family metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	resultBuckets := []float64{0, 1, 2, 5, 10, 15, 20}
	return &Metrics{
		DiscoveryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kinship_discovery_duration_seconds",
			Help:    "Duration of relationship discovery including graph reads",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		DiscoveryResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kinship_discovery_results",
			Help:    "Number of relationship suggestions returned per discovery",
			Buckets: resultBuckets,
		}),

		PatternFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kinship_discovery_pattern_failures_total",
			Help: "Inference patterns that failed and contributed no results",
		}, []string{"pattern"}),

		MatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kinship_match_duration_seconds",
			Help:    "Duration of duplicate-person matching including pool queries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		MatchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kinship_match_results",
			Help:    "Number of duplicate candidates returned per match",
			Buckets: resultBuckets,
		}),

		CandidatePoolSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinship_match_candidate_pool_size",
			Help:    "Candidate pool sizes by pool",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"pool"}),

		HighConfidenceMatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "kinship_match_high_confidence_total",
			Help: "Duplicate candidates flagged as high confidence",
		}),
	}
}

// ObserveDiscovery records one completed discovery.
func (m *Metrics) ObserveDiscovery(d time.Duration, results int) {
	if m != nil {
		m.DiscoveryLatency.Observe(d.Seconds())
		m.DiscoveryResults.Observe(float64(results))
	}
}

// IncrementPatternFailure counts a failed inference pattern.
func (m *Metrics) IncrementPatternFailure(pattern string) {
	if m != nil {
		m.PatternFailures.WithLabelValues(pattern).Inc()
	}
}

// ObserveMatch records one completed duplicate search.
func (m *Metrics) ObserveMatch(d time.Duration, results, highConfidence int) {
	if m != nil {
		m.MatchLatency.Observe(d.Seconds())
		m.MatchResults.Observe(float64(results))
		m.HighConfidenceMatches.Add(float64(highConfidence))
	}
}

// ObservePoolSize records the size of a candidate pool.
func (m *Metrics) ObservePoolSize(pool string, size int) {
	if m != nil {
		m.CandidatePoolSize.WithLabelValues(pool).Observe(float64(size))
	}
}

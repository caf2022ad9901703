package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper search service.
// Metrics are organized by pipeline stage: requests, per-source searches,
// filtering/scoring, deduplication, and ranking. All counters and
// histograms are registered via promauto against the supplied registerer.
type Metrics struct {
	// RequestsTotal counts federated search requests by outcome
	// (ok, invalid).
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes end-to-end search request duration in seconds.
	RequestDuration prometheus.Histogram

	// SearchesStarted counts per-source searches dispatched, labeled by source.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts per-source searches that returned, labeled by source.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts per-source failures, labeled by source and
	// reason (error, timeout).
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes per-source search duration in seconds.
	SearchDuration *prometheus.HistogramVec

	// PapersPerSource observes the distribution of raw papers returned per
	// search, labeled by source.
	PapersPerSource *prometheus.HistogramVec

	// CandidatesFiltered counts candidates dropped by the quality filter,
	// labeled by reason (title, authors, year).
	CandidatesFiltered *prometheus.CounterVec

	// CandidatesScored counts candidates scored by the optimizer.
	CandidatesScored prometheus.Counter

	// ScoringDegraded counts candidates that fell back to the neutral
	// score because relevance scoring produced an unusable value.
	ScoringDegraded prometheus.Counter

	// DuplicatesRemoved counts candidates dropped by deduplication.
	DuplicatesRemoved prometheus.Counter

	// RankingDuration observes advanced-ranker duration in seconds,
	// labeled by strategy.
	RankingDuration *prometheus.HistogramVec

	// ResultsReturned observes the size of the final pre-pagination
	// result set.
	ResultsReturned prometheus.Histogram
}

// NewMetrics creates a new Metrics instance registered against reg.
// The namespace is used as a prefix for all metric names. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of federated search requests by outcome",
		}, []string{"outcome"}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end duration of federated search requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		SearchesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of per-source searches dispatched",
		}, []string{"source"}),
		SearchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of per-source searches completed",
		}, []string{"source"}),
		SearchesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of per-source searches that failed",
		}, []string{"source", "reason"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of per-source searches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),
		PapersPerSource: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "papers_per_source",
			Help:      "Number of raw papers returned per search by source",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 500},
		}, []string{"source"}),

		CandidatesFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_filtered_total",
			Help:      "Total number of candidates dropped by the quality filter",
		}, []string{"reason"}),
		CandidatesScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Total number of candidates scored by the optimizer",
		}),
		ScoringDegraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_degraded_total",
			Help:      "Total number of candidates that received the neutral fallback score",
		}),

		DuplicatesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_removed_total",
			Help:      "Total number of duplicate candidates removed",
		}),

		RankingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Duration of advanced ranking in seconds by strategy",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"strategy"}),
		ResultsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_returned",
			Help:      "Size of the final result set before pagination",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// RecordRequest records a completed search request.
func (m *Metrics) RecordRequest(outcome string, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDuration.Observe(durationSeconds)
}

// RecordSearchStarted records that a per-source search was dispatched.
func (m *Metrics) RecordSearchStarted(source string) {
	m.SearchesStarted.WithLabelValues(source).Inc()
}

// RecordSearchCompleted records a per-source search that returned results.
func (m *Metrics) RecordSearchCompleted(source string, paperCount int, durationSeconds float64) {
	m.SearchesCompleted.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
	m.PapersPerSource.WithLabelValues(source).Observe(float64(paperCount))
}

// RecordSearchFailed records a per-source failure or timeout.
func (m *Metrics) RecordSearchFailed(source, reason string, durationSeconds float64) {
	m.SearchesFailed.WithLabelValues(source, reason).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordFiltered records candidates dropped by the quality filter.
func (m *Metrics) RecordFiltered(reason string, count int) {
	if count > 0 {
		m.CandidatesFiltered.WithLabelValues(reason).Add(float64(count))
	}
}

// RecordScored records candidates scored by the optimizer.
func (m *Metrics) RecordScored(count int) {
	m.CandidatesScored.Add(float64(count))
}

// RecordScoringDegraded records neutral-score fallbacks.
func (m *Metrics) RecordScoringDegraded(count int) {
	if count > 0 {
		m.ScoringDegraded.Add(float64(count))
	}
}

// RecordDuplicatesRemoved records candidates dropped by deduplication.
func (m *Metrics) RecordDuplicatesRemoved(count int) {
	if count > 0 {
		m.DuplicatesRemoved.Add(float64(count))
	}
}

// RecordRanking records an advanced-ranker run.
func (m *Metrics) RecordRanking(strategy string, durationSeconds float64) {
	m.RankingDuration.WithLabelValues(strategy).Observe(durationSeconds)
}

// RecordResults records the final pre-pagination result count.
func (m *Metrics) RecordResults(count int) {
	m.ResultsReturned.Observe(float64(count))
}

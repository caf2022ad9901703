// Package search orchestrates the federated search pipeline: query
// translation, concurrent source fan-out under a shared deadline,
// two-stage relevance optimization, optional feature-based ranking,
// deduplication, and post-filtering.
package search

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/dedup"
	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/history"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/query"
	"github.com/helixir/paper-search-service/internal/rank"
	"github.com/helixir/paper-search-service/internal/sources"
)

// DefaultFanoutTimeout bounds the whole multi-source fan-out when the
// config does not say otherwise.
const DefaultFanoutTimeout = 60 * time.Second

// Config tunes the orchestrator.
type Config struct {
	// FanoutTimeout bounds the concurrent source dispatch. Sources that
	// have not answered by then are dropped from the response.
	FanoutTimeout time.Duration

	// Optimizer parameterizes the two-stage relevance pipeline.
	Optimizer rank.OptimizerConfig
}

// Service runs federated searches. It owns no per-request state; one
// instance serves all requests concurrently.
type Service struct {
	cfg       Config
	registry  *sources.Registry
	optimizer *rank.Optimizer
	ranker    *rank.AdvancedRanker
	recorder  history.Recorder
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewService creates the orchestrator. A nil ranker disables the
// feature-based ranking stage; a nil recorder disables history.
func NewService(
	cfg Config,
	registry *sources.Registry,
	ranker *rank.AdvancedRanker,
	recorder history.Recorder,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Service {
	if cfg.FanoutTimeout <= 0 {
		cfg.FanoutTimeout = DefaultFanoutTimeout
	}
	if recorder == nil {
		recorder = history.NopRecorder{}
	}
	return &Service{
		cfg:       cfg,
		registry:  registry,
		optimizer: rank.NewOptimizer(cfg.Optimizer),
		ranker:    ranker,
		recorder:  recorder,
		metrics:   metrics,
		logger:    logger.With().Str("component", "search_service").Logger(),
	}
}

// sourceResult carries one adapter's outcome back from the fan-out.
type sourceResult struct {
	source string
	papers []*domain.Paper
	err    error
}

// Search executes one federated search end to end. Adapter failures
// are absorbed: a failed or timed-out source contributes zero results
// and the search succeeds with whatever the rest returned. Only an
// invalid request yields an error.
func (s *Service) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()
	ctx, requestID := observability.EnsureRequestID(ctx)

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.RecordRequest("invalid_request", time.Since(start).Seconds())
		return nil, err
	}

	logger := observability.WithSearchContext(s.logger, requestID, req.Query)

	adapters := s.registry.Select(req.Sources)
	queried := make([]string, 0, len(adapters))
	for _, a := range adapters {
		queried = append(queried, a.Name())
	}

	parsed := query.Parse(req.Query)
	terms := rank.QueryTerms(parsed.Terms())

	results := s.fanout(ctx, req, parsed, adapters)

	// Stage A per source, then the global merge. The author check is
	// on unless the request relaxed it.
	filter := rank.QualityFilter{RelaxAuthors: !req.AuthorsRequired()}
	perSource := make([][]*rank.Candidate, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			logger.Warn().Err(res.err).Str("source", res.source).
				Msg("source search failed")
			continue
		}
		profile := s.registry.Profile(res.source)
		candidates, dropped, degraded := s.optimizer.OptimizeSource(
			req.Query, terms, res.papers, profile, req.Discipline, filter)
		for reason, n := range dropped {
			s.metrics.RecordFiltered(reason, n)
		}
		s.metrics.RecordScoringDegraded(degraded)
		if len(candidates) > 0 {
			perSource = append(perSource, candidates)
		}
	}

	pool, degraded := s.optimizer.Merge(req.Query, terms, perSource)
	s.metrics.RecordScoringDegraded(degraded)
	s.metrics.RecordScored(len(pool))

	sourceCounts := make(map[string]int, len(queried))
	for _, name := range queried {
		sourceCounts[name] = 0
	}
	for _, c := range pool {
		sourceCounts[c.Source]++
	}

	var diagnostics *domain.RankingDiagnostics
	if s.ranker != nil && len(pool) > 0 {
		pool, diagnostics = s.ranker.Rank(req.Query, terms, parsed.Phrases, pool)
		s.metrics.RecordRanking(diagnostics.Strategy, diagnostics.Duration.Seconds())
	}

	deduped, removed := dedup.Deduplicate(pool)
	s.metrics.RecordDuplicatesRemoved(removed)

	papers := make([]*domain.Paper, 0, len(deduped))
	for _, c := range deduped {
		papers = append(papers, c.Paper)
	}

	papers = applyFilters(papers, req)
	sortPapers(papers, req.SortBy)
	total := len(papers)
	page := paginate(papers, req.Page, req.PerPage)

	duration := time.Since(start)
	s.metrics.RecordRequest("success", duration.Seconds())
	s.metrics.RecordResults(total)
	logger.Info().
		Int("total_results", total).
		Int("duplicates_removed", removed).
		Strs("sources", queried).
		Dur("duration", duration).
		Msg("search completed")

	s.recorder.Record(context.WithoutCancel(ctx), history.Record{
		RequestID:    requestID,
		Query:        req.Query,
		Discipline:   req.Discipline,
		YearStart:    req.YearStart,
		YearEnd:      req.YearEnd,
		Sources:      queried,
		TotalResults: total,
		Duration:     duration,
	})

	return &domain.SearchResponse{
		Papers:         page,
		TotalResults:   total,
		SourcesQueried: queried,
		SourceCounts:   sourceCounts,
		Diagnostics:    diagnostics,
	}, nil
}

// fanout dispatches every selected adapter concurrently under the
// shared deadline and collects all outcomes.
func (s *Service) fanout(
	ctx context.Context,
	req *domain.SearchRequest,
	parsed query.Parsed,
	adapters []sources.SourceAdapter,
) []sourceResult {
	if len(adapters) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FanoutTimeout)
	defer cancel()

	// Translations are shared across adapters speaking the same dialect.
	translations := make(map[query.Syntax]query.Translation)
	for _, a := range adapters {
		syntax := a.Syntax()
		if _, ok := translations[syntax]; !ok {
			translations[syntax] = query.Translate(parsed, syntax,
				req.Discipline, req.EducationLevel, req.PublicationType, req.StudyType)
		}
	}

	resultChan := make(chan sourceResult, len(adapters))
	for _, adapter := range adapters {
		go func(a sources.SourceAdapter) {
			resultChan <- s.searchSource(ctx, req, translations[a.Syntax()], a)
		}(adapter)
	}

	results := make([]sourceResult, 0, len(adapters))
	for range adapters {
		results = append(results, <-resultChan)
	}
	return results
}

// searchSource runs one adapter call with per-source metrics.
func (s *Service) searchSource(
	ctx context.Context,
	req *domain.SearchRequest,
	translation query.Translation,
	adapter sources.SourceAdapter,
) sourceResult {
	name := adapter.Name()
	start := time.Now()
	s.metrics.RecordSearchStarted(name)

	params := sources.SearchParams{
		Query:          translation.Query,
		Keywords:       translation.Keywords,
		YearStart:      req.YearStart,
		YearEnd:        req.YearEnd,
		Discipline:     req.Discipline,
		EducationLevel: req.EducationLevel,
		Limit:          s.registry.Profile(name).ResultCap,
		APIKey:         req.APIKeyFor(name),
	}

	papers, err := adapter.Search(ctx, params)
	if err != nil {
		s.metrics.RecordSearchFailed(name, failureReason(err), time.Since(start).Seconds())
		return sourceResult{source: name, err: err}
	}
	s.metrics.RecordSearchCompleted(name, len(papers), time.Since(start).Seconds())
	return sourceResult{source: name, papers: papers}
}

// failureReason maps an adapter error to a bounded metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

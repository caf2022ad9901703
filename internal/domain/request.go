package domain

import (
	"fmt"
	"time"
)

// SortOrder controls the final ordering of search results.
type SortOrder string

const (
	SortByRelevance SortOrder = "relevance"
	SortByNewest    SortOrder = "newest"
	SortByOldest    SortOrder = "oldest"
	SortByCitations SortOrder = "citations"
)

// Pagination bounds.
const (
	DefaultPerPage = 20
	MinPerPage     = 10
	MaxPerPage     = 50
)

// SearchRequest is one federated search as received from the calling layer.
type SearchRequest struct {
	// Query is the raw user query. Supports quoted phrases, field:value
	// pairs, +must/-exclude tokens and boolean operators.
	Query string

	// YearStart and YearEnd bound the publication year (inclusive).
	// Zero means unbounded on that side.
	YearStart int
	YearEnd   int

	// Filter dimensions that also drive keyword expansion.
	Discipline      string
	EducationLevel  string
	PublicationType string
	StudyType       string

	// MinCitations excludes results with missing or lower citation counts
	// when positive.
	MinCitations int

	// SortBy is the final result ordering. Empty defaults to relevance.
	SortBy SortOrder

	// Page and PerPage control pagination. Zero values default to
	// page 1 and DefaultPerPage.
	Page    int
	PerPage int

	// Sources is an allow-list of source names. Empty means all
	// configured sources.
	Sources []string

	// Credentials holds per-request API key overrides keyed by source
	// name. Keys travel with the request; shared adapter state is never
	// mutated.
	Credentials map[string]string

	// RequireAuthors controls the author attribution checks. Unset
	// keeps the default: the quality stage drops paper-type candidates
	// without usable attribution. An explicit false relaxes that check;
	// an explicit true additionally re-checks the final result set.
	RequireAuthors *bool
}

// AuthorsRequired reports whether the quality stage must drop papers
// without usable attribution. Unset keeps the check on.
func (r *SearchRequest) AuthorsRequired() bool {
	return r.RequireAuthors == nil || *r.RequireAuthors
}

// AuthorsPostFilter reports whether the request explicitly asked to
// re-check attribution on the deduplicated result list.
func (r *SearchRequest) AuthorsPostFilter() bool {
	return r.RequireAuthors != nil && *r.RequireAuthors
}

// Normalize applies request defaults in place. Call before Validate.
func (r *SearchRequest) Normalize() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.PerPage == 0 {
		r.PerPage = DefaultPerPage
	}
	if r.SortBy == "" {
		r.SortBy = SortByRelevance
	}
}

// Validate checks the request invariants. Violations are returned as
// *ValidationError and must reject the request before any source dispatch.
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return NewValidationError("query", "must not be empty")
	}
	if r.YearStart != 0 && r.YearEnd != 0 && r.YearStart > r.YearEnd {
		return NewValidationError("year_start",
			fmt.Sprintf("must not exceed year_end (%d > %d)", r.YearStart, r.YearEnd))
	}
	if r.Page < 1 {
		return NewValidationError("page", "must be at least 1")
	}
	if r.PerPage < MinPerPage || r.PerPage > MaxPerPage {
		return NewValidationError("per_page",
			fmt.Sprintf("must be between %d and %d", MinPerPage, MaxPerPage))
	}
	switch r.SortBy {
	case SortByRelevance, SortByNewest, SortByOldest, SortByCitations:
	default:
		return NewValidationError("sort_by", fmt.Sprintf("unknown sort order %q", r.SortBy))
	}
	if r.MinCitations < 0 {
		return NewValidationError("min_citations", "must not be negative")
	}
	return nil
}

// APIKeyFor returns the per-request credential override for a source,
// or empty string if none was supplied.
func (r *SearchRequest) APIKeyFor(source string) string {
	if r.Credentials == nil {
		return ""
	}
	return r.Credentials[source]
}

// SearchResponse is the result of one federated search.
type SearchResponse struct {
	// Papers is the requested page of the final ranked list.
	Papers []*Paper `json:"papers"`

	// TotalResults is the size of the final ranked list before pagination.
	TotalResults int `json:"total_results"`

	// SourcesQueried lists the sources that were dispatched, in the order
	// they were selected.
	SourcesQueried []string `json:"sources_queried"`

	// SourceCounts maps source name to the number of candidates that
	// source contributed to the merged pool (pre-dedup). Failed or
	// timed-out sources report zero.
	SourceCounts map[string]int `json:"source_counts"`

	// Diagnostics carries ranking observability data when the advanced
	// ranker ran. Nil otherwise.
	Diagnostics *RankingDiagnostics `json:"diagnostics,omitempty"`
}

// RankingDiagnostics is optional observability data about one ranking run.
// It is informational only; ranking correctness does not depend on it.
type RankingDiagnostics struct {
	Strategy        string             `json:"strategy"`
	Duration        time.Duration      `json:"duration"`
	ScoreMin        float64            `json:"score_min"`
	ScoreMax        float64            `json:"score_max"`
	ScoreMean       float64            `json:"score_mean"`
	SourceSpread    map[string]int     `json:"source_spread"`
	YearSpread      map[string]int     `json:"year_spread"`
	CitationBuckets map[string]int     `json:"citation_buckets"`
	DiversityLambda float64            `json:"diversity_lambda"`
	Explanations    []ScoreExplanation `json:"explanations,omitempty"`
}

// ScoreExplanation summarizes why one result scored the way it did.
type ScoreExplanation struct {
	Title          string             `json:"title"`
	Score          float64            `json:"score"`
	PrimaryFactors []string           `json:"primary_factors"`
	Features       map[string]float64 `json:"features"`
}

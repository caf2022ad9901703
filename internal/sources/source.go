// Package sources provides the adapter contract and shared client
// plumbing for external catalog connectors.
//
// Every external catalog (Semantic Scholar, OpenAlex, and the rest)
// implements the SourceAdapter interface, allowing the search
// orchestrator to fan out one translated query across many catalogs with
// a unified API. Adapters normalize vendor responses into the canonical
// domain.Paper record at their boundary, self-throttle to their
// provider's rate limit, and retry rate-limited calls with exponential
// backoff before giving up.
//
// Example usage:
//
//	adapter := semanticscholar.New(cfg)
//	params := sources.SearchParams{
//		Query: "CRISPR gene editing",
//		Limit: 100,
//	}
//	papers, err := adapter.Search(ctx, params)
package sources

import (
	"context"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/query"
)

// SearchParams defines the parameters for one adapter search call.
// Query is already translated into the adapter's dialect; everything
// else narrows or authenticates the call.
type SearchParams struct {
	// Query is the translated query string (required).
	Query string

	// Keywords is the expanded keyword set behind the query. Adapters
	// for primitive-search catalogs may search with these directly.
	Keywords []string

	// YearStart and YearEnd bound the publication year (inclusive).
	// Zero means unbounded on that side.
	YearStart int
	YearEnd   int

	// Discipline and EducationLevel are passed through for catalogs
	// that support subject filtering.
	Discipline     string
	EducationLevel string

	// Limit caps the number of papers returned. Zero uses the
	// adapter's default.
	Limit int

	// APIKey is a per-request credential override. When set it is used
	// for this call only; adapters must not store it.
	APIKey string
}

// SourceAdapter is the interface every external catalog connector
// implements.
//
// Implementations must:
//   - Respect context cancellation and deadlines.
//   - Self-throttle to the provider's rate limit.
//   - Retry HTTP 429 with exponential backoff up to a bounded attempt
//     count before returning an error.
//   - Normalize responses to domain.Paper (Normalize called on each).
//   - Return an error rather than panic on malformed responses; the
//     orchestrator absorbs adapter errors into per-source counts.
type SourceAdapter interface {
	// Search queries the catalog for papers matching the given parameters.
	Search(ctx context.Context, params SearchParams) ([]*domain.Paper, error)

	// Name returns the canonical source name used in profiles, counts,
	// and logs (e.g. "semantic_scholar").
	Name() string

	// Syntax returns the query dialect this catalog understands, which
	// selects the translator applied to the request.
	Syntax() query.Syntax

	// IsEnabled returns whether this adapter is currently available for
	// searches. An adapter may be disabled by configuration or a missing
	// required API key.
	IsEnabled() bool
}

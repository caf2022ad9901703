package semanticscholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/query"
	"github.com/helixir/paper-search-service/internal/sources"
)

const (
	// DefaultBaseURL is the default base URL for the Semantic Scholar Graph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the default rate limit for unauthenticated requests.
	// With an API key, this can be increased.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum number of results per request.
	DefaultMaxResults = 100

	// apiKeyHeader is the header name for the Semantic Scholar API key.
	apiKeyHeader = "x-api-key"

	// paperFields is the list of fields to request from the API.
	paperFields = "paperId,externalIds,url,title,abstract,year,venue,journal,authors,citationCount,influentialCitationCount,fieldsOfStudy,publicationTypes,isOpenAccess,openAccessPdf"

	// sourceName is the registry name for this source.
	sourceName = "semantic_scholar"
)

// Config contains configuration options for the Semantic Scholar client.
type Config struct {
	// BaseURL is the base URL for the API.
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the optional API key for authenticated requests.
	// Authenticated requests have higher rate limits. A per-request key
	// supplied in SearchParams takes precedence.
	APIKey string

	// Timeout is the HTTP request timeout.
	// Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	// Defaults to DefaultRateLimit if zero.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	// Defaults to DefaultBurstSize if zero.
	BurstSize int

	// MaxResults is the maximum number of results to return per search.
	// Defaults to DefaultMaxResults if zero.
	MaxResults int

	// Enabled indicates whether this source is enabled.
	Enabled bool
}

// Client implements the sources.SourceAdapter interface for Semantic Scholar.
type Client struct {
	httpClient *sources.HTTPClient
	config     Config
}

// Compile-time check that Client implements sources.SourceAdapter.
var _ sources.SourceAdapter = (*Client)(nil)

// NewClient creates a new Semantic Scholar client with the given configuration.
// If httpClient is nil, a new one will be created with the configuration settings.
func NewClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	// Apply defaults
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	if httpClient == nil {
		httpClient = sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
			SourceName:   sourceName,
		})
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
	}
}

// Search queries Semantic Scholar for papers matching the given parameters.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) ([]*domain.Paper, error) {
	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// A caller-supplied key overrides the configured default.
	if params.APIKey != "" {
		req.Header.Set(apiKeyHeader, params.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.handleErrorResponse(resp); err != nil {
		return nil, err
	}

	// Parse the response (limit body to 10MB to prevent resource exhaustion).
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.convertToPapers(searchResp.Data), nil
}

// Name returns the registry name for this source.
func (c *Client) Name() string {
	return sourceName
}

// Syntax reports that Semantic Scholar accepts boolean query expressions.
func (c *Client) Syntax() query.Syntax {
	return query.SyntaxBoolean
}

// IsEnabled returns whether this source is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the search API URL with query parameters.
func (c *Client) buildSearchURL(params sources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	searchURL := baseURL.JoinPath("paper", "search")

	q := searchURL.Query()
	q.Set("query", params.Query)
	q.Set("fields", paperFields)

	limit := params.Limit
	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}
	q.Set("limit", strconv.Itoa(limit))

	// Semantic Scholar uses year-range filtering of the form "2017-2024",
	// with open-ended variants "2017-" and "-2024".
	if params.YearStart > 0 || params.YearEnd > 0 {
		yearRange := ""
		if params.YearStart > 0 {
			yearRange = strconv.Itoa(params.YearStart)
		}
		yearRange += "-"
		if params.YearEnd > 0 {
			yearRange += strconv.Itoa(params.YearEnd)
		}
		q.Set("year", yearRange)
	}

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
}

// handleErrorResponse checks for API errors and returns appropriate error types.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Read the error body (limit to 1MB to prevent resource exhaustion)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, "failed to read error response", err)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		message := errResp.Error
		if message == "" {
			message = errResp.Message
		}
		if message == "" {
			message = string(body)
		}
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, message, nil)
	}

	return domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
}

// convertToPapers converts a slice of API paper results to domain papers.
func (c *Client) convertToPapers(results []PaperResult) []*domain.Paper {
	papers := make([]*domain.Paper, 0, len(results))
	for _, result := range results {
		papers = append(papers, c.convertToPaper(result))
	}
	return papers
}

// convertToPaper converts a single API paper result to a domain paper.
func (c *Client) convertToPaper(result PaperResult) *domain.Paper {
	paper := &domain.Paper{
		Title:                    result.Title,
		Abstract:                 result.Abstract,
		Source:                   sourceName,
		URL:                      result.URL,
		CitationCount:            result.CitationCount,
		InfluentialCitationCount: result.InfluentialCitationCount,
		Subjects:                 result.FieldsOfStudy,
		ContentType:              contentTypeFor(result.PublicationTypes),
	}

	if result.Year > 0 {
		paper.Year = strconv.Itoa(result.Year)
	}

	if result.Journal != nil && result.Journal.Name != "" {
		paper.Journal = result.Journal.Name
	} else {
		paper.Journal = result.Venue
	}

	if result.OpenAccessPDF != nil && result.OpenAccessPDF.URL != "" {
		paper.PDFURL = result.OpenAccessPDF.URL
		paper.License = result.OpenAccessPDF.License
		paper.DownloadFormats = []string{"pdf"}
	}

	if result.ExternalIDs != nil {
		paper.Identifiers = domain.Identifiers{
			DOI:      result.ExternalIDs.DOI,
			ArXivID:  result.ExternalIDs.ArXiv,
			PubMedID: result.ExternalIDs.PubMed,
		}
	}

	paper.Authors = convertAuthors(result.Authors)
	paper.Normalize()

	return paper
}

// convertAuthors converts API authors to domain authors.
func convertAuthors(apiAuthors []Author) []domain.Author {
	authors := make([]domain.Author, 0, len(apiAuthors))
	for _, a := range apiAuthors {
		authors = append(authors, domain.Author{
			Name: a.Name,
		})
	}
	return authors
}

// contentTypeFor maps Semantic Scholar publication types to a content type.
func contentTypeFor(publicationTypes []string) domain.ContentType {
	for _, t := range publicationTypes {
		if t == "Book" || t == "BookSection" {
			return domain.ContentTypeBook
		}
	}
	return domain.ContentTypePaper
}

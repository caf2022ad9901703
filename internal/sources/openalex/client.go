package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/query"
	"github.com/helixir/paper-search-service/internal/sources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// OpenAlex polite pool (with email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	// The OpenAlex API caps per_page at 200.
	DefaultMaxResults = 25

	// doiPrefix is the URL prefix that OpenAlex uses for DOIs.
	doiPrefix = "https://doi.org/"

	// sourceName is the registry name for this source.
	sourceName = "openalex"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// Providing an email grants access to higher rate limits.
	// See: https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication
	Email string

	// APIKey is the OpenAlex premium API key, sent as the api_key query
	// parameter. Optional; a per-request credential overrides it.
	APIKey string

	// Timeout is the request timeout.
	// Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
	// Defaults to 25, maximum is 200 per OpenAlex API.
	MaxResults int

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client implements the sources.SourceAdapter interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

// Ensure Client implements the SourceAdapter interface.
var _ sources.SourceAdapter = (*Client)(nil)

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		BurstSize:  cfg.BurstSize,
		UserAgent:  "Helixir-PaperSearch/1.0 (mailto:" + cfg.Email + ")",
		SourceName: sourceName,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries OpenAlex for papers matching the given parameters.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) ([]*domain.Paper, error) {
	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	// Parse the response (limit body to 10MB to prevent resource exhaustion).
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]*domain.Paper, 0, len(searchResp.Results))
	for _, work := range searchResp.Results {
		paper := c.workToPaper(&work)
		if paper != nil {
			papers = append(papers, paper)
		}
	}

	return papers, nil
}

// Name returns the registry name for this source.
func (c *Client) Name() string {
	return sourceName
}

// Syntax reports that OpenAlex accepts plain keyword queries.
// The works endpoint treats boolean operators in search= as literal terms,
// so structured constraints travel in filter= instead.
func (c *Client) Syntax() query.Syntax {
	return query.SyntaxPlain
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the search API URL with query parameters.
func (c *Client) buildSearchURL(params sources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = "/works"

	q := url.Values{}

	if params.Query != "" {
		q.Set("search", params.Query)
	}

	filters := buildFilters(params)
	if len(filters) > 0 {
		q.Set("filter", strings.Join(filters, ","))
	}

	limit := params.Limit
	if limit <= 0 {
		limit = c.config.MaxResults
	}
	if limit > 200 {
		limit = 200 // OpenAlex API limit
	}
	q.Set("per_page", strconv.Itoa(limit))

	// Add mailto for polite pool
	if c.config.Email != "" {
		q.Set("mailto", c.config.Email)
	}

	// Per-request credential wins over the configured key.
	if key := params.APIKey; key != "" {
		q.Set("api_key", key)
	} else if c.config.APIKey != "" {
		q.Set("api_key", c.config.APIKey)
	}

	baseURL.RawQuery = q.Encode()
	return baseURL.String(), nil
}

// buildFilters constructs the filter query string components.
func buildFilters(params sources.SearchParams) []string {
	var filters []string

	if params.YearStart > 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", params.YearStart))
	}
	if params.YearEnd > 0 {
		filters = append(filters, fmt.Sprintf("to_publication_date:%d-12-31", params.YearEnd))
	}

	return filters
}

// workToPaper converts an OpenAlex Work to a domain Paper.
// Returns nil for records that carry no title at all.
func (c *Client) workToPaper(work *Work) *domain.Paper {
	if work == nil {
		return nil
	}

	// Prefer display_name as it is usually cleaner.
	title := work.DisplayName
	if title == "" {
		title = work.Title
	}
	if strings.TrimSpace(title) == "" {
		return nil
	}

	doi := normalizeDOI(work.DOI)
	if doi == "" && work.IDs.DOI != "" {
		doi = normalizeDOI(work.IDs.DOI)
	}

	authors := make([]domain.Author, 0, len(work.Authorships))
	for _, authorship := range work.Authorships {
		author := domain.Author{
			Name:  authorship.Author.DisplayName,
			ORCID: normalizeORCID(authorship.Author.Orcid),
		}
		if len(authorship.Institutions) > 0 {
			author.Affiliation = authorship.Institutions[0].DisplayName
		}
		authors = append(authors, author)
	}

	paper := &domain.Paper{
		Title:         title,
		Abstract:      reconstructAbstract(work.AbstractInvertedIndex),
		Authors:       authors,
		Source:        sourceName,
		URL:           work.ID,
		CitationCount: work.CitedByCount,
		ContentType:   contentTypeFor(work.Type),
		Identifiers: domain.Identifiers{
			DOI:      doi,
			PubMedID: normalizePMID(work.IDs.PMID),
		},
		Subjects: topConcepts(work.Concepts),
	}

	if work.PublicationYear > 0 {
		paper.Year = strconv.Itoa(work.PublicationYear)
	}

	if work.PrimaryLocation != nil {
		if work.PrimaryLocation.Source != nil {
			paper.Journal = work.PrimaryLocation.Source.DisplayName
		}
		paper.PDFURL = work.PrimaryLocation.PDFURL
		paper.License = work.PrimaryLocation.License
	}

	if work.OpenAccess != nil && work.OpenAccess.OAURL != "" {
		paper.FullTextURL = work.OpenAccess.OAURL
		if paper.PDFURL == "" {
			paper.PDFURL = work.OpenAccess.OAURL
		}
	}
	if paper.PDFURL != "" {
		paper.DownloadFormats = []string{"pdf"}
	}

	paper.Normalize()
	return paper
}

// contentTypeFor maps OpenAlex work types to a content type.
func contentTypeFor(workType string) domain.ContentType {
	switch workType {
	case "book", "book-chapter", "monograph", "reference-entry":
		return domain.ContentTypeBook
	default:
		return domain.ContentTypePaper
	}
}

// topConcepts extracts display names of the highest-scoring concepts.
func topConcepts(concepts []Concept) []string {
	if len(concepts) == 0 {
		return nil
	}
	names := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c.Score >= 0.3 && c.DisplayName != "" {
			names = append(names, c.DisplayName)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// normalizeDOI strips the https://doi.org/ prefix from DOIs and returns lowercase.
func normalizeDOI(doi string) string {
	if doi == "" {
		return ""
	}
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// normalizePMID strips any URL prefixes from PubMed IDs.
func normalizePMID(pmid string) string {
	if pmid == "" {
		return ""
	}
	pmid = strings.TrimPrefix(pmid, "https://pubmed.ncbi.nlm.nih.gov/")
	return strings.TrimSuffix(strings.TrimSpace(pmid), "/")
}

// normalizeORCID strips any URL prefixes from ORCID identifiers.
func normalizeORCID(orcid string) string {
	if orcid == "" {
		return ""
	}
	orcid = strings.TrimPrefix(orcid, "https://orcid.org/")
	return strings.TrimSpace(orcid)
}

// reconstructAbstract reconstructs the abstract text from OpenAlex's inverted
// index format, which maps words to their positions in the text.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	const maxAbstractWords = 100_000
	totalPairs := 0
	for _, positions := range invertedIndex {
		totalPairs += len(positions)
	}
	// Guard against malicious payloads with excessive position entries.
	if totalPairs > maxAbstractWords {
		return ""
	}
	pairs := make([]posWord, 0, totalPairs)

	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	var builder strings.Builder
	builder.Grow(totalPairs * 7)
	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(pair.word)
	}

	return builder.String()
}

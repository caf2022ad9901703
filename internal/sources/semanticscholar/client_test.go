package semanticscholar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/query"
	"github.com/helixir/paper-search-service/internal/sources"
)

func intPtr(n int) *int { return &n }

func TestNewClient(t *testing.T) {
	t.Run("creates client with default values", func(t *testing.T) {
		client := NewClient(Config{Enabled: true}, nil)

		require.NotNil(t, client)
		assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
		assert.Equal(t, DefaultTimeout, client.config.Timeout)
		assert.Equal(t, DefaultRateLimit, client.config.RateLimit)
		assert.Equal(t, DefaultBurstSize, client.config.BurstSize)
		assert.Equal(t, DefaultMaxResults, client.config.MaxResults)
		assert.True(t, client.config.Enabled)
	})

	t.Run("creates client with custom config", func(t *testing.T) {
		cfg := Config{
			BaseURL:    "https://custom.api.com/v1",
			APIKey:     "test-api-key",
			Timeout:    60 * time.Second,
			RateLimit:  50.0,
			BurstSize:  20,
			MaxResults: 200,
			Enabled:    true,
		}
		client := NewClient(cfg, nil)

		require.NotNil(t, client)
		assert.Equal(t, cfg.BaseURL, client.config.BaseURL)
		assert.Equal(t, cfg.Timeout, client.config.Timeout)
		assert.Equal(t, cfg.RateLimit, client.config.RateLimit)
		assert.Equal(t, cfg.BurstSize, client.config.BurstSize)
		assert.Equal(t, cfg.MaxResults, client.config.MaxResults)
	})

	t.Run("uses provided HTTP client", func(t *testing.T) {
		httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
			RateLimit: 100,
			BurstSize: 50,
		})
		client := NewClient(Config{Enabled: true}, httpClient)

		require.NotNil(t, client)
		assert.Equal(t, httpClient, client.httpClient)
	})

	t.Run("implements SourceAdapter interface", func(t *testing.T) {
		client := NewClient(Config{Enabled: true}, nil)

		assert.Equal(t, "semantic_scholar", client.Name())
		assert.Equal(t, query.SyntaxBoolean, client.Syntax())
		assert.True(t, client.IsEnabled())
	})

	t.Run("disabled client returns false for IsEnabled", func(t *testing.T) {
		client := NewClient(Config{Enabled: false}, nil)
		assert.False(t, client.IsEnabled())
	})
}

func TestClient_Search(t *testing.T) {
	t.Run("successful search returns normalized papers", func(t *testing.T) {
		response := SearchResponse{
			Total:  150,
			Offset: 0,
			Next:   10,
			Data: []PaperResult{
				{
					PaperID:  "abc123",
					Title:    "  CRISPR Gene Editing: A Review  ",
					Abstract: "This paper reviews CRISPR technology...",
					Year:     2023,
					URL:      "https://www.semanticscholar.org/paper/abc123",
					Venue:    "Nature Reviews",
					Journal: &Journal{
						Name: "Nature Reviews Genetics",
					},
					Authors: []Author{
						{AuthorID: "auth1", Name: "Jane Doe"},
						{AuthorID: "auth2", Name: "John Smith"},
					},
					CitationCount:            intPtr(50),
					InfluentialCitationCount: intPtr(5),
					FieldsOfStudy:            []string{"Biology"},
					IsOpenAccess:             true,
					OpenAccessPDF: &OpenAccess{
						URL:     "https://example.com/paper.pdf",
						Status:  "GOLD",
						License: "CC-BY",
					},
					ExternalIDs: &ExternalIDs{
						DOI:    "10.1038/s41576-023-00001-1",
						PubMed: "12345678",
					},
				},
				{
					PaperID: "def456",
					Title:   "Gene Therapy Applications",
					Authors: []Author{
						{Name: "Alice Johnson"},
					},
				},
			},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Contains(t, r.URL.Path, "/paper/search")
			assert.Equal(t, `"machine learning" AND education`, r.URL.Query().Get("query"))
			assert.Contains(t, r.URL.Query().Get("fields"), "paperId")
			assert.Contains(t, r.URL.Query().Get("fields"), "title")
			assert.Equal(t, "10", r.URL.Query().Get("limit"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL:   server.URL,
			Enabled:   true,
			RateLimit: 100,
			BurstSize: 10,
		}, nil)

		params := sources.SearchParams{
			Query: `"machine learning" AND education`,
			Limit: 10,
		}

		papers, err := client.Search(context.Background(), params)

		require.NoError(t, err)
		require.Len(t, papers, 2)

		first := papers[0]
		assert.Equal(t, "CRISPR Gene Editing: A Review", first.Title)
		assert.Equal(t, "2023", first.Year)
		assert.Equal(t, "semantic_scholar", first.Source)
		assert.Equal(t, "Nature Reviews Genetics", first.Journal)
		assert.Equal(t, 50, first.Citations())
		assert.Equal(t, 5, *first.InfluentialCitationCount)
		assert.Equal(t, "10.1038/s41576-023-00001-1", first.Identifiers.DOI)
		assert.Equal(t, "12345678", first.Identifiers.PubMedID)
		assert.Equal(t, "https://example.com/paper.pdf", first.PDFURL)
		assert.Equal(t, "CC-BY", first.License)
		assert.Equal(t, []string{"pdf"}, first.DownloadFormats)
		assert.Equal(t, domain.ContentTypePaper, first.ContentType)
		require.Len(t, first.Authors, 2)
		assert.Equal(t, "Jane Doe", first.Authors[0].Name)

		second := papers[1]
		assert.Equal(t, domain.YearUnknown, second.Year)
		assert.Equal(t, 0, second.Citations())
		assert.Empty(t, second.CanonicalID())
	})

	t.Run("year range is forwarded to the API", func(t *testing.T) {
		tests := []struct {
			name      string
			yearStart int
			yearEnd   int
			want      string
		}{
			{"both bounds", 2017, 2024, "2017-2024"},
			{"open end", 2017, 0, "2017-"},
			{"open start", 0, 2024, "-2024"},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				var gotYear string
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotYear = r.URL.Query().Get("year")
					json.NewEncoder(w).Encode(SearchResponse{})
				}))
				defer server.Close()

				client := NewClient(Config{
					BaseURL:   server.URL,
					Enabled:   true,
					RateLimit: 100,
					BurstSize: 10,
				}, nil)

				_, err := client.Search(context.Background(), sources.SearchParams{
					Query:     "test",
					YearStart: tt.yearStart,
					YearEnd:   tt.yearEnd,
				})
				require.NoError(t, err)
				assert.Equal(t, tt.want, gotYear)
			})
		}
	})

	t.Run("per-request API key is sent", func(t *testing.T) {
		var gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("x-api-key")
			json.NewEncoder(w).Encode(SearchResponse{})
		}))
		defer server.Close()

		httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
			RateLimit:    100,
			BurstSize:    10,
			APIKey:       "configured-key",
			APIKeyHeader: "x-api-key",
			SourceName:   "semantic_scholar",
		})
		client := NewClient(Config{
			BaseURL: server.URL,
			Enabled: true,
		}, httpClient)

		_, err := client.Search(context.Background(), sources.SearchParams{
			Query:  "test",
			APIKey: "request-key",
		})
		require.NoError(t, err)
		assert.Equal(t, "request-key", gotKey)
	})

	t.Run("falls back to configured API key", func(t *testing.T) {
		var gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("x-api-key")
			json.NewEncoder(w).Encode(SearchResponse{})
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL:   server.URL,
			APIKey:    "configured-key",
			Enabled:   true,
			RateLimit: 100,
			BurstSize: 10,
		}, nil)

		_, err := client.Search(context.Background(), sources.SearchParams{Query: "test"})
		require.NoError(t, err)
		assert.Equal(t, "configured-key", gotKey)
	})

	t.Run("caps limit at configured maximum", func(t *testing.T) {
		var gotLimit string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotLimit = r.URL.Query().Get("limit")
			json.NewEncoder(w).Encode(SearchResponse{})
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL:    server.URL,
			Enabled:    true,
			RateLimit:  100,
			BurstSize:  10,
			MaxResults: 50,
		}, nil)

		_, err := client.Search(context.Background(), sources.SearchParams{
			Query: "test",
			Limit: 500,
		})
		require.NoError(t, err)
		assert.Equal(t, "50", gotLimit)
	})

	t.Run("API error is returned as ExternalAPIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "bad query syntax"})
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL:   server.URL,
			Enabled:   true,
			RateLimit: 100,
			BurstSize: 10,
		}, nil)

		papers, err := client.Search(context.Background(), sources.SearchParams{Query: "test"})
		require.Error(t, err)
		assert.Nil(t, papers)

		var apiErr *domain.ExternalAPIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "semantic_scholar", apiErr.Source)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "bad query syntax")
	})

	t.Run("malformed JSON response returns error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL:   server.URL,
			Enabled:   true,
			RateLimit: 100,
			BurstSize: 10,
		}, nil)

		_, err := client.Search(context.Background(), sources.SearchParams{Query: "test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding response")
	})

	t.Run("canceled context aborts the search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(SearchResponse{})
		}))
		defer server.Close()

		client := NewClient(Config{
			BaseURL:   server.URL,
			Enabled:   true,
			RateLimit: 100,
			BurstSize: 10,
		}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Search(ctx, sources.SearchParams{Query: "test"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.ContentTypePaper, contentTypeFor(nil))
	assert.Equal(t, domain.ContentTypePaper, contentTypeFor([]string{"JournalArticle", "Review"}))
	assert.Equal(t, domain.ContentTypeBook, contentTypeFor([]string{"Book"}))
	assert.Equal(t, domain.ContentTypeBook, contentTypeFor([]string{"JournalArticle", "BookSection"}))
}

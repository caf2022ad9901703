package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
)

// fakeSearcher returns a scripted response and records the domain
// request it received.
type fakeSearcher struct {
	resp *domain.SearchResponse
	err  error
	got  *domain.SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestServer(searcher Searcher, metricsHandler http.Handler) *Server {
	return NewServer(Config{
		Address:     "127.0.0.1:0",
		MetricsPath: "/metrics",
	}, searcher, metricsHandler, zerolog.Nop())
}

func postSearch(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSearchHandler_Success(t *testing.T) {
	searcher := &fakeSearcher{
		resp: &domain.SearchResponse{
			Papers: []*domain.Paper{
				{Title: "Result one", Year: "2021"},
			},
			TotalResults:   1,
			SourcesQueried: []string{"semantic_scholar"},
			SourceCounts:   map[string]int{"semantic_scholar": 1},
		},
	}
	srv := newTestServer(searcher, nil)

	rec := postSearch(t, srv, `{
		"query": "child nutrition",
		"year_start": 2015,
		"year_end": 2024,
		"discipline": "medicine",
		"sort_by": "newest",
		"per_page": 25,
		"sources": ["semantic_scholar"],
		"credentials": {"semantic_scholar": "key-123"},
		"require_authors": true
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalResults)
	require.Len(t, resp.Papers, 1)
	assert.Equal(t, "Result one", resp.Papers[0].Title)

	// DTO fields must land on the domain request unchanged.
	require.NotNil(t, searcher.got)
	assert.Equal(t, "child nutrition", searcher.got.Query)
	assert.Equal(t, 2015, searcher.got.YearStart)
	assert.Equal(t, 2024, searcher.got.YearEnd)
	assert.Equal(t, "medicine", searcher.got.Discipline)
	assert.Equal(t, domain.SortByNewest, searcher.got.SortBy)
	assert.Equal(t, 25, searcher.got.PerPage)
	assert.Equal(t, []string{"semantic_scholar"}, searcher.got.Sources)
	assert.Equal(t, "key-123", searcher.got.Credentials["semantic_scholar"])
	require.NotNil(t, searcher.got.RequireAuthors)
	assert.True(t, *searcher.got.RequireAuthors)
	assert.True(t, searcher.got.AuthorsPostFilter())
}

// An omitted require_authors keeps the default author check without
// turning on the post filter; an explicit false relaxes the check.
func TestSearchHandler_RequireAuthorsTriState(t *testing.T) {
	searcher := &fakeSearcher{resp: &domain.SearchResponse{}}
	srv := newTestServer(searcher, nil)

	rec := postSearch(t, srv, `{"query": "soil chemistry"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, searcher.got)
	assert.Nil(t, searcher.got.RequireAuthors)
	assert.True(t, searcher.got.AuthorsRequired())
	assert.False(t, searcher.got.AuthorsPostFilter())

	rec = postSearch(t, srv, `{"query": "soil chemistry", "require_authors": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, searcher.got.RequireAuthors)
	assert.False(t, searcher.got.AuthorsRequired())
	assert.False(t, searcher.got.AuthorsPostFilter())
}

func TestSearchHandler_InvalidJSON(t *testing.T) {
	srv := newTestServer(&fakeSearcher{}, nil)

	rec := postSearch(t, srv, `{"query": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestSearchHandler_Validation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		errContains string
	}{
		{
			name:        "missing query",
			body:        `{}`,
			errContains: "query is required",
		},
		{
			name:        "unknown sort order",
			body:        `{"query": "q", "sort_by": "alphabetical"}`,
			errContains: "sort_by must be one of",
		},
		{
			name:        "per_page too small",
			body:        `{"query": "q", "per_page": 5}`,
			errContains: "per_page must be at least 10",
		},
		{
			name:        "per_page too large",
			body:        `{"query": "q", "per_page": 500}`,
			errContains: "per_page must be at most 50",
		},
		{
			name:        "negative min citations",
			body:        `{"query": "q", "min_citations": -1}`,
			errContains: "min_citations must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			srv := newTestServer(searcher, nil)

			rec := postSearch(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.errContains)
			assert.Nil(t, searcher.got, "invalid requests must not reach the searcher")
		})
	}
}

func TestSearchHandler_DomainValidationError(t *testing.T) {
	searcher := &fakeSearcher{
		err: domain.NewValidationError("year_start", "must not exceed year_end (2024 > 2020)"),
	}
	srv := newTestServer(searcher, nil)

	rec := postSearch(t, srv, `{"query": "q", "year_start": 2024, "year_end": 2020}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "year_start")
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(&fakeSearcher{}, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("exposed when handler installed", func(t *testing.T) {
		metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		srv := newTestServer(&fakeSearcher{}, metrics)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("absent without handler", func(t *testing.T) {
		srv := newTestServer(&fakeSearcher{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
)

func intPtr(n int) *int { return &n }

func paperWith(title, year string, citations *int, authors ...string) *domain.Paper {
	p := &domain.Paper{
		Title:         title,
		Year:          year,
		CitationCount: citations,
	}
	for _, name := range authors {
		p.Authors = append(p.Authors, domain.Author{Name: name})
	}
	p.Normalize()
	return p
}

func titles(papers []*domain.Paper) []string {
	out := make([]string, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.Title)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	t.Parallel()

	t.Run("no filters passes everything through", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("First result here", "2020", nil),
			paperWith("Second result here", "2021", intPtr(3)),
		}
		req := &domain.SearchRequest{}
		assert.Len(t, applyFilters(papers, req), 2)
	})

	t.Run("min citations drops missing and low counts", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("Highly cited study", "2020", intPtr(40), "A. Author"),
			paperWith("Barely cited study", "2020", intPtr(3), "B. Author"),
			paperWith("Uncounted study", "2020", nil, "C. Author"),
		}
		req := &domain.SearchRequest{MinCitations: 10}

		got := applyFilters(papers, req)
		assert.Equal(t, []string{"Highly cited study"}, titles(got))
	})

	t.Run("require authors drops anonymous and empty", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("Properly attributed work", "2020", nil, "Jane Roe"),
			paperWith("Anonymous pamphlet here", "2020", nil, "Anonymous"),
			paperWith("Unattributed dataset entry", "2020", nil),
			paperWith("Mixed author listing", "2020", nil, "", "John Doe"),
		}
		strict := true
		req := &domain.SearchRequest{RequireAuthors: &strict}

		got := applyFilters(papers, req)
		assert.Equal(t, []string{"Properly attributed work", "Mixed author listing"}, titles(got))
	})

	t.Run("unset require_authors leaves the list alone", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("Properly attributed work", "2020", nil, "Jane Roe"),
			paperWith("Unattributed dataset entry", "2020", nil),
		}
		req := &domain.SearchRequest{}

		got := applyFilters(papers, req)
		assert.Len(t, got, 2)
	})
}

func TestSortPapers(t *testing.T) {
	t.Parallel()

	t.Run("relevance keeps ranked order", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("Top ranked paper", "1999", nil),
			paperWith("Second ranked paper", "2024", nil),
		}
		sortPapers(papers, domain.SortByRelevance)
		assert.Equal(t, []string{"Top ranked paper", "Second ranked paper"}, titles(papers))
	})

	t.Run("newest puts unknown years last", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("Mid decade result", "2018", nil),
			paperWith("Undated preprint", domain.YearUnknown, nil),
			paperWith("Fresh publication", "2024", nil),
		}
		sortPapers(papers, domain.SortByNewest)
		assert.Equal(t, []string{"Fresh publication", "Mid decade result", "Undated preprint"}, titles(papers))
	})

	t.Run("oldest puts unknown years last", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("Undated preprint", domain.YearUnknown, nil),
			paperWith("Fresh publication", "2024", nil),
			paperWith("Classic reference work", "1987", nil),
		}
		sortPapers(papers, domain.SortByOldest)
		assert.Equal(t, []string{"Classic reference work", "Fresh publication", "Undated preprint"}, titles(papers))
	})

	t.Run("citations treats missing counts as zero", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paperWith("Uncounted study", "2020", nil),
			paperWith("Well cited study", "2020", intPtr(120)),
			paperWith("Lightly cited study", "2020", intPtr(4)),
		}
		sortPapers(papers, domain.SortByCitations)
		assert.Equal(t, []string{"Well cited study", "Lightly cited study", "Uncounted study"}, titles(papers))
	})
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	papers := make([]*domain.Paper, 0, 25)
	for i := 0; i < 25; i++ {
		papers = append(papers, paperWith("Result", "2020", nil))
	}

	t.Run("first page", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, paginate(papers, 1, 10), 10)
	})

	t.Run("partial last page", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, paginate(papers, 3, 10), 5)
	})

	t.Run("page beyond the end is empty", func(t *testing.T) {
		t.Parallel()
		got := paginate(papers, 4, 10)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

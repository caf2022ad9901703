package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/sources"
)

func TestQualityFilter_Filter(t *testing.T) {
	t.Parallel()

	profile := sources.Profile{Name: "test_source", Weight: 0.8}
	// The zero value enforces the author check.
	filter := QualityFilter{}

	t.Run("drops short and placeholder titles", func(t *testing.T) {
		t.Parallel()
		papers := []*domain.Paper{
			paper("", "", "2020"),
			paper("Ab", "", "2020"),
			paper("untitled", "", "2020"),
			paper("TEST", "", "2020"),
			paper("Document", "", "2020"),
			paper("A valid paper title", "", "2020"),
		}

		kept, dropped := filter.Filter(papers, profile)
		require.Len(t, kept, 1)
		assert.Equal(t, "A valid paper title", kept[0].Title)
		assert.Equal(t, 5, dropped[DropReasonTitle])
	})

	t.Run("drops author-less and anonymous papers", func(t *testing.T) {
		t.Parallel()
		noAuthors := paper("Paper without any authors", "", "2020")
		noAuthors.Authors = nil
		noAuthors.Normalize()

		anonymous := paper("Paper by nobody in particular", "", "2020")
		anonymous.Authors = []domain.Author{{Name: "Anonymous"}}

		ok := paper("A perfectly valid paper", "", "2020")

		kept, dropped := filter.Filter([]*domain.Paper{noAuthors, anonymous, ok}, profile)
		require.Len(t, kept, 1)
		assert.Equal(t, ok.Title, kept[0].Title)
		assert.Equal(t, 2, dropped[DropReasonAuthors])
	})

	t.Run("multi-author papers pass even with one anonymous entry", func(t *testing.T) {
		t.Parallel()
		p := paper("Collaboration with a ghost", "", "2020")
		p.Authors = []domain.Author{{Name: "Jane Doe"}, {Name: "Unknown"}}

		kept, _ := filter.Filter([]*domain.Paper{p}, profile)
		assert.Len(t, kept, 1)
	})

	t.Run("books are exempt from the author check", func(t *testing.T) {
		t.Parallel()
		book := paper("A reference handbook", "", "2020")
		book.Authors = []domain.Author{}
		book.ContentType = domain.ContentTypeBook

		kept, _ := filter.Filter([]*domain.Paper{book}, profile)
		assert.Len(t, kept, 1)
	})

	t.Run("source exemption bypasses the author check", func(t *testing.T) {
		t.Parallel()
		exempt := sources.Profile{Name: "raw_web", AllowMissingAuthors: true}
		p := paper("Scraped resource page title", "", "2020")
		p.Authors = []domain.Author{}

		kept, _ := filter.Filter([]*domain.Paper{p}, exempt)
		assert.Len(t, kept, 1)
	})

	t.Run("request relaxation bypasses the author check", func(t *testing.T) {
		t.Parallel()
		relaxed := QualityFilter{RelaxAuthors: true}
		p := paper("Paper without attribution", "", "2020")
		p.Authors = []domain.Author{}

		kept, _ := relaxed.Filter([]*domain.Paper{p}, profile)
		assert.Len(t, kept, 1)
	})

	t.Run("drops unknown years unless the source opts out", func(t *testing.T) {
		t.Parallel()
		p := paper("A paper lost in time", "", domain.YearUnknown)

		kept, dropped := filter.Filter([]*domain.Paper{p}, profile)
		assert.Empty(t, kept)
		assert.Equal(t, 1, dropped[DropReasonYear])

		exempt := sources.Profile{Name: "archive", AllowUnknownYear: true}
		kept, _ = filter.Filter([]*domain.Paper{p}, exempt)
		assert.Len(t, kept, 1)
	})

	t.Run("missing abstract is never disqualifying", func(t *testing.T) {
		t.Parallel()
		p := paper("Paper with no abstract at all", "", "2020")

		kept, _ := filter.Filter([]*domain.Paper{p}, profile)
		assert.Len(t, kept, 1)
	})
}

package rank

import (
	"strings"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/sources"
)

// placeholderTitles are exact (case-insensitive) titles that mark a
// record as scraper noise rather than a real work.
var placeholderTitles = map[string]struct{}{
	"untitled": {},
	"test":     {},
	"document": {},
	"page":     {},
	"sample":   {},
}

// anonymousAuthors are author names that carry no attribution value.
var anonymousAuthors = map[string]struct{}{
	"":          {},
	"anonymous": {},
	"unknown":   {},
}

// minTitleLength is the minimum rune count for a rankable title.
const minTitleLength = 5

// Drop reasons reported to the caller for observability.
const (
	DropReasonTitle   = "title"
	DropReasonAuthors = "authors"
	DropReasonYear    = "year"

	// DropReasonScore marks candidates under the source's configured
	// minimum quality score. Applied after local scoring, not here.
	DropReasonScore = "min_quality"
)

// QualityFilter drops malformed or unrankable candidates before
// scoring. The zero value requires authors on papers; per-source
// exemptions come from the source profile.
type QualityFilter struct {
	// RelaxAuthors skips the author check on paper-type records. Set
	// when the request explicitly relaxes the attribution requirement.
	RelaxAuthors bool
}

// Filter returns the candidates that pass the quality checks, plus a
// per-reason count of what was dropped. A missing abstract never
// disqualifies a candidate.
func (f QualityFilter) Filter(papers []*domain.Paper, profile sources.Profile) ([]*domain.Paper, map[string]int) {
	kept := make([]*domain.Paper, 0, len(papers))
	dropped := make(map[string]int)

	for _, paper := range papers {
		switch {
		case !acceptableTitle(paper.Title):
			dropped[DropReasonTitle]++
		case !f.RelaxAuthors && !profile.AllowMissingAuthors && !hasRealAuthors(paper):
			dropped[DropReasonAuthors]++
		case !profile.AllowUnknownYear && !paper.HasKnownYear():
			dropped[DropReasonYear]++
		default:
			kept = append(kept, paper)
		}
	}
	return kept, dropped
}

func acceptableTitle(title string) bool {
	title = strings.TrimSpace(title)
	if len([]rune(title)) < minTitleLength {
		return false
	}
	_, placeholder := placeholderTitles[strings.ToLower(title)]
	return !placeholder
}

// hasRealAuthors reports whether a paper-type record carries usable
// attribution. Books and other non-paper content are exempt.
func hasRealAuthors(paper *domain.Paper) bool {
	if paper.ContentType != domain.ContentTypePaper {
		return true
	}
	if len(paper.Authors) == 0 {
		return false
	}
	if len(paper.Authors) == 1 {
		name := strings.ToLower(strings.TrimSpace(paper.Authors[0].Name))
		if _, anon := anonymousAuthors[name]; anon {
			return false
		}
	}
	return true
}

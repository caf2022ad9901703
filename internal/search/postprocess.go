package search

import (
	"sort"
	"strings"

	"github.com/helixir/paper-search-service/internal/domain"
)

// applyFilters drops papers excluded by the request's post-filters.
// Filtering happens before sorting and pagination so total_results
// reflects the filtered list.
func applyFilters(papers []*domain.Paper, req *domain.SearchRequest) []*domain.Paper {
	if req.MinCitations <= 0 && !req.AuthorsPostFilter() {
		return papers
	}

	kept := papers[:0]
	for _, p := range papers {
		if req.MinCitations > 0 && p.Citations() < req.MinCitations {
			continue
		}
		if req.AuthorsPostFilter() && !hasNamedAuthor(p) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// hasNamedAuthor reports whether at least one author carries a real name.
func hasNamedAuthor(p *domain.Paper) bool {
	for _, a := range p.Authors {
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name != "" && name != "anonymous" && name != "unknown" {
			return true
		}
	}
	return false
}

// sortPapers reorders the final list in place. Relevance keeps the
// ranked order. Year sorts place papers with unparsable years last in
// both directions; missing citation counts sort as zero. The sort is
// stable so equal keys preserve the relevance order.
func sortPapers(papers []*domain.Paper, order domain.SortOrder) {
	switch order {
	case domain.SortByNewest:
		sort.SliceStable(papers, func(i, j int) bool {
			yi, iok := papers[i].YearInt()
			yj, jok := papers[j].YearInt()
			if iok != jok {
				return iok
			}
			return yi > yj
		})
	case domain.SortByOldest:
		sort.SliceStable(papers, func(i, j int) bool {
			yi, iok := papers[i].YearInt()
			yj, jok := papers[j].YearInt()
			if iok != jok {
				return iok
			}
			return yi < yj
		})
	case domain.SortByCitations:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].Citations() > papers[j].Citations()
		})
	default:
		// Relevance: the ranked order stands.
	}
}

// paginate slices out the requested page. Pages beyond the end are
// empty, never an error.
func paginate(papers []*domain.Paper, page, perPage int) []*domain.Paper {
	start := (page - 1) * perPage
	if start >= len(papers) {
		return []*domain.Paper{}
	}
	end := start + perPage
	if end > len(papers) {
		end = len(papers)
	}
	return papers[start:end]
}

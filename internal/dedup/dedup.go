package dedup

import (
	"strings"

	"github.com/helixir/paper-search-service/internal/rank"
)

// Deduplicate walks a ranked candidate list in order and drops every
// candidate whose DOI or normalized-title key was already seen. Because
// iteration is rank-ordered, the highest-scored instance of any
// duplicate survives. The operation is idempotent: running it on its
// own output changes nothing.
//
// Returns the surviving candidates and the number removed.
func Deduplicate(ranked []*rank.Candidate) ([]*rank.Candidate, int) {
	if len(ranked) == 0 {
		return ranked, 0
	}

	seenDOI := make(map[string]struct{}, len(ranked))
	seenTitle := make(map[uint64]struct{}, len(ranked))

	kept := make([]*rank.Candidate, 0, len(ranked))
	removed := 0

	for _, c := range ranked {
		doi := strings.ToLower(strings.TrimSpace(c.Paper.Identifiers.DOI))
		titleKey := TitleKey(c.Paper.Title)

		duplicate := false
		if doi != "" {
			if _, ok := seenDOI[doi]; ok {
				duplicate = true
			}
		}
		if !duplicate && titleKey != 0 {
			if _, ok := seenTitle[titleKey]; ok {
				duplicate = true
			}
		}

		if duplicate {
			removed++
			continue
		}

		if doi != "" {
			seenDOI[doi] = struct{}{}
		}
		if titleKey != 0 {
			seenTitle[titleKey] = struct{}{}
		}
		kept = append(kept, c)
	}

	return kept, removed
}

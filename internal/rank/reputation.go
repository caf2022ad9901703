package rank

import (
	"strings"

	"github.com/helixir/paper-search-service/internal/domain"
)

// ReputationTable resolves the source-reputation feature for a paper.
// Resolution order: exact source name, then journal-name substring,
// then a per-content-type default. The table is built at startup and
// read-only afterwards.
type ReputationTable struct {
	bySource  map[string]float64
	byJournal map[string]float64
	paper     float64
	book      float64
}

// ReputationConfig seeds a reputation table.
type ReputationConfig struct {
	// Sources maps source names to reputation in [0,1].
	Sources map[string]float64

	// Journals maps lowercase journal-name substrings to reputation.
	Journals map[string]float64

	// PaperDefault and BookDefault apply when nothing else matches.
	PaperDefault float64
	BookDefault  float64
}

// NewReputationTable builds a table from configuration. Zero defaults
// fall back to mid-range values.
func NewReputationTable(cfg ReputationConfig) *ReputationTable {
	t := &ReputationTable{
		bySource:  make(map[string]float64, len(cfg.Sources)),
		byJournal: make(map[string]float64, len(cfg.Journals)),
		paper:     cfg.PaperDefault,
		book:      cfg.BookDefault,
	}
	for name, rep := range cfg.Sources {
		t.bySource[strings.ToLower(name)] = rep
	}
	for substr, rep := range cfg.Journals {
		t.byJournal[strings.ToLower(substr)] = rep
	}
	if t.paper == 0 {
		t.paper = 0.5
	}
	if t.book == 0 {
		t.book = 0.6
	}
	return t
}

// DefaultReputationTable carries the built-in reputation seed used when
// configuration supplies none.
func DefaultReputationTable() *ReputationTable {
	return NewReputationTable(ReputationConfig{
		Sources: map[string]float64{
			"semantic_scholar": 0.85,
			"openalex":         0.8,
			"pubmed":           0.9,
			"arxiv":            0.7,
		},
		Journals: map[string]float64{
			"nature":  0.95,
			"science": 0.95,
			"lancet":  0.95,
			"cell":    0.9,
			"plos":    0.75,
		},
	})
}

// Lookup resolves the reputation for one paper.
func (t *ReputationTable) Lookup(paper *domain.Paper) float64 {
	if rep, ok := t.bySource[strings.ToLower(paper.Source)]; ok {
		return rep
	}
	if journal := strings.ToLower(paper.Journal); journal != "" {
		for substr, rep := range t.byJournal {
			if strings.Contains(journal, substr) {
				return rep
			}
		}
	}
	if paper.ContentType == domain.ContentTypeBook {
		return t.book
	}
	return t.paper
}

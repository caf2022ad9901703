// Package domain provides the canonical data model for the paper search service.
package domain

import (
	"strconv"
	"strings"
)

// YearUnknown is the sentinel value for papers without a usable publication year.
const YearUnknown = "Unknown"

// ContentType distinguishes the kinds of records sources can return.
type ContentType string

const (
	ContentTypePaper ContentType = "paper"
	ContentTypeBook  ContentType = "book"
)

// Identifiers holds all possible identifiers for an academic work.
// All fields are optional; a record may carry none of them.
type Identifiers struct {
	DOI      string `json:"doi,omitempty"`
	ArXivID  string `json:"arxiv_id,omitempty"`
	PubMedID string `json:"pubmed_id,omitempty"`
	ISBN     string `json:"isbn,omitempty"`
}

// GenerateCanonicalID generates a canonical identifier from a work's identifiers.
// Priority order: DOI > ArXiv > PubMed > ISBN.
// Returns empty string if no identifiers are available.
func GenerateCanonicalID(ids Identifiers) string {
	if doi := strings.TrimSpace(ids.DOI); doi != "" {
		// DOIs are case-insensitive; normalize for comparison.
		return "doi:" + strings.ToLower(doi)
	}
	if arxiv := strings.TrimSpace(ids.ArXivID); arxiv != "" {
		return "arxiv:" + arxiv
	}
	if pubmed := strings.TrimSpace(ids.PubMedID); pubmed != "" {
		return "pubmed:" + pubmed
	}
	if isbn := strings.TrimSpace(ids.ISBN); isbn != "" {
		return "isbn:" + strings.ReplaceAll(isbn, "-", "")
	}
	return ""
}

// Author represents a paper author with optional affiliation and ORCID.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
}

// Paper is the canonical record every source adapter must produce.
// Records are created transiently per request and never persisted.
type Paper struct {
	Title                    string      `json:"title"`
	Authors                  []Author    `json:"authors"`
	Abstract                 string      `json:"abstract,omitempty"`
	Year                     string      `json:"year"`
	Source                   string      `json:"source"`
	Identifiers              Identifiers `json:"identifiers"`
	URL                      string      `json:"url,omitempty"`
	PDFURL                   string      `json:"pdf_url,omitempty"`
	FullTextURL              string      `json:"full_text_url,omitempty"`
	CitationCount            *int        `json:"citation_count,omitempty"`
	InfluentialCitationCount *int        `json:"influential_citation_count,omitempty"`
	ContentType              ContentType `json:"content_type"`
	Journal                  string      `json:"journal,omitempty"`
	Subjects                 []string    `json:"subjects,omitempty"`
	DownloadFormats          []string    `json:"download_formats,omitempty"`
	License                  string      `json:"license,omitempty"`
}

// Normalize applies the canonical-record defaults that adapters rely on.
// Called at the adapter boundary so downstream stages can assume a
// well-formed record.
func (p *Paper) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	if p.ContentType == "" {
		p.ContentType = ContentTypePaper
	}
	if strings.TrimSpace(p.Year) == "" {
		p.Year = YearUnknown
	}
	if p.Authors == nil {
		p.Authors = []Author{}
	}
}

// YearInt parses the publication year. The second return value is false
// for the YearUnknown sentinel or any unparsable year string.
func (p *Paper) YearInt() (int, bool) {
	y := strings.TrimSpace(p.Year)
	if y == "" || strings.EqualFold(y, YearUnknown) {
		return 0, false
	}
	n, err := strconv.Atoi(y)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// HasKnownYear reports whether the paper carries a parsable publication year.
func (p *Paper) HasKnownYear() bool {
	_, ok := p.YearInt()
	return ok
}

// Citations returns the citation count, treating a missing count as zero.
func (p *Paper) Citations() int {
	if p.CitationCount == nil {
		return 0
	}
	return *p.CitationCount
}

// CanonicalID returns the canonical identifier for this paper, or empty
// string if the paper carries no identifier.
func (p *Paper) CanonicalID() string {
	return GenerateCanonicalID(p.Identifiers)
}

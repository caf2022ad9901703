// Package semanticscholar provides a reference connector for the
// Semantic Scholar Graph API.
//
// API Documentation: https://api.semanticscholar.org/
package semanticscholar

// SearchResponse represents the top-level response from the paper search
// endpoint.
type SearchResponse struct {
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Next   int           `json:"next"`
	Data   []PaperResult `json:"data"`
}

// PaperResult represents a single paper in an API response.
type PaperResult struct {
	PaperID                  string       `json:"paperId"`
	ExternalIDs              *ExternalIDs `json:"externalIds"`
	URL                      string       `json:"url"`
	Title                    string       `json:"title"`
	Abstract                 string       `json:"abstract"`
	Venue                    string       `json:"venue"`
	Year                     int          `json:"year"`
	CitationCount            *int         `json:"citationCount"`
	InfluentialCitationCount *int         `json:"influentialCitationCount"`
	IsOpenAccess             bool         `json:"isOpenAccess"`
	OpenAccessPDF            *OpenAccess  `json:"openAccessPdf"`
	FieldsOfStudy            []string     `json:"fieldsOfStudy"`
	PublicationTypes         []string     `json:"publicationTypes"`
	Journal                  *Journal     `json:"journal"`
	Authors                  []Author     `json:"authors"`
}

// ExternalIDs holds the external identifiers of a paper.
type ExternalIDs struct {
	DOI    string `json:"DOI"`
	ArXiv  string `json:"ArXiv"`
	PubMed string `json:"PubMed"`
}

// OpenAccess holds the open access PDF location of a paper.
type OpenAccess struct {
	URL     string `json:"url"`
	Status  string `json:"status"`
	License string `json:"license"`
}

// Journal holds publication venue details.
type Journal struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
	Pages  string `json:"pages"`
}

// Author represents an author entry in an API response.
type Author struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// ErrorResponse represents an API error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

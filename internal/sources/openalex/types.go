// Package openalex provides a reference connector for the OpenAlex API.
//
// API Documentation: https://docs.openalex.org/
package openalex

// SearchResponse represents the top-level response from the works endpoint.
type SearchResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta holds pagination metadata for a search response.
type Meta struct {
	Count       int `json:"count"`
	Page        int `json:"page"`
	PerPage     int `json:"per_page"`
	DBResponseT int `json:"db_response_time_ms"`
}

// Work represents a single OpenAlex work record.
type Work struct {
	ID                    string           `json:"id"`
	DOI                   string           `json:"doi"`
	Title                 string           `json:"title"`
	DisplayName           string           `json:"display_name"`
	PublicationYear       int              `json:"publication_year"`
	Type                  string           `json:"type"`
	IDs                   WorkIDs          `json:"ids"`
	Authorships           []Authorship     `json:"authorships"`
	CitedByCount          *int             `json:"cited_by_count"`
	PrimaryLocation       *Location        `json:"primary_location"`
	OpenAccess            *OpenAccessInfo  `json:"open_access"`
	Concepts              []Concept        `json:"concepts"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

// WorkIDs holds the external identifiers of a work.
type WorkIDs struct {
	OpenAlex string `json:"openalex"`
	DOI      string `json:"doi"`
	PMID     string `json:"pmid"`
}

// Authorship links an author to a work with their institutions.
type Authorship struct {
	Author       AuthorRef     `json:"author"`
	Institutions []Institution `json:"institutions"`
}

// AuthorRef identifies an author within an authorship.
type AuthorRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Orcid       string `json:"orcid"`
}

// Institution identifies an institution within an authorship.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Location describes where a work is hosted.
type Location struct {
	Source  *LocationSource `json:"source"`
	PDFURL  string          `json:"pdf_url"`
	License string          `json:"license"`
}

// LocationSource identifies the venue hosting a work.
type LocationSource struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// OpenAccessInfo describes the open access status of a work.
type OpenAccessInfo struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

// Concept is a subject tag assigned to a work.
type Concept struct {
	DisplayName string  `json:"display_name"`
	Level       int     `json:"level"`
	Score       float64 `json:"score"`
}

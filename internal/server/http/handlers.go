package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helixir/paper-search-service/internal/domain"
)

// maxRequestBodySize caps request bodies at 1 MB.
const maxRequestBodySize = 1 << 20

var validate = newValidator()

// newValidator builds the request validator with json tag names so
// violations reference the wire field, not the Go field.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// searchRequest is the JSON request body for a federated search.
type searchRequest struct {
	Query           string            `json:"query" validate:"required,max=10000"`
	YearStart       int               `json:"year_start" validate:"omitempty,min=0"`
	YearEnd         int               `json:"year_end" validate:"omitempty,min=0"`
	Discipline      string            `json:"discipline" validate:"omitempty,max=100"`
	EducationLevel  string            `json:"education_level" validate:"omitempty,max=100"`
	PublicationType string            `json:"publication_type" validate:"omitempty,max=100"`
	StudyType       string            `json:"study_type" validate:"omitempty,max=100"`
	MinCitations    int               `json:"min_citations" validate:"omitempty,min=0"`
	SortBy          string            `json:"sort_by" validate:"omitempty,oneof=relevance newest oldest citations"`
	Page            int               `json:"page" validate:"omitempty,min=1"`
	PerPage         int               `json:"per_page" validate:"omitempty,min=10,max=50"`
	Sources         []string          `json:"sources" validate:"omitempty,max=20,dive,required"`
	Credentials     map[string]string `json:"credentials" validate:"omitempty,max=20"`
	// RequireAuthors is tri-state. Omitted keeps the default author
	// quality check; false relaxes it; true re-checks the final list.
	RequireAuthors *bool `json:"require_authors"`
}

// toDomain maps the DTO onto the domain request. Defaults are applied
// downstream by SearchRequest.Normalize.
func (r searchRequest) toDomain() *domain.SearchRequest {
	return &domain.SearchRequest{
		Query:           strings.TrimSpace(r.Query),
		YearStart:       r.YearStart,
		YearEnd:         r.YearEnd,
		Discipline:      r.Discipline,
		EducationLevel:  r.EducationLevel,
		PublicationType: r.PublicationType,
		StudyType:       r.StudyType,
		MinCitations:    r.MinCitations,
		SortBy:          domain.SortOrder(r.SortBy),
		Page:            r.Page,
		PerPage:         r.PerPage,
		Sources:         r.Sources,
		Credentials:     r.Credentials,
		RequireAuthors:  r.RequireAuthors,
	}
}

// searchHandler handles POST /api/v1/search.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	resp, err := s.searcher.Search(ctx, req.toDomain())
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// validationMessage renders the first field violation as a client-facing
// message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", field)
		case "min":
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		default:
			return fmt.Sprintf("%s is invalid", field)
		}
	}
	return "invalid request"
}

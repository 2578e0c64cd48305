package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/apperror"
	"github.com/eduvance/portal/internal/database"
)

// Store is the data access the handlers need. *database.DB satisfies it.
type Store interface {
	GetSubject(ctx context.Context, name, syllabusType string) (*database.SubjectDetail, error)
	FindSubjectRef(ctx context.Context, name, syllabusType string) (*database.SubjectRef, error)
	ListSubjectNames(ctx context.Context, syllabusType string) ([]database.SubjectName, error)
	ListSubjects(ctx context.Context) ([]database.Subject, error)
	ListSubjectCatalog(ctx context.Context) ([]database.SubjectListing, error)
	CreateSubject(ctx context.Context, s database.NewSubject) (string, error)

	ListSubjectPapers(ctx context.Context, subjectID string) ([]database.SubjectPaper, error)
	ListPastPapers(ctx context.Context, year int, session string) ([]database.PastPaper, error)
	UpsertPaper(ctx context.Context, p database.PaperInput) error
	ListExamSessions(ctx context.Context) ([]database.ExamSession, error)

	ListApprovedCommunityResources(ctx context.Context, subjectID string) ([]database.CommunityResource, error)
	UpdateResourceVotes(ctx context.Context, id string, likes, dislikes int64) error
	CreateResource(ctx context.Context, r database.ResourceInput) (string, error)
	CreateCommunityRequest(ctx context.Context, r database.CommunityRequestInput) (string, error)

	Ping(ctx context.Context) error
}

// MemberCounter reports the Discord community size
type MemberCounter interface {
	MemberCount(ctx context.Context) (int64, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store    Store
	members  MemberCounter
	validate *validator.Validate
	siteURL  string
}

// New creates a new Handlers instance. members may be nil when Discord is not configured.
func New(store Store, members MemberCounter, siteURL string) *Handlers {
	return &Handlers{
		store:    store,
		members:  members,
		validate: validator.New(),
		siteURL:  siteURL,
	}
}

// writeJSON writes v as a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// jsonError writes {"error": message}
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps an error onto its status and writes it
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	status := appErr.Status()

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("Request failed")
	}

	h.jsonError(w, appErr.Error(), status)
}

// decodeJSON reads the request body into v
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

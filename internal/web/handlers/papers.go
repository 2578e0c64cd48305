package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/apperror"
	"github.com/eduvance/portal/internal/database"
)

const (
	defaultPaperSubject = "Accounting"
	defaultPaperType    = database.SyllabusIAL
)

// pastPaperSessions are the sessions accepted by /api/past-papers
var pastPaperSessions = map[string]bool{
	"January":  true,
	"June":     true,
	"November": true,
}

// ListPapers handles GET /api/mysql/papers?subject=&type=
func (h *Handlers) ListPapers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("subject")
	if name == "" {
		name = defaultPaperSubject
	}
	syllabusType := r.URL.Query().Get("type")
	if syllabusType == "" {
		syllabusType = defaultPaperType
	}

	subject, err := h.store.FindSubjectRef(r.Context(), name, syllabusType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if subject == nil {
		h.writeError(w, r, apperror.NotFound("Subject not found"))
		return
	}

	papers, err := h.store.ListSubjectPapers(r.Context(), subject.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"subject": subject,
		"papers":  papers,
	})
}

// InsertPaper handles POST /api/mysql/papers_insert
func (h *Handlers) InsertPaper(w http.ResponseWriter, r *http.Request) {
	var req paperInsertRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.jsonError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	if err := h.store.UpsertPaper(r.Context(), database.PaperInput{
		SubjectID:          req.SubjectID,
		ExamSessionID:      req.ExamSessionID,
		UnitCode:           req.UnitCode,
		QuestionPaperLink:  deref(req.QuestionPaperLink),
		MarkSchemeLink:     deref(req.MarkSchemeLink),
		ExaminerReportLink: deref(req.ExaminerReportLink),
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListExamSessions handles GET /api/mysql/exam_sessions
func (h *Handlers) ListExamSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListExamSessions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"exam_sessions": sessions})
}

// PastPapers handles GET /api/past-papers?year=&session=
func (h *Handlers) PastPapers(w http.ResponseWriter, r *http.Request) {
	yearParam := strings.TrimSpace(r.URL.Query().Get("year"))
	session := strings.TrimSpace(r.URL.Query().Get("session"))
	if yearParam == "" || session == "" {
		h.jsonError(w, "Year and session are required", http.StatusBadRequest)
		return
	}
	if !pastPaperSessions[session] {
		h.jsonError(w, "Invalid session", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(yearParam)
	if err != nil {
		h.jsonError(w, "Invalid year", http.StatusBadRequest)
		return
	}

	papers, err := h.store.ListPastPapers(r.Context(), year, session)
	if err != nil {
		log.Error().Err(err).Int("year", year).Str("session", session).Msg("Failed to fetch past papers")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch papers",
			"details": err.Error(),
		})
		return
	}

	if len(papers) == 0 {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"papers":  []database.PastPaper{},
			"message": "No papers found for the specified criteria",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"papers": papers})
}

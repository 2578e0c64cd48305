package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/apperror"
	"github.com/eduvance/portal/internal/database"
)

// GetSubject handles GET /api/mysql/subject?name=&type=
func (h *Handlers) GetSubject(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	syllabusType := r.URL.Query().Get("type")
	if name == "" || syllabusType == "" {
		h.jsonError(w, "Missing name or type", http.StatusBadRequest)
		return
	}

	subject, err := h.store.GetSubject(r.Context(), name, syllabusType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if subject == nil {
		h.jsonError(w, "Not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"subject": subject})
}

// ListSubjects handles GET /api/mysql/subjects?type=
func (h *Handlers) ListSubjects(w http.ResponseWriter, r *http.Request) {
	syllabusType := r.URL.Query().Get("type")
	if syllabusType == "" {
		h.jsonError(w, "Missing type", http.StatusBadRequest)
		return
	}

	subjects, err := h.store.ListSubjectNames(r.Context(), syllabusType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

// ListSubjectsFull handles GET /api/mysql/subjects_full
func (h *Handlers) ListSubjectsFull(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.store.ListSubjects(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

// AddSubject handles POST /api/mysql/subjects_add
func (h *Handlers) AddSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectAddRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.jsonError(w, "Missing subject name or syllabus type", http.StatusBadRequest)
		return
	}

	_, err := h.store.CreateSubject(r.Context(), database.NewSubject{
		Name:         req.Name,
		Code:         deref(req.Code),
		SyllabusType: req.SyllabusType,
		Units:        req.Units,
	})
	if errors.Is(err, database.ErrDuplicate) {
		h.writeError(w, r, apperror.Conflict("Subject already exists"))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.Info().Str("name", req.Name).Str("type", req.SyllabusType).Msg("Subject added")
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SubjectList handles GET /api/subjectList
func (h *Handlers) SubjectList(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.store.ListSubjectCatalog(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list subjects")
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(),
			"data":  nil,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"error": nil,
		"data":  subjects,
	})
}

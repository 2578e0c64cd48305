package handlers

import (
	"net"
	"net/http"

	"github.com/eduvance/portal/internal/apperror"
	"github.com/eduvance/portal/internal/database"
)

// ListResources handles GET /api/mysql/resources?subject=&type=
func (h *Handlers) ListResources(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("subject")
	syllabusType := r.URL.Query().Get("type")
	if name == "" || syllabusType == "" {
		h.jsonError(w, "Missing subject or type", http.StatusBadRequest)
		return
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

	resources, err := h.store.ListApprovedCommunityResources(r.Context(), subject.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"resources": resources})
}

// UpdateResourceVotes handles PATCH /api/mysql/resources
func (h *Handlers) UpdateResourceVotes(w http.ResponseWriter, r *http.Request) {
	var req resourceVotesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		h.jsonError(w, "Missing id", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.jsonError(w, "Invalid vote counts", http.StatusBadRequest)
		return
	}

	var likes, dislikes int64
	if req.LikeCount != nil {
		likes = *req.LikeCount
	}
	if req.DislikeCount != nil {
		dislikes = *req.DislikeCount
	}

	if err := h.store.UpdateResourceVotes(r.Context(), req.ID, likes, dislikes); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// InsertResource handles POST /api/mysql/resources_insert
func (h *Handlers) InsertResource(w http.ResponseWriter, r *http.Request) {
	var req resourceInsertRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.jsonError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	if _, err := h.store.CreateResource(r.Context(), database.ResourceInput{
		SubjectID:        req.SubjectID,
		ResourceType:     req.ResourceType,
		Title:            req.Title,
		Description:      req.Description,
		Link:             req.Link,
		UnitChapterName:  req.UnitChapterName,
		ContributorEmail: req.ContributorEmail,
		Approved:         req.Approved,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// InsertCommunityRequest handles POST /api/mysql/community_resource_requests
func (h *Handlers) InsertCommunityRequest(w http.ResponseWriter, r *http.Request) {
	var req communityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.jsonError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	if _, err := h.store.CreateCommunityRequest(r.Context(), database.CommunityRequestInput{
		ContributorName:  req.ContributorName,
		ContributorEmail: req.ContributorEmail,
		Title:            req.Title,
		Description:      req.Description,
		Link:             req.Link,
		ResourceType:     req.ResourceType,
		UnitChapterName:  req.UnitChapterName,
		SubjectID:        req.SubjectID,
		SubmitterIP:      clientIP(r),
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// clientIP returns the caller address. RealIP has already applied proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/eduvance/portal/internal/apperror"
)

// Members handles GET /api/members
func (h *Handlers) Members(w http.ResponseWriter, r *http.Request) {
	if h.members == nil {
		h.writeError(w, r, apperror.Unauthorized("Discord bot token or guild id not configured"))
		return
	}

	count, err := h.members.MemberCount(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"count": strconv.FormatInt(count, 10)})
}

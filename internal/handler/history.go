package handler

import (
	"net/http"

	"github.com/inboxinvader/inboxinvader/internal/middleware"
	"github.com/inboxinvader/inboxinvader/internal/model"
)

// History handles GET /history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	batches, err := h.historySvc.List(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load history")
		writeFailure(w, http.StatusInternalServerError, "Failed to load send history")
		return
	}
	if batches == nil {
		batches = []model.BatchRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"batches": batches,
	})
}

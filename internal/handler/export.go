package handler

import (
	"net/http"

	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/report"
)

type exportRequest struct {
	Results []model.SendResult `json:"results"`
}

// ExportCSV handles POST /export-csv. The client posts back the results
// of a finished batch and receives them as a downloadable CSV file.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Results) == 0 {
		writeFailure(w, http.StatusBadRequest, "No results to export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="send_results.csv"`)
	if err := report.WriteCSV(w, req.Results); err != nil {
		h.log.Error().Err(err).Msg("failed to write csv export")
	}
}

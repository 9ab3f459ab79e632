package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/inboxinvader/inboxinvader/internal/mailer"
	"github.com/inboxinvader/inboxinvader/internal/middleware"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/recipient"
	"github.com/inboxinvader/inboxinvader/internal/report"
	"github.com/inboxinvader/inboxinvader/internal/service"
)

// maxSendBodyBytes caps the multipart form, attachments included.
const maxSendBodyBytes = 32 << 20

// Send handles POST /send. The request is multipart form data so that
// attachments ride along with the batch fields. Delivery is synchronous:
// the response is written only after every recipient has been attempted.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	if err := r.ParseMultipartForm(maxSendBodyBytes); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid multipart form data")
		return
	}

	senderEmail := r.FormValue("sender_email")
	senderPassword := r.FormValue("sender_password")
	if senderEmail == "" || senderPassword == "" {
		writeFailure(w, http.StatusBadRequest, "Sender email and password are required")
		return
	}

	server := r.FormValue("smtp_server")
	if server == "" {
		server = h.cfg.SMTP.DefaultServer
	}
	port := h.cfg.SMTP.DefaultPort
	if raw := r.FormValue("smtp_port"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p <= 0 || p > 65535 {
			writeFailure(w, http.StatusBadRequest, "Invalid SMTP port")
			return
		}
		port = p
	}

	recipients := recipient.Parse(r.FormValue("recipients"))
	if len(recipients) == 0 {
		writeFailure(w, http.StatusBadRequest, "No recipients provided")
		return
	}

	delaySeconds := 0.0
	if raw := r.FormValue("delay_seconds"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			writeFailure(w, http.StatusBadRequest, "Invalid delay value")
			return
		}
		delaySeconds = d
	}

	variables := map[string]string{}
	if raw := r.FormValue("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variables); err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid variables JSON")
			return
		}
	}

	attachments, err := readAttachments(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Failed to read attachments")
		return
	}

	results := h.dispatchSvc.Dispatch(r.Context(), service.DispatchRequest{
		Account: mailer.Account{
			Server:   server,
			Port:     port,
			Email:    senderEmail,
			Password: senderPassword,
		},
		Recipients:   recipients,
		Subject:      r.FormValue("subject"),
		Body:         r.FormValue("body"),
		DelaySeconds: delaySeconds,
		Variables:    variables,
		Attachments:  attachments,
	})

	summary := report.Summarize(results)
	if h.historySvc != nil {
		h.historySvc.Record(r.Context(), userID, r.FormValue("subject"), summary)
	}
	h.log.WithUserID(userID).Info().
		Int("total", summary.Total).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Msg("send batch completed")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": summary.Failed == 0,
		"message": fmt.Sprintf("Sent %d/%d emails successfully", summary.Successful, summary.Total),
		"results": results,
		"summary": summary,
	})
}

func readAttachments(r *http.Request) ([]model.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var attachments []model.Attachment
	for _, fh := range r.MultipartForm.File["attachments"] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, model.Attachment{
			Name: fh.Filename,
			Data: data,
		})
	}
	return attachments, nil
}

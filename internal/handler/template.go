package handler

import (
	"errors"
	"net/http"

	"github.com/inboxinvader/inboxinvader/internal/middleware"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/service"
)

type saveTemplateRequest struct {
	Name      string            `json:"name"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Variables map[string]string `json:"variables"`
}

// ListTemplates handles GET /templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	templates, err := h.templateSvc.List(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to list templates")
		writeFailure(w, http.StatusInternalServerError, "Failed to load templates")
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"templates": templates,
	})
}

// SaveTemplate handles POST /templates
func (h *Handler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req saveTemplateRequest
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tmpl, err := h.templateSvc.Save(r.Context(), userID, service.SaveRequest{
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		Variables: req.Variables,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateFields):
			writeFailure(w, http.StatusBadRequest, "Template name and subject are required")
		case errors.Is(err, service.ErrTemplateName):
			writeFailure(w, http.StatusConflict, "A template with this name already exists")
		default:
			h.log.Error().Err(err).Str("user_id", userID).Msg("failed to save template")
			writeFailure(w, http.StatusInternalServerError, "Failed to save template")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Template saved",
		"template": tmpl,
	})
}

// DeleteTemplate handles DELETE /templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := r.PathValue("id")

	if err := h.templateSvc.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			writeFailure(w, http.StatusNotFound, "Template not found")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Str("template_id", id).Msg("failed to delete template")
		writeFailure(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Template deleted",
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inboxinvader/inboxinvader/internal/config"
	"github.com/inboxinvader/inboxinvader/internal/database"
	"github.com/inboxinvader/inboxinvader/internal/logger"
	"github.com/inboxinvader/inboxinvader/internal/service"
)

// Handler holds all HTTP handlers
type Handler struct {
	db          *database.Postgres
	rdb         *database.Redis
	log         *logger.Logger
	cfg         *config.Config
	authSvc     *service.AuthService
	templateSvc *service.TemplateService
	dispatchSvc *service.DispatchService
	historySvc  *service.HistoryService
}

// New creates a new Handler instance
func New(db *database.Postgres, rdb *database.Redis, log *logger.Logger, cfg *config.Config, authSvc *service.AuthService, templateSvc *service.TemplateService, dispatchSvc *service.DispatchService, historySvc *service.HistoryService) *Handler {
	return &Handler{
		db:          db,
		rdb:         rdb,
		log:         log,
		cfg:         cfg,
		authSvc:     authSvc,
		templateSvc: templateSvc,
		dispatchSvc: dispatchSvc,
		historySvc:  historySvc,
	}
}

// JSON helper functions. Every response body carries a success flag; the
// frontend branches on it rather than on HTTP status alone.

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

package middleware

import (
	"github.com/inboxinvader/inboxinvader/internal/auth"
	"github.com/inboxinvader/inboxinvader/internal/config"
	"github.com/inboxinvader/inboxinvader/internal/database"
	"github.com/inboxinvader/inboxinvader/internal/logger"
)

// Middleware holds dependencies for HTTP middleware
type Middleware struct {
	log      *logger.Logger
	cfg      *config.Config
	rdb      *database.Redis
	tokenSvc *auth.TokenService
}

// New creates a new Middleware instance
func New(log *logger.Logger, cfg *config.Config, rdb *database.Redis, tokenSvc *auth.TokenService) *Middleware {
	return &Middleware{
		log:      log,
		cfg:      cfg,
		rdb:      rdb,
		tokenSvc: tokenSvc,
	}
}

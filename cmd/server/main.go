package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inboxinvader/inboxinvader/internal/auth"
	"github.com/inboxinvader/inboxinvader/internal/config"
	"github.com/inboxinvader/inboxinvader/internal/database"
	"github.com/inboxinvader/inboxinvader/internal/handler"
	"github.com/inboxinvader/inboxinvader/internal/logger"
	"github.com/inboxinvader/inboxinvader/internal/mailer"
	"github.com/inboxinvader/inboxinvader/internal/middleware"
	"github.com/inboxinvader/inboxinvader/internal/repository"
	"github.com/inboxinvader/inboxinvader/internal/router"
	"github.com/inboxinvader/inboxinvader/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting InboxInvader server")

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	// Connect to Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("connected to Redis")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	// Initialize token service
	tokenSvc := auth.NewTokenService(cfg.Security.Tokens)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, tokenSvc, cfg, log)
	templateSvc := service.NewTemplateService(templateRepo, log)

	smtpSender := mailer.NewSMTPSender(cfg.SMTP.DialTimeout)
	dispatchSvc := service.NewDispatchService(smtpSender, log)
	historySvc := service.NewHistoryService(batchRepo, log)

	// Initialize handlers
	h := handler.New(db, rdb, log, cfg, authSvc, templateSvc, dispatchSvc, historySvc)

	// Initialize middleware
	mw := middleware.New(log, cfg, rdb, tokenSvc)

	// Set up router
	r := router.New(h, mw)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Delivery is synchronous; a paced batch can take minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

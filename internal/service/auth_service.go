package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inboxinvader/inboxinvader/internal/auth"
	"github.com/inboxinvader/inboxinvader/internal/config"
	"github.com/inboxinvader/inboxinvader/internal/logger"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/repository"
)

// Common service errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
)

// AuthService handles signup and login business logic
type AuthService struct {
	userRepo    *repository.UserRepository
	tokenSvc    *auth.TokenService
	argonParams *auth.Argon2Params
	cfg         *config.Config
	log         *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, tokenSvc *auth.TokenService, cfg *config.Config, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokenSvc: tokenSvc,
		argonParams: auth.NewParams(
			cfg.Security.Password.Argon2Memory,
			cfg.Security.Password.Argon2Iterations,
			cfg.Security.Password.Argon2Parallelism,
		),
		cfg: cfg,
		log: log.WithComponent("auth_service"),
	}
}

// SignupRequest contains the data for registering a new user
type SignupRequest struct {
	Username string
	Email    string
	Password string
}

// Signup creates a new user account
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := auth.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(req.Password, s.cfg.Security.Password.MinLength); err != nil {
		return nil, err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password, s.argonParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("username", username).Msg("user registered")
	return user, nil
}

// LoginResult carries the issued token and user identity
type LoginResult struct {
	Token    string
	Username string
	Email    string
}

// Login verifies credentials and issues a bearer token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.log.Warn().Str("username", username).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenSvc.Generate(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return &LoginResult{Token: token, Username: user.Username, Email: user.Email}, nil
}

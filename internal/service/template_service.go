package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inboxinvader/inboxinvader/internal/logger"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/repository"
)

// Template catalog errors
var (
	ErrTemplateFields   = errors.New("name and subject are required")
	ErrTemplateName     = errors.New("template name already exists")
	ErrTemplateNotFound = errors.New("template not found")
)

// TemplateService handles the per-user template catalog
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	log          *logger.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo *repository.TemplateRepository, log *logger.Logger) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		log:          log.WithComponent("template_service"),
	}
}

// List returns the user's templates in catalog order (most recently
// updated first, as delivered by the repository).
func (s *TemplateService) List(ctx context.Context, userID string) ([]model.Template, error) {
	templates, err := s.templateRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return templates, nil
}

// SaveRequest contains the data for creating a template
type SaveRequest struct {
	Name      string
	Subject   string
	Body      string
	Variables map[string]string
}

// Save stores a new template. Subject and body are kept byte for byte so
// a later load reproduces them exactly.
func (s *TemplateService) Save(ctx context.Context, userID string, req SaveRequest) (*model.Template, error) {
	name := strings.TrimSpace(req.Name)
	subject := strings.TrimSpace(req.Subject)
	if name == "" || subject == "" {
		return nil, ErrTemplateFields
	}

	exists, err := s.templateRepo.ExistsByName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check template name: %w", err)
	}
	if exists {
		return nil, ErrTemplateName
	}

	now := time.Now().UTC()
	tmpl := &model.Template{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Subject:   subject,
		Body:      req.Body,
		Variables: req.Variables,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tmpl.Variables == nil {
		tmpl.Variables = map[string]string{}
	}

	if err := s.templateRepo.Create(ctx, tmpl); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTemplateName
		}
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("template_id", tmpl.ID).Msg("template saved")
	return tmpl, nil
}

// Delete removes a template owned by the user
func (s *TemplateService) Delete(ctx context.Context, userID, id string) error {
	if err := s.templateRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("template_id", id).Msg("template deleted")
	return nil
}

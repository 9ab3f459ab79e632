package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inboxinvader/inboxinvader/internal/logger"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/inboxinvader/inboxinvader/internal/repository"
)

// historyListLimit caps how many past batches are returned.
const historyListLimit = 50

// HistoryService records completed dispatch batches and serves a
// user's send history. Recording is best-effort: a history write
// failure never fails the batch that produced it.
type HistoryService struct {
	batchRepo *repository.BatchRepository
	log       *logger.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(batchRepo *repository.BatchRepository, log *logger.Logger) *HistoryService {
	return &HistoryService{
		batchRepo: batchRepo,
		log:       log.WithComponent("history_service"),
	}
}

// Record stores the aggregate outcome of a finished batch.
func (s *HistoryService) Record(ctx context.Context, userID, subject string, summary model.SendSummary) {
	batch := &model.BatchRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		Subject:    subject,
		Total:      summary.Total,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to record batch history")
	}
}

// List returns the user's recent batches, newest first.
func (s *HistoryService) List(ctx context.Context, userID string) ([]model.BatchRecord, error) {
	batches, err := s.batchRepo.ListByUser(ctx, userID, historyListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch history: %w", err)
	}
	return batches, nil
}

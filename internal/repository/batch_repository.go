package repository

import (
	"context"
	"fmt"

	"github.com/inboxinvader/inboxinvader/internal/database"
	"github.com/inboxinvader/inboxinvader/internal/model"
)

// BatchRepository handles dispatch batch history persistence
type BatchRepository struct {
	db *database.Postgres
}

// NewBatchRepository creates a new BatchRepository
func NewBatchRepository(db *database.Postgres) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a new batch history record
func (r *BatchRepository) Create(ctx context.Context, batch *model.BatchRecord) error {
	query := `
		INSERT INTO batches (id, user_id, subject, total, successful, failed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		batch.ID,
		batch.UserID,
		batch.Subject,
		batch.Total,
		batch.Successful,
		batch.Failed,
		batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create batch record: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent batches, newest first.
func (r *BatchRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.BatchRecord, error) {
	query := `
		SELECT id, user_id, subject, total, successful, failed, created_at
		FROM batches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []model.BatchRecord
	for rows.Next() {
		var b model.BatchRecord
		if err := rows.Scan(&b.ID, &b.UserID, &b.Subject, &b.Total, &b.Successful, &b.Failed, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch record: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

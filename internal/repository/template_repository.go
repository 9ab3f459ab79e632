package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inboxinvader/inboxinvader/internal/database"
	"github.com/inboxinvader/inboxinvader/internal/model"
	"github.com/lib/pq"
)

// TemplateRepository handles template catalog persistence
type TemplateRepository struct {
	db *database.Postgres
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *database.Postgres) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts a new template for the user
func (r *TemplateRepository) Create(ctx context.Context, tmpl *model.Template) error {
	vars, err := marshalVariables(tmpl.Variables)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO templates (id, user_id, name, subject, body, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		tmpl.ID,
		tmpl.UserID,
		tmpl.Name,
		tmpl.Subject,
		tmpl.Body,
		vars,
		tmpl.CreatedAt,
		tmpl.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// ListByUser returns the user's templates ordered by last update,
// newest first. The order is part of the API contract.
func (r *TemplateRepository) ListByUser(ctx context.Context, userID string) ([]model.Template, error) {
	query := `
		SELECT id, user_id, name, subject, body, variables, created_at, updated_at
		FROM templates
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]model.Template, 0)
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

// ExistsByName checks whether the user already has a template with this name
func (r *TemplateRepository) ExistsByName(ctx context.Context, userID, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM templates WHERE user_id = $1 AND name = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check template name: %w", err)
	}
	return exists, nil
}

// Delete removes a template owned by the user
func (r *TemplateRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM templates WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (*model.Template, error) {
	var tmpl model.Template
	var vars sql.NullString
	err := row.Scan(
		&tmpl.ID,
		&tmpl.UserID,
		&tmpl.Name,
		&tmpl.Subject,
		&tmpl.Body,
		&vars,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	tmpl.Variables = map[string]string{}
	if vars.Valid && vars.String != "" {
		if err := json.Unmarshal([]byte(vars.String), &tmpl.Variables); err != nil {
			return nil, fmt.Errorf("failed to decode template variables: %w", err)
		}
	}
	return &tmpl, nil
}

func marshalVariables(vars map[string]string) (sql.NullString, error) {
	if len(vars) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode template variables: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/coursecast/internal/models"
	"gorm.io/gorm"
)

// ProgressRepository handles database operations for watch progress
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: &DB{DB: tx}}
}

// Get retrieves the progress of userID on videoID
func (r *ProgressRepository) Get(ctx context.Context, userID string, videoID uuid.UUID) (*models.Progress, error) {
	var progress models.Progress
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID.String()).
		First(&progress)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &progress, nil
}

// Create inserts a new progress record
func (r *ProgressRepository) Create(ctx context.Context, progress *models.Progress) error {
	result := r.db.WithContext(ctx).Create(progress)
	if result.Error != nil {
		return fmt.Errorf("failed to create progress: %w", MapGormError(result.Error))
	}
	return nil
}

// Update writes every field of an existing progress record
func (r *ProgressRepository) Update(ctx context.Context, progress *models.Progress) error {
	result := r.db.WithContext(ctx).Save(progress)
	if result.Error != nil {
		return fmt.Errorf("failed to update progress: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser retrieves every progress record of a user, most recent first
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]*models.Progress, error) {
	var records []*models.Progress
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list progress: %w", MapGormError(result.Error))
	}
	return records, nil
}

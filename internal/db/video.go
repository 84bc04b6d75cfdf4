package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/coursecast/internal/models"
)

// VideoRepository handles database operations for videos
type VideoRepository struct {
	db *DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts a new video into the database
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	result := r.db.WithContext(ctx).Create(video)
	if result.Error != nil {
		return fmt.Errorf("failed to create video: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a video by its UUID
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var video models.Video
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&video)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &video, nil
}

// List retrieves videos newest first. A non-positive limit returns everything.
func (r *VideoRepository) List(ctx context.Context, limit, offset int) ([]*models.Video, error) {
	var videos []*models.Video
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if result := query.Find(&videos); result.Error != nil {
		return nil, fmt.Errorf("failed to list videos: %w", MapGormError(result.Error))
	}
	return videos, nil
}

// ListByCourse retrieves a course's videos in creation order
func (r *VideoRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Video, error) {
	var videos []*models.Video
	result := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list course videos: %w", MapGormError(result.Error))
	}
	return videos, nil
}

// Count returns the total number of videos
func (r *VideoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Video{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count videos: %w", MapGormError(result.Error))
	}
	return count, nil
}

// Delete removes a video and, through the foreign key, its progress rows
func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.Video{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete video: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

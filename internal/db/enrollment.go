package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/coursecast/internal/models"
)

// EnrollmentRepository handles database operations for course enrollments
type EnrollmentRepository struct {
	db *DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment. Enrolling twice returns ErrDuplicate.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	result := r.db.WithContext(ctx).Create(enrollment)
	if result.Error != nil {
		return fmt.Errorf("failed to create enrollment: %w", MapGormError(result.Error))
	}
	return nil
}

// Exists reports whether userID is enrolled in courseID
func (r *EnrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", MapGormError(result.Error))
	}
	return count > 0, nil
}

// ListByUser retrieves a user's enrollments, oldest first
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&enrollments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", MapGormError(result.Error))
	}
	return enrollments, nil
}

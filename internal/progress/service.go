// Package progress holds the business rules for lesson access and persisted
// watch progress.
package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/coursecast/internal/db"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/models"
	"gorm.io/gorm"
)

// Service handles lesson access checks and progress bookkeeping
type Service struct {
	db    *db.DB
	repos *db.Repositories
	now   func() time.Time
}

// NewService creates a new progress service instance
func NewService(database *db.DB, repos *db.Repositories) *Service {
	return &Service{
		db:    database,
		repos: repos,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Authorize loads a video and confirms userID is enrolled in its course
func (s *Service) Authorize(ctx context.Context, userID string, videoID uuid.UUID) (*models.Video, error) {
	video, err := s.repos.Videos.GetByID(ctx, videoID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to load video: %w", err)
	}

	enrolled, err := s.repos.Enrollments.Exists(ctx, userID, video.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		logger.Log.Debug().
			Str("user_id", userID).
			Str("video_id", videoID.String()).
			Msg("Viewer not enrolled")
		return nil, ErrNotEnrolled
	}

	return video, nil
}

// Enroll grants userID access to courseID. Enrolling twice is a no-op.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) error {
	err := s.repos.Enrollments.Create(ctx, models.NewEnrollment(userID, courseID))
	if err != nil && !db.IsDuplicate(err) {
		return fmt.Errorf("failed to enroll: %w", err)
	}

	logger.Log.Info().
		Str("user_id", userID).
		Str("course_id", courseID).
		Msg("Viewer enrolled")
	return nil
}

// Record stores a progress sample and reports whether it completed the lesson
func (s *Service) Record(ctx context.Context, userID string, videoID uuid.UUID, watched, total float64) (*models.Progress, bool, error) {
	if err := validateSample(watched, total); err != nil {
		return nil, false, err
	}
	if _, err := s.Authorize(ctx, userID, videoID); err != nil {
		return nil, false, err
	}

	var (
		record    *models.Progress
		completed bool
	)
	err := s.update(ctx, userID, videoID, func(p *models.Progress) {
		completed = p.Apply(watched, total, s.now())
		record = p
	})
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("user_id", userID).
			Str("video_id", videoID.String()).
			Msg("Failed to record progress")
		return nil, false, fmt.Errorf("failed to record progress: %w", err)
	}

	if completed {
		logger.Log.Info().
			Str("user_id", userID).
			Str("video_id", videoID.String()).
			Float64("fraction", record.Fraction()).
			Msg("Lesson completed")
	}

	return record, completed, nil
}

// MarkCompleted records a completion reported by the player. It is idempotent.
func (s *Service) MarkCompleted(ctx context.Context, userID string, videoID uuid.UUID) (*models.Progress, error) {
	if _, err := s.Authorize(ctx, userID, videoID); err != nil {
		return nil, err
	}

	var record *models.Progress
	err := s.update(ctx, userID, videoID, func(p *models.Progress) {
		if !p.Completed {
			now := s.now()
			p.Completed = true
			p.CompletedAt = &now
			p.UpdatedAt = now
		}
		record = p
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark completed: %w", err)
	}
	return record, nil
}

// Get returns the viewer's progress on a video
func (s *Service) Get(ctx context.Context, userID string, videoID uuid.UUID) (*models.Progress, error) {
	if _, err := s.Authorize(ctx, userID, videoID); err != nil {
		return nil, err
	}

	record, err := s.repos.Progress.Get(ctx, userID, videoID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return record, nil
}

// update loads or creates the record and applies fn inside one transaction
func (s *Service) update(ctx context.Context, userID string, videoID uuid.UUID, fn func(*models.Progress)) error {
	return s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.repos.Progress.WithTx(tx)

		record, err := repo.Get(ctx, userID, videoID)
		switch {
		case db.IsNotFound(err):
			record = models.NewProgress(userID, videoID)
			fn(record)
			return repo.Create(ctx, record)
		case err != nil:
			return err
		}

		fn(record)
		return repo.Update(ctx, record)
	})
}

func validateSample(watched, total float64) error {
	for _, v := range []float64{watched, total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: values must be finite", ErrInvalidSample)
		}
	}
	if total <= 0 {
		return fmt.Errorf("%w: total must be positive", ErrInvalidSample)
	}
	if watched < 0 || watched > total {
		return fmt.Errorf("%w: watched must be within [0, total]", ErrInvalidSample)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// CompletionThreshold is the watched fraction that must be exceeded for a
// lesson to count as completed
const CompletionThreshold = 0.80

// Progress is a viewer's watch progress on one video
type Progress struct {
	ID                uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	UserID            string     `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_progress_user_video;column:user_id"`
	VideoID           uuid.UUID  `json:"video_id" gorm:"type:text;not null;uniqueIndex:idx_progress_user_video;column:video_id"`
	WatchedSeconds    float64    `json:"watched_seconds" gorm:"type:real;not null;default:0;column:watched_seconds"`
	MaxWatchedSeconds float64    `json:"max_watched_seconds" gorm:"type:real;not null;default:0;column:max_watched_seconds"`
	TotalSeconds      float64    `json:"total_seconds" gorm:"type:real;not null;default:0;column:total_seconds"`
	Completed         bool       `json:"completed" gorm:"type:integer;not null;default:0;column:completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty" gorm:"type:datetime;column:completed_at"`
	CreatedAt         time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewProgress creates an empty progress record
func NewProgress(userID string, videoID uuid.UUID) *Progress {
	now := time.Now().UTC()
	return &Progress{
		ID:        uuid.New(),
		UserID:    userID,
		VideoID:   videoID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fraction returns the furthest watched fraction
func (p *Progress) Fraction() float64 {
	if p.TotalSeconds <= 0 {
		return 0
	}
	return p.MaxWatchedSeconds / p.TotalSeconds
}

// Apply folds a sample into the record. The furthest position and the
// completed flag only ever move forward. It reports whether the sample
// completed the lesson.
func (p *Progress) Apply(watched, total float64, now time.Time) bool {
	p.WatchedSeconds = watched
	p.TotalSeconds = total
	if watched > p.MaxWatchedSeconds {
		p.MaxWatchedSeconds = watched
	}
	p.UpdatedAt = now

	if p.Completed || p.Fraction() <= CompletionThreshold {
		return false
	}
	p.Completed = true
	p.CompletedAt = &now
	return true
}

// TableName specifies the table name for GORM
func (Progress) TableName() string {
	return "progress"
}

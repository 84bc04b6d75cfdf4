package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Video represents a lesson video. Exactly one of FilePath and ExternalURL is set.
type Video struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	CourseID    string    `json:"course_id" gorm:"type:text;not null;index;column:course_id"`
	Title       string    `json:"title" gorm:"type:text;not null;column:title"`
	FilePath    *string   `json:"-" gorm:"type:text;column:file_path"`
	ExternalURL *string   `json:"external_url,omitempty" gorm:"type:text;column:external_url"`
	Duration    int64     `json:"duration" gorm:"type:integer;not null;default:0;column:duration"` // seconds
	CreatedAt   time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewVideo creates a new Video with generated UUID and timestamps
func NewVideo(courseID, title string, duration int64) *Video {
	now := time.Now().UTC()
	return &Video{
		ID:        uuid.New(),
		CourseID:  courseID,
		Title:     title,
		Duration:  duration,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsExternal reports whether the video is hosted by a third party
func (v *Video) IsExternal() bool {
	return v.ExternalURL != nil && *v.ExternalURL != ""
}

// HasFile reports whether the video is served from the media library
func (v *Video) HasFile() bool {
	return v.FilePath != nil && *v.FilePath != ""
}

// Format returns the lower-case file extension without the dot
func (v *Video) Format() string {
	if !v.HasFile() {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(*v.FilePath)), ".")
}

// TableName specifies the table name for GORM
func (Video) TableName() string {
	return "videos"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment grants a user access to every video of a course
type Enrollment struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	UserID    string    `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_enrollment_user_course;column:user_id"`
	CourseID  string    `json:"course_id" gorm:"type:text;not null;uniqueIndex:idx_enrollment_user_course;column:course_id"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewEnrollment creates a new Enrollment with generated UUID and timestamp
func NewEnrollment(userID, courseID string) *Enrollment {
	return &Enrollment{
		ID:        uuid.New(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
}

// TableName specifies the table name for GORM
func (Enrollment) TableName() string {
	return "enrollments"
}

package db

// Repositories provides access to all database repositories
type Repositories struct {
	Videos      *VideoRepository
	Enrollments *EnrollmentRepository
	Progress    *ProgressRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Videos:      NewVideoRepository(db),
		Enrollments: NewEnrollmentRepository(db),
		Progress:    NewProgressRepository(db),
	}
}

package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/coursecast/internal/models"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*DB, *Repositories) {
	t.Helper()

	database, err := New(filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, RunMigrations(sqlDB, "file://../../migrations"))

	return database, NewRepositories(database)
}

func createLocalVideo(t *testing.T, repos *Repositories, courseID string) *models.Video {
	t.Helper()
	video := models.NewVideo(courseID, "Intro", 30)
	path := "intro.mp4"
	video.FilePath = &path
	require.NoError(t, repos.Videos.Create(context.Background(), video))
	return video
}

func TestRunMigrations_Idempotent(t *testing.T) {
	database, _ := setupTestDB(t)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	assert.NoError(t, RunMigrations(sqlDB, "file://../../migrations"))
}

func TestVideoRepository(t *testing.T) {
	ctx := context.Background()
	_, repos := setupTestDB(t)

	video := createLocalVideo(t, repos, "course-1")

	got, err := repos.Videos.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", got.Title)
	assert.True(t, got.HasFile())
	assert.False(t, got.IsExternal())

	_, err = repos.Videos.GetByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))

	external := models.NewVideo("course-2", "Guest lecture", 0)
	url := "https://youtu.be/dQw4w9WgXcQ"
	external.ExternalURL = &url
	require.NoError(t, repos.Videos.Create(ctx, external))

	count, err := repos.Videos.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	byCourse, err := repos.Videos.ListByCourse(ctx, "course-1")
	require.NoError(t, err)
	require.Len(t, byCourse, 1)
	assert.Equal(t, video.ID, byCourse[0].ID)

	page, err := repos.Videos.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	require.NoError(t, repos.Videos.Delete(ctx, external.ID))
	assert.True(t, IsNotFound(repos.Videos.Delete(ctx, external.ID)))
}

func TestVideoRepository_RequiresSource(t *testing.T) {
	_, repos := setupTestDB(t)

	err := repos.Videos.Create(context.Background(), models.NewVideo("course-1", "Nothing", 0))
	assert.Error(t, err)
}

func TestEnrollmentRepository(t *testing.T) {
	ctx := context.Background()
	_, repos := setupTestDB(t)

	require.NoError(t, repos.Enrollments.Create(ctx, models.NewEnrollment("user-1", "course-1")))

	err := repos.Enrollments.Create(ctx, models.NewEnrollment("user-1", "course-1"))
	assert.True(t, IsDuplicate(err))

	ok, err := repos.Enrollments.Exists(ctx, "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Enrollments.Exists(ctx, "user-2", "course-1")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := repos.Enrollments.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProgressRepository(t *testing.T) {
	ctx := context.Background()
	database, repos := setupTestDB(t)
	video := createLocalVideo(t, repos, "course-1")

	_, err := repos.Progress.Get(ctx, "user-1", video.ID)
	assert.True(t, IsNotFound(err))

	progress := models.NewProgress("user-1", video.ID)
	progress.Apply(10, 30, time.Now().UTC())
	require.NoError(t, repos.Progress.Create(ctx, progress))

	err = repos.Progress.Create(ctx, models.NewProgress("user-1", video.ID))
	assert.True(t, IsDuplicate(err))

	err = database.WithTransaction(ctx, func(tx *gorm.DB) error {
		txRepo := repos.Progress.WithTx(tx)
		current, err := txRepo.Get(ctx, "user-1", video.ID)
		if err != nil {
			return err
		}
		current.Apply(26, 30, time.Now().UTC())
		return txRepo.Update(ctx, current)
	})
	require.NoError(t, err)

	got, err := repos.Progress.Get(ctx, "user-1", video.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)
	assert.InDelta(t, 26.0, got.MaxWatchedSeconds, 0.001)

	list, err := repos.Progress.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProgressRepository_UnknownVideo(t *testing.T) {
	_, repos := setupTestDB(t)

	err := repos.Progress.Create(context.Background(), models.NewProgress("user-1", uuid.New()))
	assert.True(t, IsForeignKey(err))
}

func TestMapGormError(t *testing.T) {
	assert.Nil(t, MapGormError(nil))
	assert.ErrorIs(t, MapGormError(gorm.ErrRecordNotFound), ErrNotFound)
}

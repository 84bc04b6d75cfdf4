package progress

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/coursecast/internal/db"
	"github.com/stwalsh4118/coursecast/internal/models"
)

func setupService(t *testing.T) (*Service, *db.Repositories) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "progress.db"), db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(sqlDB, "file://../../migrations"))

	repos := db.NewRepositories(database)
	return NewService(database, repos), repos
}

func createVideo(t *testing.T, repos *db.Repositories) *models.Video {
	t.Helper()
	video := models.NewVideo("course-1", "Lesson 1", 30)
	path := "lesson1.mp4"
	video.FilePath = &path
	require.NoError(t, repos.Videos.Create(context.Background(), video))
	return video
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupService(t)
	video := createVideo(t, repos)

	_, err := svc.Authorize(ctx, "user-1", uuid.New())
	assert.True(t, IsVideoNotFound(err))

	_, err = svc.Authorize(ctx, "user-1", video.ID)
	assert.True(t, IsNotEnrolled(err))

	require.NoError(t, svc.Enroll(ctx, "user-1", "course-1"))
	require.NoError(t, svc.Enroll(ctx, "user-1", "course-1"))

	got, err := svc.Authorize(ctx, "user-1", video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, got.ID)
}

func TestRecord_CompletesOnceAboveThreshold(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupService(t)
	video := createVideo(t, repos)
	require.NoError(t, svc.Enroll(ctx, "user-1", "course-1"))

	samples := []struct {
		watched       float64
		wantCompleted bool
	}{
		{5, false},
		{20, false},
		{24, false}, // exactly 0.80 does not complete
		{25, true},
		{30, false},
		{3, false}, // seeking back keeps completion
	}

	for _, s := range samples {
		record, completed, err := svc.Record(ctx, "user-1", video.ID, s.watched, 30)
		require.NoError(t, err)
		assert.Equal(t, s.wantCompleted, completed, "watched=%v", s.watched)
		assert.Equal(t, s.watched, record.WatchedSeconds)
	}

	record, err := svc.Get(ctx, "user-1", video.ID)
	require.NoError(t, err)
	assert.True(t, record.Completed)
	assert.InDelta(t, 30.0, record.MaxWatchedSeconds, 0.001)
	assert.InDelta(t, 3.0, record.WatchedSeconds, 0.001)
}

func TestRecord_InvalidSamples(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupService(t)
	video := createVideo(t, repos)
	require.NoError(t, svc.Enroll(ctx, "user-1", "course-1"))

	tests := []struct {
		name           string
		watched, total float64
	}{
		{"zero total", 0, 0},
		{"negative watched", -1, 30},
		{"watched past total", 31, 30},
		{"nan", math.NaN(), 30},
		{"infinite total", 1, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Record(ctx, "user-1", video.ID, tt.watched, tt.total)
			assert.True(t, IsInvalidSample(err))
		})
	}
}

func TestRecord_RequiresEnrollment(t *testing.T) {
	svc, repos := setupService(t)
	video := createVideo(t, repos)

	_, _, err := svc.Record(context.Background(), "stranger", video.ID, 1, 30)
	assert.True(t, IsNotEnrolled(err))
}

func TestMarkCompleted(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupService(t)
	video := createVideo(t, repos)
	require.NoError(t, svc.Enroll(ctx, "user-1", "course-1"))

	_, err := svc.Get(ctx, "user-1", video.ID)
	assert.True(t, IsProgressNotFound(err))

	first, err := svc.MarkCompleted(ctx, "user-1", video.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	second, err := svc.MarkCompleted(ctx, "user-1", video.ID)
	require.NoError(t, err)
	assert.True(t, second.Completed)
	require.NotNil(t, second.CompletedAt)
	assert.WithinDuration(t, *first.CompletedAt, *second.CompletedAt, time.Second)
}

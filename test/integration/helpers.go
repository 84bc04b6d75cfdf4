//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/coursecast/internal/api"
	"github.com/stwalsh4118/coursecast/internal/auth"
	"github.com/stwalsh4118/coursecast/internal/config"
	"github.com/stwalsh4118/coursecast/internal/db"
	"github.com/stwalsh4118/coursecast/internal/server"
)

const testSecret = "integration-test-secret"

// lessonsAPI is a running lessons API backed by a migrated temp database
type lessonsAPI struct {
	srv     *httptest.Server
	library string
}

// setupTestDB creates a temp-file database with migrations applied
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "integration.db"), db.Options{EnableWAL: true})
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err, "Failed to get SQL DB")

	// Resolve migrations relative to this file so tests work from any directory
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")
	rootDir := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	migrationsPath := "file://" + filepath.Join(rootDir, "migrations")

	require.NoError(t, db.RunMigrations(sqlDB, migrationsPath), "Failed to run migrations")
	return database
}

// startLessonsAPI serves the full router over a real listener
func startLessonsAPI(t *testing.T) *lessonsAPI {
	t.Helper()

	library := t.TempDir()
	cfg := &config.Config{
		Logging: config.LoggingConfig{Level: "error"},
		Auth: config.AuthConfig{
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
		},
		Media: config.MediaConfig{
			LibraryPath:      library,
			SupportedFormats: []string{"mp4", "webm"},
		},
	}

	srv := httptest.NewServer(server.New(cfg, setupTestDB(t)).Handler())
	t.Cleanup(srv.Close)

	return &lessonsAPI{srv: srv, library: library}
}

func (a *lessonsAPI) url() string {
	return a.srv.URL
}

func (a *lessonsAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// createLocalVideo writes content into the library and registers it
func (a *lessonsAPI) createLocalVideo(t *testing.T, courseID, name string, content []byte, duration int64) string {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(a.library, name), content, 0o600))
	return a.createVideo(t, map[string]any{
		"course_id": courseID,
		"title":     "Lesson " + name,
		"file_path": name,
		"duration":  duration,
	})
}

func (a *lessonsAPI) createVideo(t *testing.T, body map[string]any) string {
	t.Helper()

	resp := a.do(t, http.MethodPost, "/api/videos", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var video api.VideoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&video))
	return video.ID.String()
}

func (a *lessonsAPI) enroll(t *testing.T, videoID, userID string) {
	t.Helper()

	resp := a.do(t, http.MethodPost, "/api/videos/"+videoID+"/enrollments", "", map[string]string{"user_id": userID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (a *lessonsAPI) progress(t *testing.T, videoID, token string) api.ProgressResponse {
	t.Helper()

	resp := a.do(t, http.MethodGet, "/api/videos/"+videoID+"/progress", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ProgressResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func mustToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return tok
}

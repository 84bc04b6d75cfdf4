package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	id := env.createVideo(t, map[string]any{"course_id": "go-101", "title": "Lesson", "file_path": "lesson.mp4", "duration": 30})
	w := env.do(t, http.MethodPost, "/api/videos/"+id+"/enrollments", "", map[string]string{"user_id": "viewer"})
	require.Equal(t, http.StatusCreated, w.Code)

	token := mustToken(t, "viewer")
	progressPath := "/api/videos/" + id + "/progress"

	w = env.do(t, http.MethodGet, progressPath, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	record := func(watched float64) ProgressResponse {
		t.Helper()
		w := env.do(t, http.MethodPost, progressPath, token, map[string]float64{
			"watched_seconds": watched,
			"total_seconds":   30,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp ProgressResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	assert.False(t, record(20).JustCompleted)
	assert.True(t, record(25).JustCompleted)
	resp := record(30)
	assert.False(t, resp.JustCompleted)
	assert.True(t, resp.Completed)

	w = env.do(t, http.MethodGet, progressPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed":true`)

	w = env.do(t, http.MethodPost, progressPath, token, map[string]float64{"watched_seconds": 40, "total_seconds": 30})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, progressPath, token, map[string]float64{"watched_seconds": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, progressPath, mustToken(t, "stranger"), map[string]float64{"watched_seconds": 1, "total_seconds": 30})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, progressPath, "", map[string]float64{"watched_seconds": 1, "total_seconds": 30})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCompletionEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	id := env.createVideo(t, map[string]any{"course_id": "go-101", "title": "Lesson", "file_path": "lesson.mp4"})
	w := env.do(t, http.MethodPost, "/api/videos/"+id+"/enrollments", "", map[string]string{"user_id": "viewer"})
	require.Equal(t, http.StatusCreated, w.Code)

	token := mustToken(t, "viewer")
	w = env.do(t, http.MethodPost, "/api/videos/"+id+"/completion", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed":true`)

	w = env.do(t, http.MethodPost, "/api/videos/"+id+"/completion", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

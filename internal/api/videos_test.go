package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVideo(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("local file", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/videos", "", map[string]any{
			"course_id": "go-101",
			"title":     "Goroutines",
			"file_path": "lessons/goroutines.mp4",
			"duration":  30,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp VideoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "local-stream", resp.SourceKind)
		assert.Empty(t, resp.EmbedID)
		assert.NotContains(t, w.Body.String(), "file_path")
	})

	t.Run("external link", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/videos", "", map[string]any{
			"course_id":    "go-101",
			"title":        "Guest talk",
			"external_url": "https://youtu.be/dQw4w9WgXcQ",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp VideoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "external-embed", resp.SourceKind)
		assert.Equal(t, "dQw4w9WgXcQ", resp.EmbedID)
	})

	invalid := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"course_id": "c", "file_path": "a.mp4"}},
		{"no source", map[string]any{"course_id": "c", "title": "t"}},
		{"both sources", map[string]any{"course_id": "c", "title": "t", "file_path": "a.mp4", "external_url": "https://youtu.be/dQw4w9WgXcQ"}},
		{"unsupported format", map[string]any{"course_id": "c", "title": "t", "file_path": "a.avi"}},
		{"unrecognised link", map[string]any{"course_id": "c", "title": "t", "external_url": "https://example.com/watch"}},
		{"negative duration", map[string]any{"course_id": "c", "title": "t", "file_path": "a.mp4", "duration": -1}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/videos", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetAndListVideos(t *testing.T) {
	env := setupTestEnv(t)

	id := env.createVideo(t, map[string]any{"course_id": "go-101", "title": "One", "file_path": "one.mp4"})
	env.createVideo(t, map[string]any{"course_id": "go-102", "title": "Two", "file_path": "two.webm"})

	w := env.do(t, http.MethodGet, "/api/videos/"+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/videos/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/videos/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/videos", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list VideoListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(2), list.Total)
	assert.Len(t, list.Items, 2)

	w = env.do(t, http.MethodGet, "/api/videos?course=go-101", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "One", list.Items[0].Title)
}

func TestEnroll(t *testing.T) {
	env := setupTestEnv(t)
	id := env.createVideo(t, map[string]any{"course_id": "go-101", "title": "One", "file_path": "one.mp4"})

	w := env.do(t, http.MethodPost, "/api/videos/"+id+"/enrollments", "", map[string]string{"user_id": "viewer-1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// enrolling again is accepted
	w = env.do(t, http.MethodPost, "/api/videos/"+id+"/enrollments", "", map[string]string{"user_id": "viewer-1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/videos/"+uuid.NewString()+"/enrollments", "", map[string]string{"user_id": "viewer-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/videos/"+id+"/enrollments", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

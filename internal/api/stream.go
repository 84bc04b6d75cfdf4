package api

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/middleware"
	"github.com/stwalsh4118/coursecast/internal/models"
	"github.com/stwalsh4118/coursecast/internal/progress"
)

// videoContentTypes covers formats the platform mime table may not know
var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

// errOutsideLibrary is returned for file paths escaping the media library
var errOutsideLibrary = errors.New("path outside media library")

// StreamHandler serves lesson video bytes to enrolled viewers
type StreamHandler struct {
	service     *progress.Service
	libraryPath string
}

// NewStreamHandler creates a new stream handler serving files below libraryPath
func NewStreamHandler(service *progress.Service, libraryPath string) *StreamHandler {
	return &StreamHandler{
		service:     service,
		libraryPath: libraryPath,
	}
}

// Stream handles HEAD and GET /api/videos/:id/stream. Range requests are
// honoured; HEAD answers with headers only and is what players use to probe
// availability.
func (h *StreamHandler) Stream(c *gin.Context) {
	videoID, ok := parseVideoID(c)
	if !ok {
		return
	}

	video, err := h.service.Authorize(c.Request.Context(), middleware.UserID(c), videoID)
	if err != nil {
		respondServiceError(c, err, "load video")
		return
	}

	if !video.HasFile() {
		abortWithError(c, http.StatusNotFound, "no_local_file", "Video is not served by this library")
		return
	}

	path, err := h.resolve(video)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", video.ID.String()).
			Msg("Rejected video file path")
		abortWithError(c, http.StatusNotFound, "file_not_found", "Video file not found")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Log.Warn().
				Str("video_id", video.ID.String()).
				Str("path", path).
				Msg("Video file missing from library")
			abortWithError(c, http.StatusNotFound, "file_not_found", "Video file not found")
			return
		}
		logger.Log.Error().Err(err).Str("path", path).Msg("Failed to open video file")
		abortWithError(c, http.StatusInternalServerError, "stream_error", "Failed to open video file")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		abortWithError(c, http.StatusNotFound, "file_not_found", "Video file not found")
		return
	}

	if contentType := contentTypeFor(path); contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.Header("Cache-Control", "private, no-store")

	logger.Log.Debug().
		Str("video_id", video.ID.String()).
		Str("method", c.Request.Method).
		Str("range", c.GetHeader("Range")).
		Msg("Serving video")

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
}

// resolve maps a stored file path onto the media library, rejecting paths
// that escape it
func (h *StreamHandler) resolve(video *models.Video) (string, error) {
	root, err := filepath.Abs(h.libraryPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media library: %w", err)
	}

	path := filepath.Clean(*video.FilePath)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideLibrary
	}
	return path, nil
}

func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

// SetupStreamRoutes registers the gated stream endpoint. requireViewer must
// authenticate the request and set the viewer id.
func SetupStreamRoutes(apiGroup *gin.RouterGroup, service *progress.Service, libraryPath string, requireViewer gin.HandlerFunc) {
	handler := NewStreamHandler(service, libraryPath)
	apiGroup.GET("/videos/:id/stream", requireViewer, handler.Stream)
	apiGroup.HEAD("/videos/:id/stream", requireViewer, handler.Stream)
}

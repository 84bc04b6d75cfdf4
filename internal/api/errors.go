// Package api implements the lessons HTTP API: video registration,
// enrollment, the gated media stream and progress reporting.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/progress"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// parseVideoID reads the :id route parameter. Malformed ids are reported as
// not found since they can never name a video.
func parseVideoID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "video_not_found", "Video not found")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps progress service errors onto HTTP responses
func respondServiceError(c *gin.Context, err error, action string) {
	switch {
	case progress.IsVideoNotFound(err):
		abortWithError(c, http.StatusNotFound, "video_not_found", "Video not found")
	case progress.IsNotEnrolled(err):
		abortWithError(c, http.StatusForbidden, "forbidden", "You are not enrolled in this course")
	case progress.IsInvalidSample(err):
		abortWithError(c, http.StatusBadRequest, "invalid_sample", err.Error())
	case progress.IsProgressNotFound(err):
		abortWithError(c, http.StatusNotFound, "progress_not_found", "No progress recorded yet")
	default:
		logger.Log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Failed to " + action)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "Failed to "+action)
	}
}

// abortWithError writes an ErrorResponse, or only the status for HEAD
func abortWithError(c *gin.Context, status int, code, message string) {
	if c.Request.Method == http.MethodHead {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

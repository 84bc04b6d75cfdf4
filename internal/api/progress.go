package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/coursecast/internal/middleware"
	"github.com/stwalsh4118/coursecast/internal/models"
	"github.com/stwalsh4118/coursecast/internal/progress"
)

// ProgressRequest is one sample reported by a player
type ProgressRequest struct {
	WatchedSeconds *float64 `json:"watched_seconds" binding:"required"`
	TotalSeconds   *float64 `json:"total_seconds" binding:"required"`
}

// ProgressResponse is the stored record after a sample was applied
type ProgressResponse struct {
	*models.Progress
	JustCompleted bool `json:"just_completed"`
}

// ProgressHandler handles viewer progress reporting
type ProgressHandler struct {
	service *progress.Service
}

// NewProgressHandler creates a new progress handler instance
func NewProgressHandler(service *progress.Service) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// RecordProgress handles POST /api/videos/:id/progress
func (h *ProgressHandler) RecordProgress(c *gin.Context) {
	videoID, ok := parseVideoID(c)
	if !ok {
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "watched_seconds and total_seconds are required",
		})
		return
	}

	record, completed, err := h.service.Record(c.Request.Context(), middleware.UserID(c), videoID, *req.WatchedSeconds, *req.TotalSeconds)
	if err != nil {
		respondServiceError(c, err, "record progress")
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{Progress: record, JustCompleted: completed})
}

// CompleteVideo handles POST /api/videos/:id/completion
func (h *ProgressHandler) CompleteVideo(c *gin.Context) {
	videoID, ok := parseVideoID(c)
	if !ok {
		return
	}

	record, err := h.service.MarkCompleted(c.Request.Context(), middleware.UserID(c), videoID)
	if err != nil {
		respondServiceError(c, err, "mark completion")
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{Progress: record})
}

// GetProgress handles GET /api/videos/:id/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	videoID, ok := parseVideoID(c)
	if !ok {
		return
	}

	record, err := h.service.Get(c.Request.Context(), middleware.UserID(c), videoID)
	if err != nil {
		respondServiceError(c, err, "get progress")
		return
	}

	c.JSON(http.StatusOK, record)
}

// SetupProgressRoutes registers the viewer progress routes
func SetupProgressRoutes(apiGroup *gin.RouterGroup, service *progress.Service, requireViewer gin.HandlerFunc) {
	handler := NewProgressHandler(service)

	viewer := apiGroup.Group("/videos/:id", requireViewer)
	viewer.POST("/progress", handler.RecordProgress)
	viewer.GET("/progress", handler.GetProgress)
	viewer.POST("/completion", handler.CompleteVideo)
}

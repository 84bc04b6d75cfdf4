package api

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/coursecast/internal/db"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/models"
	"github.com/stwalsh4118/coursecast/internal/player"
	"github.com/stwalsh4118/coursecast/internal/progress"
)

const (
	defaultListLimit = 20
	maxListLimit     = 1000
	queryTimeout     = 10 * time.Second
)

// CreateVideoRequest registers a lesson video. Exactly one of FilePath and
// ExternalURL must be set.
type CreateVideoRequest struct {
	CourseID    string  `json:"course_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	FilePath    *string `json:"file_path,omitempty"`
	ExternalURL *string `json:"external_url,omitempty"`
	Duration    int64   `json:"duration"`
}

// VideoResponse is a video together with the playback source a player
// would resolve for it
type VideoResponse struct {
	*models.Video
	SourceKind string `json:"source_kind"`
	EmbedID    string `json:"embed_id,omitempty"`
}

// VideoListResponse represents a paginated list of videos
type VideoListResponse struct {
	Items  []VideoResponse `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// EnrollRequest grants a user access to a video's course
type EnrollRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// VideoHandler handles video registration and enrollment requests
type VideoHandler struct {
	repos            *db.Repositories
	service          *progress.Service
	supportedFormats []string
}

// NewVideoHandler creates a new video handler instance
func NewVideoHandler(repos *db.Repositories, service *progress.Service, supportedFormats []string) *VideoHandler {
	return &VideoHandler{
		repos:            repos,
		service:          service,
		supportedFormats: supportedFormats,
	}
}

// CreateVideo handles POST /api/videos
func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	video := models.NewVideo(strings.TrimSpace(req.CourseID), strings.TrimSpace(req.Title), req.Duration)
	if msg := h.validate(&req, video); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_video",
			Message: msg,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	if err := h.repos.Videos.Create(ctx, video); err != nil {
		logger.Log.Error().
			Err(err).
			Str("course_id", video.CourseID).
			Msg("Failed to create video")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create video",
		})
		return
	}

	logger.Log.Info().
		Str("video_id", video.ID.String()).
		Str("course_id", video.CourseID).
		Bool("external", video.IsExternal()).
		Msg("Video registered")

	c.JSON(http.StatusCreated, toVideoResponse(video))
}

// validate fills the source fields of video and returns a message on failure
func (h *VideoHandler) validate(req *CreateVideoRequest, video *models.Video) string {
	if video.CourseID == "" || video.Title == "" {
		return "course_id and title must not be blank"
	}
	if req.Duration < 0 {
		return "duration must be non-negative"
	}

	hasFile := req.FilePath != nil && strings.TrimSpace(*req.FilePath) != ""
	hasURL := req.ExternalURL != nil && strings.TrimSpace(*req.ExternalURL) != ""

	switch {
	case hasFile == hasURL:
		return "exactly one of file_path and external_url is required"
	case hasURL:
		url := strings.TrimSpace(*req.ExternalURL)
		if _, ok := player.ExtractEmbedID(url); !ok {
			return "external_url is not a recognised video link"
		}
		video.ExternalURL = &url
	default:
		path := filepath.Clean(strings.TrimSpace(*req.FilePath))
		video.FilePath = &path
		if !containsFormat(h.supportedFormats, video.Format()) {
			return "unsupported video format: " + video.Format()
		}
	}
	return ""
}

// GetVideo handles GET /api/videos/:id
func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID, ok := parseVideoID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	video, err := h.repos.Videos.GetByID(ctx, videoID)
	if err != nil {
		if db.IsNotFound(err) {
			abortWithError(c, http.StatusNotFound, "video_not_found", "Video not found")
			return
		}
		logger.Log.Error().Err(err).Str("video_id", videoID.String()).Msg("Failed to get video")
		abortWithError(c, http.StatusInternalServerError, "query_failed", "Failed to retrieve video")
		return
	}

	c.JSON(http.StatusOK, toVideoResponse(video))
}

// ListVideos handles GET /api/videos. ?course= filters by course.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	limit := defaultListLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, maxListLimit)
	}
	offset := 0
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o >= 0 {
		offset = o
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	var (
		videos []*models.Video
		total  int64
		err    error
	)
	if course := c.Query("course"); course != "" {
		videos, err = h.repos.Videos.ListByCourse(ctx, course)
		total = int64(len(videos))
		limit, offset = len(videos), 0
	} else {
		videos, err = h.repos.Videos.List(ctx, limit, offset)
		if err == nil {
			total, err = h.repos.Videos.Count(ctx)
		}
	}
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list videos")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video list",
		})
		return
	}

	items := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		items = append(items, toVideoResponse(v))
	}

	c.JSON(http.StatusOK, VideoListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Enroll handles POST /api/videos/:id/enrollments
func (h *VideoHandler) Enroll(c *gin.Context) {
	videoID, ok := parseVideoID(c)
	if !ok {
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "user_id is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	video, err := h.repos.Videos.GetByID(ctx, videoID)
	if err != nil {
		if db.IsNotFound(err) {
			abortWithError(c, http.StatusNotFound, "video_not_found", "Video not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "query_failed", "Failed to retrieve video")
		return
	}

	if err := h.service.Enroll(ctx, strings.TrimSpace(req.UserID), video.CourseID); err != nil {
		respondServiceError(c, err, "enroll")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":   req.UserID,
		"course_id": video.CourseID,
	})
}

func toVideoResponse(video *models.Video) VideoResponse {
	ref := player.Reference{ContentID: video.ID.String()}
	if video.IsExternal() {
		ref.ExternalURL = *video.ExternalURL
	}
	source := player.Resolve(ref)

	return VideoResponse{
		Video:      video,
		SourceKind: source.Kind.String(),
		EmbedID:    source.EmbedID,
	}
}

func containsFormat(formats []string, format string) bool {
	for _, f := range formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// SetupVideoRoutes registers video management routes
func SetupVideoRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories, service *progress.Service, supportedFormats []string) {
	handler := NewVideoHandler(repos, service, supportedFormats)

	apiGroup.POST("/videos", handler.CreateVideo)
	apiGroup.GET("/videos", handler.ListVideos)
	apiGroup.GET("/videos/:id", handler.GetVideo)
	apiGroup.POST("/videos/:id/enrollments", handler.Enroll)
}

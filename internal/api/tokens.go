package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/coursecast/internal/auth"
	"github.com/stwalsh4118/coursecast/internal/logger"
)

// TokenRequest asks for a viewer token
type TokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// TokenResponse carries a freshly minted viewer token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenHandler mints viewer tokens for local development
type TokenHandler struct {
	secret string
	ttl    time.Duration
}

// NewTokenHandler creates a new token handler instance
func NewTokenHandler(secret string, ttl time.Duration) *TokenHandler {
	return &TokenHandler{secret: secret, ttl: ttl}
}

// MintToken handles POST /api/tokens
func (h *TokenHandler) MintToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "user_id is required",
		})
		return
	}

	expiresAt := time.Now().UTC().Add(h.ttl)
	token, err := auth.GenerateAccessToken(h.secret, strings.TrimSpace(req.UserID), h.ttl)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to mint token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_failed",
			Message: "Failed to mint token",
		})
		return
	}

	logger.Log.Info().Str("user_id", req.UserID).Msg("Viewer token minted")
	c.JSON(http.StatusCreated, TokenResponse{AccessToken: token, ExpiresAt: expiresAt})
}

// SetupTokenRoutes registers the development token endpoint
func SetupTokenRoutes(apiGroup *gin.RouterGroup, secret string, ttl time.Duration) {
	handler := NewTokenHandler(secret, ttl)
	apiGroup.POST("/tokens", handler.MintToken)
}

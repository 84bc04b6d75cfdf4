package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/coursecast/internal/auth"
)

// UserIDKey is the gin context key holding the authenticated viewer id
const UserIDKey = "user_id"

// tokenQueryParam carries the token for clients that cannot set headers
const tokenQueryParam = "token"

// RequireViewer rejects requests without a valid access token. The token is
// read from the Authorization header first and the token query parameter
// second. HEAD requests get a bare 401.
func RequireViewer(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			token = c.Query(tokenQueryParam)
		}

		claims, err := auth.ValidateToken(secret, token)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated viewer id set by RequireViewer
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func abortUnauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", `Bearer realm="coursecast"`)
	if c.Request.Method == http.MethodHead {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	message := "Access token is invalid or expired"
	if errors.Is(err, auth.ErrMissingToken) {
		message = "Access token is required"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

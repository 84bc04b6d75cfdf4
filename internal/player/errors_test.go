package player

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorKind
	}{
		{http.StatusOK, ErrorKindNone},
		{http.StatusNoContent, ErrorKindNone},
		{http.StatusPartialContent, ErrorKindNone},
		{http.StatusUnauthorized, ErrorKindUnauthenticated},
		{http.StatusForbidden, ErrorKindForbidden},
		{http.StatusNotFound, ErrorKindNotFound},
		{http.StatusInternalServerError, ErrorKindUnknown},
		{http.StatusTooManyRequests, ErrorKindUnknown},
		{http.StatusFound, ErrorKindUnknown},
		{0, ErrorKindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyStatus(tt.code), "status %d", tt.code)
	}
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorKindNone, ClassifyError(nil))
	assert.Equal(t, ErrorKindUnauthenticated, ClassifyError(ErrNoCredential))
	assert.Equal(t, ErrorKindUnknown, ClassifyError(errors.New("boom")))

	wrapped := fmt.Errorf("fetch: %w", NewPlaybackError(ErrorKindForbidden, http.StatusForbidden, nil))
	assert.Equal(t, ErrorKindForbidden, ClassifyError(wrapped))

	cause := errors.New("connection reset")
	pe := NewPlaybackError(ErrorKindUnknown, 0, cause)
	assert.ErrorIs(t, pe, cause)
	assert.Contains(t, pe.Error(), "unknown")
}

func TestPresent(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		contains string
	}{
		{ErrorKindUnauthenticated, "session has expired"},
		{ErrorKindForbidden, "permission"},
		{ErrorKindNotFound, "not found"},
		{ErrorKindUnknown, "try again"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			view := Present(tt.kind)
			assert.Equal(t, tt.kind, view.Kind)
			assert.Contains(t, view.Message, tt.contains)
			assert.NotEmpty(t, view.Title)
			assert.Equal(t, "Try again", view.RetryLabel)
		})
	}

	// anything unexpected is presented as unknown
	assert.Equal(t, ErrorKindUnknown, Present(ErrorKindNone).Kind)
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderError(&buf, Present(ErrorKindNotFound)))

	html := buf.String()
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, `data-error-kind="not_found"`)
	assert.Contains(t, html, "Video not found. It may have been moved or removed.")
	assert.Contains(t, html, `data-action="retry"`)
}

func TestRenderEmbed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderEmbed(&buf, NewEmbedFrame("", "dQw4w9WgXcQ", "Intro <lesson>")))

	html := buf.String()
	assert.Contains(t, html, `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ?enablejsapi=1&amp;rel=0"`)
	assert.Contains(t, html, "allowfullscreen")
	assert.Contains(t, html, "Intro &lt;lesson&gt;")
	assert.Contains(t, html, `sandbox="allow-scripts allow-same-origin allow-presentation allow-popups"`)
}
